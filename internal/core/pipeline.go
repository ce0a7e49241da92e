package core

import "fmt"

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	// MinBatchYear is the earliest accepted batch (default MinBatchYear).
	MinBatchYear int

	// CampusAliases is consulted by the transform path when ApplyCampusAliases is set.
	CampusAliases CampusAliases

	// ApplyCampusAliases remaps campus names to canonical codes in the flat output.
	ApplyCampusAliases bool
}

// Pipeline runs parse, validate, shape and serialize for one upload.
// It holds only immutable configuration and is safe for concurrent use.
type Pipeline struct {
	opts        PipelineOptions
	transformer Transformer
}

// NewPipeline creates a pipeline from opts.
func NewPipeline(opts PipelineOptions) *Pipeline {
	if opts.MinBatchYear <= 0 {
		opts.MinBatchYear = MinBatchYear
	}
	return &Pipeline{
		opts:        opts,
		transformer: NewTransformer(opts.CampusAliases, opts.ApplyCampusAliases),
	}
}

// Result is the output of one pipeline run.
type Result struct {
	Artifact Artifact
	Summary  Summary
	Encoding string
}

// Run executes mode over data with batches bounded by currentYear.
// Dropped rows are reported in the summary; only structural failures return
// an error.
func (p *Pipeline) Run(mode Mode, data []byte, currentYear int) (*Result, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	records, enc, err := ParseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	validator := NewRowValidator(currentYear, p.opts.MinBatchYear)
	rows, summary := validator.CleanAll(records)

	var artifact Artifact
	switch mode {
	case ModeTransform:
		artifact, err = TransformArtifact(p.transformer.Transform(rows))
	case ModeNormalize:
		artifact, err = NormalizeArtifact(Normalize(rows))
	}
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}

	return &Result{
		Artifact: artifact,
		Summary:  summary,
		Encoding: enc,
	}, nil
}

// Transform runs the flat transform pipeline.
func (p *Pipeline) Transform(data []byte, currentYear int) (*Result, error) {
	return p.Run(ModeTransform, data, currentYear)
}

// Normalize runs the normalize pipeline.
func (p *Pipeline) Normalize(data []byte, currentYear int) (*Result, error) {
	return p.Run(ModeNormalize, data, currentYear)
}
