package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/alumnicsv/internal/core"
)

const (
	modeTransform = core.ModeTransform
	modeNormalize = core.ModeNormalize
)

type convertOptions struct {
	input        string
	output       string
	year         int
	minYear      int
	applyAliases bool
	aliasFile    string
}

var convertShort = map[core.Mode]string{
	core.ModeTransform: "Validate rows and write a cleaned flat CSV",
	core.ModeNormalize: "Validate rows and write alumni, campus and alumni_campus tables as a ZIP",
}

func newConvertCmd(mode core.Mode) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   string(mode),
		Short: convertShort[mode],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, mode, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Input CSV file, or - for stdin (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file, or - for stdout (default: standard output name in the current directory)")
	cmd.Flags().IntVar(&opts.year, "year", 0, "Latest accepted batch year (default: current year)")
	cmd.Flags().IntVar(&opts.minYear, "min-year", core.MinBatchYear, "Earliest accepted batch year")
	if mode == core.ModeTransform {
		cmd.Flags().BoolVar(&opts.applyAliases, "apply-aliases", false, "Replace campus spellings with canonical codes")
		cmd.Flags().StringVar(&opts.aliasFile, "aliases", "", "YAML campus alias file (default: built-in table)")
	}

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// summaryLine is printed to stderr after each conversion.
type summaryLine struct {
	Mode     core.Mode                 `json:"mode"`
	Output   string                    `json:"output"`
	Encoding string                    `json:"encoding"`
	Total    int                       `json:"total"`
	Accepted int                       `json:"accepted"`
	Dropped  map[core.RejectReason]int `json:"dropped"`
}

func runConvert(cmd *cobra.Command, mode core.Mode, opts convertOptions) error {
	data, err := readInput(cmd, opts.input)
	if err != nil {
		return err
	}

	aliases := core.DefaultCampusAliases()
	if opts.aliasFile != "" {
		aliases, err = core.LoadCampusAliasFile(opts.aliasFile)
		if err != nil {
			return err
		}
	}

	year := opts.year
	if year == 0 {
		year = time.Now().Year()
	}

	pipeline := core.NewPipeline(core.PipelineOptions{
		MinBatchYear:       opts.minYear,
		CampusAliases:      aliases,
		ApplyCampusAliases: opts.applyAliases,
	})

	res, err := pipeline.Run(mode, data, year)
	if err != nil {
		return fmt.Errorf("%s: %w", mode, err)
	}

	output := opts.output
	if output == "" {
		output = res.Artifact.Filename
	}
	if err := writeOutput(cmd, output, res.Artifact.Body); err != nil {
		return err
	}

	return json.NewEncoder(cmd.ErrOrStderr()).Encode(summaryLine{
		Mode:     mode,
		Output:   output,
		Encoding: res.Encoding,
		Total:    res.Summary.Total,
		Accepted: res.Summary.Accepted,
		Dropped:  res.Summary.Dropped,
	})
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path string, body []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
