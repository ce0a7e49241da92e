package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/alumnicsv/internal/logging"
	"github.com/JonMunkholm/alumnicsv/internal/metric"
)

// ServiceConfig holds the settings the Service is built from.
type ServiceConfig struct {
	Pipeline      PipelineOptions
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service is the entry point for conversions. It bounds concurrency, runs the
// pipeline with the current year, and records run metadata.
type Service struct {
	pipeline *Pipeline
	limiter  *RunLimiter
	recorder RunRecorder
	metrics  *metric.Metrics
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithRecorder stores run metadata in r.
func WithRecorder(r RunRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithMetrics reports runs to m.
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now. The batch year upper bound is taken from it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(cfg ServiceConfig, opts ...Option) *Service {
	s := &Service{
		pipeline: NewPipeline(cfg.Pipeline),
		limiter:  NewRunLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConvertRequest is one uploaded file to convert.
type ConvertRequest struct {
	Mode     Mode
	Filename string
	Data     []byte
}

// ConvertResult is a finished conversion.
type ConvertResult struct {
	RunID uuid.UUID
	Result
}

// Convert runs the pipeline for req. The returned error is either a limiter
// error (ErrTooManyRuns, context errors) or a structural pipeline failure.
func (s *Service) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	runID := uuid.New()
	logger := logging.WithFields(ctx,
		"run_id", runID.String(),
		"mode", string(req.Mode),
		"filename", req.Filename,
		"user_agent", UserAgentFromContext(ctx),
	)

	if !s.limiter.TryAcquire() {
		logger.Info("waiting for run slot", "active", s.limiter.Active(), "capacity", s.limiter.Capacity())
		if err := s.limiter.Acquire(ctx); err != nil {
			logger.Warn("conversion rejected", "error", err, "active", s.limiter.Active())
			return nil, err
		}
	}
	defer s.limiter.Release()

	s.metrics.RunStarted()
	defer s.metrics.RunFinished()

	start := s.now()
	result, err := s.run(req)
	elapsed := s.now().Sub(start)

	run := Run{
		ID:         runID,
		Mode:       req.Mode,
		Filename:   req.Filename,
		SizeBytes:  int64(len(req.Data)),
		Status:     RunSucceeded,
		DurationMS: elapsed.Milliseconds(),
		IPAddress:  IPAddressFromContext(ctx),
		CreatedAt:  start.UTC(),
	}
	if err != nil {
		run.Status = RunFailed
		run.Error = err.Error()
	} else {
		run.Encoding = result.Encoding
		run.RowsTotal = result.Summary.Total
		run.RowsAccepted = result.Summary.Accepted
		run.RowsDropped = result.Summary.DroppedCount()
	}

	s.observe(run, result)
	if s.recorder != nil {
		if rerr := s.recorder.Record(ctx, run); rerr != nil {
			logger.Error("failed to record run", "error", rerr)
		}
	}

	if err != nil {
		logger.Error("conversion failed", "error", err, "duration_ms", run.DurationMS)
		return nil, err
	}

	logger.Info("conversion completed",
		"encoding", run.Encoding,
		"rows", run.RowsTotal,
		"accepted", run.RowsAccepted,
		"dropped", run.RowsDropped,
		"duration_ms", run.DurationMS,
	)

	return &ConvertResult{RunID: runID, Result: *result}, nil
}

// run executes the pipeline, turning a panic into an error so a single bad
// upload cannot take the process down.
func (s *Service) run(req ConvertRequest) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return s.pipeline.Run(req.Mode, req.Data, s.now().Year())
}

func (s *Service) observe(run Run, result *Result) {
	mode := string(run.Mode)
	s.metrics.ObserveRun(mode, string(run.Status), time.Duration(run.DurationMS)*time.Millisecond, run.SizeBytes)
	if result == nil {
		return
	}
	s.metrics.ObserveRows(mode, "accepted", result.Summary.Accepted)
	for reason, n := range result.Summary.Dropped {
		s.metrics.ObserveRows(mode, string(reason), n)
	}
}

// LimiterStatus returns the current run limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until all active runs finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
