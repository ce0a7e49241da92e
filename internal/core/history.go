package core

import "context"

// RunRecorder persists run metadata and lists recent runs.
// Implementations live in internal/storage.
type RunRecorder interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
}

// Default and maximum number of runs returned by RecentRuns.
const (
	DefaultRecentRuns = 20
	MaxRecentRuns     = 100
)

// RecentRuns returns up to limit recorded runs, most recent first.
// The limit is clamped to [1, MaxRecentRuns]; 0 means DefaultRecentRuns.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentRuns
	case limit > MaxRecentRuns:
		limit = MaxRecentRuns
	}
	if s.recorder == nil {
		return nil, nil
	}
	return s.recorder.Recent(ctx, limit)
}
