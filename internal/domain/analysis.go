package domain

import (
	"context"
	"io"
)

// AnalysisOutcome is what the worker extracted from an introduction video.
// Every field may be missing; the orchestrator owns the null-coalescing.
type AnalysisOutcome struct {
	Name         *string
	Age          *string
	Hobbies      string // JSON array text, possibly empty
	Gender       *string
	Introduction *string
}

// AnalysisClient abstracts the task-based async protocol of the analysis
// worker. Poll returns (nil, nil) while the task is still running.
type AnalysisClient interface {
	Submit(ctx context.Context, filename string, video io.Reader) (taskID string, err error)
	Poll(ctx context.Context, taskID string) (*AnalysisOutcome, error)
}

// FileStore is the raw upload storage collaborator. Store returns an opaque
// reference that Open accepts back.
type FileStore interface {
	Store(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Geocoder resolves coordinates to a human-readable place label.
// Best-effort: an empty label with nil error means "unknown".
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}
