// Package history keeps a small ledger of spawned processes so that an
// operator can see what ran, how long it took and how it ended.
package history

import (
	"context"
	"time"
)

// Run is one finished process invocation. Command and StderrTail are
// already redacted when they reach the store.
type Run struct {
	ID         string
	Command    string
	Label      string
	ExitCode   int
	Succeeded  bool
	StderrTail string
	StartedAt  time.Time
	Duration   time.Duration
}

// Store persists and lists runs.
type Store interface {
	// Record appends a finished run.
	Record(ctx context.Context, run Run) error

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)

	// Close releases resources.
	Close() error
}
