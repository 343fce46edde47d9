package metrics

import "time"

// ResultLabel enumerates process result categories for counters.
type ResultLabel string

const (
	ResultSuccess    ResultLabel = "success"
	ResultFailed     ResultLabel = "failed"
	ResultSpawnError ResultLabel = "spawn_error"
)

// Recorder defines observability hooks for process, git and log batching metrics.
type Recorder interface {
	ObserveProcessDuration(command string, d time.Duration, result ResultLabel)
	IncProcessResult(command string, result ResultLabel)
	ObserveGitOperation(op string, d time.Duration, success bool)
	IncLogFlush(stream, reason string, lines int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveProcessDuration(string, time.Duration, ResultLabel) {}
func (NoopRecorder) IncProcessResult(string, ResultLabel)                      {}
func (NoopRecorder) ObserveGitOperation(string, time.Duration, bool)           {}
func (NoopRecorder) IncLogFlush(string, string, int)                           {}
