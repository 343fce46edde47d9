package process

import (
	"strings"
	"time"
)

// Command describes one child process.
type Command struct {
	// Args is the argv; Args[0] is looked up on PATH.
	Args []string
	// Env is merged over the parent environment for this child only.
	Env map[string]string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Redact is applied to the logged argv and to every logged output line.
	Redact func(string) string
	// CaptureStdout keeps the raw stdout lines in Outcome.Stdout.
	CaptureStdout bool
}

// Outcome is the classified result of a finished child.
type Outcome struct {
	RunID      string
	ExitCode   int
	Succeeded  bool
	StderrTail []string
	// StdoutLines counts the stdout lines handed to the stdout aggregator.
	StdoutLines int
	Stdout      []string
	Duration    time.Duration
}

// Tail returns the stderr tail joined with newlines.
func (o *Outcome) Tail() string {
	if o == nil {
		return ""
	}
	return strings.Join(o.StderrTail, "\n")
}
