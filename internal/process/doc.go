// Package process spawns external commands and supervises their output.
//
// Both output streams are drained concurrently into their own
// logbatch.Aggregator: stderr on a helper goroutine, stdout on the calling
// goroutine. The last StderrTailLines stderr lines are kept in a ring buffer
// and returned with the Outcome, or attached as the detail of the
// ExecutionError when the command fails.
package process
