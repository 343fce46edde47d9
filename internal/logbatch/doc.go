// Package logbatch groups individual output lines into size- and time-bounded
// batches and hands each batch to a Sink as a single emission.
//
// An Aggregator flushes when the pending bytes reach the size threshold
// (DefaultMaxBytes), when the time since the last flush reaches the interval
// (DefaultInterval), or when Flush is called. Every added line is emitted
// exactly once and in the order it was added. Separate aggregators (stdout and
// stderr of one process) make no ordering promise relative to each other.
package logbatch
