package logbatch

import (
	"sync"
	"time"
)

const (
	// DefaultMaxBytes is the pending size that forces a flush.
	DefaultMaxBytes = 50_000
	// DefaultInterval is the maximum age of a batch before the next AddLine flushes it.
	DefaultInterval = 500 * time.Millisecond
)

// FlushReason tells why a batch was emitted.
type FlushReason string

const (
	FlushSize     FlushReason = "size"
	FlushInterval FlushReason = "interval"
	FlushExplicit FlushReason = "explicit"
)

// Observer is notified after every emitted batch.
type Observer func(stream string, reason FlushReason, lines int)

// Aggregator batches lines for one stream. It is safe for concurrent use.
type Aggregator struct {
	mu        sync.Mutex
	sink      Sink
	stream    string
	lines     []string
	size      int
	lastFlush time.Time

	maxBytes int
	interval time.Duration
	now      func() time.Time
	observer Observer
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMaxBytes overrides the size threshold.
func WithMaxBytes(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxBytes = n
		}
	}
}

// WithInterval overrides the time threshold.
func WithInterval(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.interval = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithObserver registers a callback invoked after each flush.
func WithObserver(o Observer) Option {
	return func(a *Aggregator) { a.observer = o }
}

// New creates an Aggregator that emits to sink with the given stream label.
// A nil sink discards batches.
func New(sink Sink, stream string, opts ...Option) *Aggregator {
	if sink == nil {
		sink = DiscardSink{}
	}
	a := &Aggregator{
		sink:     sink,
		stream:   stream,
		maxBytes: DefaultMaxBytes,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.lastFlush = a.now()
	return a
}

// Stream returns the label attached to every batch.
func (a *Aggregator) Stream() string { return a.stream }

// AddLine appends one line and flushes when a threshold has been reached.
func (a *Aggregator) AddLine(line string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lines = append(a.lines, line)
	a.size += len(line)

	switch {
	case a.size >= a.maxBytes:
		a.flushLocked(FlushSize)
	case a.now().Sub(a.lastFlush) >= a.interval:
		a.flushLocked(FlushInterval)
	}
}

// Flush emits any pending lines as one batch. It is a no-op when nothing is pending.
func (a *Aggregator) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.flushLocked(FlushExplicit)
}

// Pending returns the number of lines not yet emitted.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.lines)
}

// flushLocked emits while holding the mutex so two flushes never interleave.
func (a *Aggregator) flushLocked(reason FlushReason) {
	a.lastFlush = a.now()
	if len(a.lines) == 0 {
		return
	}
	batch := a.lines
	a.lines = nil
	a.size = 0

	a.sink.Emit(a.stream, batch)
	if a.observer != nil {
		a.observer(a.stream, reason, len(batch))
	}
}
