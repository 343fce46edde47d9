package logbatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	batches [][]string
	streams []string
}

func (r *recordingSink) Emit(stream string, lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, append([]string(nil), lines...))
	r.streams = append(r.streams, stream)
}

func (r *recordingSink) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestAggregator_SizeThresholdFlushesBeforeExplicitFlush(t *testing.T) {
	sink := &recordingSink{}
	clock := &fakeClock{t: time.Unix(0, 0)}
	agg := New(sink, "stdout", WithMaxBytes(100), WithClock(clock.now))

	line := strings.Repeat("x", 30)
	for range 4 {
		agg.AddLine(line)
	}
	require.Equal(t, 1, sink.count(), "crossing the size threshold must flush automatically")
	require.Len(t, sink.batches[0], 4)

	agg.AddLine("tail")
	require.Equal(t, 1, agg.Pending())

	agg.Flush()
	agg.Flush()
	require.Equal(t, 2, sink.count(), "a second explicit flush must not re-emit")
	require.Equal(t, []string{"tail"}, sink.batches[1])
	require.Equal(t, 0, agg.Pending())
}

func TestAggregator_IntervalFlush(t *testing.T) {
	sink := &recordingSink{}
	clock := &fakeClock{t: time.Unix(0, 0)}
	agg := New(sink, "stderr", WithClock(clock.now))

	agg.AddLine("first")
	require.Equal(t, 0, sink.count())

	clock.advance(DefaultInterval)
	agg.AddLine("second")
	require.Equal(t, 1, sink.count())
	require.Equal(t, []string{"first", "second"}, sink.batches[0])
	require.Equal(t, "stderr", sink.streams[0])
}

func TestAggregator_ObserverReportsReason(t *testing.T) {
	sink := &recordingSink{}
	var reasons []FlushReason
	agg := New(sink, "stdout", WithMaxBytes(5), WithObserver(func(stream string, reason FlushReason, lines int) {
		require.Equal(t, "stdout", stream)
		reasons = append(reasons, reason)
	}))

	agg.AddLine("123456")
	agg.AddLine("x")
	agg.Flush()

	require.Equal(t, []FlushReason{FlushSize, FlushExplicit}, reasons)
}

func TestAggregator_ConcurrentProducersLoseNothing(t *testing.T) {
	sink := &recordingSink{}
	agg := New(sink, "stdout", WithMaxBytes(256))

	const producers, perProducer = 8, 500
	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				agg.AddLine(fmt.Sprintf("p%d-%04d", p, i))
			}
		}()
	}
	wg.Wait()
	agg.Flush()

	lines := sink.all()
	require.Len(t, lines, producers*perProducer)

	// Each producer's own lines keep their relative order.
	last := make(map[string]string)
	for _, l := range lines {
		prefix := strings.SplitN(l, "-", 2)[0]
		require.Greater(t, l, last[prefix])
		last[prefix] = l
	}
}

func TestSlogSink_SingleRecordPerBatch(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	agg := New(NewSlogSink(logger, slog.String("run_id", "r1")), "stderr")

	agg.AddLine("one")
	agg.AddLine("two")
	agg.Flush()

	records := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, records, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(records[0]), &rec))
	require.Equal(t, "one\ntwo", rec["msg"])
	require.Equal(t, "stderr", rec["stream"])
	require.Equal(t, "r1", rec["run_id"])
	require.EqualValues(t, 2, rec["lines"])
}

func TestMultiSinkAndNilSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	MultiSink{a, nil, b}.Emit("stdout", []string{"x"})
	require.Equal(t, []string{"x"}, a.all())
	require.Equal(t, []string{"x"}, b.all())

	agg := New(nil, "stdout")
	agg.AddLine("dropped")
	agg.Flush()
	require.Equal(t, 0, agg.Pending())
}

func TestEncodeBatch(t *testing.T) {
	data, err := encodeBatch("run-1", "stdout", []string{"a", "b"}, time.Unix(10, 0))
	require.NoError(t, err)

	var msg BatchMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, "run-1", msg.RunID)
	require.Equal(t, []string{"a", "b"}, msg.Lines)
	require.True(t, msg.Timestamp.Equal(time.Unix(10, 0)))
}

func TestNewNATSSink_UnreachableServer(t *testing.T) {
	_, err := NewNATSSink("nats://127.0.0.1:1", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to connect to NATS")
}
