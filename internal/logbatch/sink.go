package logbatch

import (
	"context"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/coderunner/internal/logfields"
)

// Sink receives flushed batches. Emit must not retain lines after returning
// unless it copies them.
type Sink interface {
	Emit(stream string, lines []string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(stream string, lines []string)

func (f SinkFunc) Emit(stream string, lines []string) { f(stream, lines) }

// DiscardSink drops every batch.
type DiscardSink struct{}

func (DiscardSink) Emit(string, []string) {}

// SlogSink writes each batch as one slog record whose message is the joined lines.
type SlogSink struct {
	Logger *slog.Logger
	Level  slog.Level
	// Attrs are appended to every record (for example the run id).
	Attrs []slog.Attr
}

// NewSlogSink returns a sink logging at Info on logger (slog.Default when nil).
func NewSlogSink(logger *slog.Logger, attrs ...slog.Attr) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{Logger: logger, Level: slog.LevelInfo, Attrs: attrs}
}

func (s *SlogSink) Emit(stream string, lines []string) {
	attrs := make([]slog.Attr, 0, len(s.Attrs)+2)
	attrs = append(attrs, s.Attrs...)
	if stream != "" {
		attrs = append(attrs, logfields.Stream(stream))
	}
	attrs = append(attrs, logfields.Lines(len(lines)))
	s.Logger.LogAttrs(context.Background(), s.Level, strings.Join(lines, "\n"), attrs...)
}

// MultiSink fans a batch out to every non-nil sink in order.
type MultiSink []Sink

func (m MultiSink) Emit(stream string, lines []string) {
	for _, s := range m {
		if s != nil {
			s.Emit(stream, lines)
		}
	}
}
