package logbatch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/coderunner/internal/logfields"
)

// DefaultNATSSubject is used when no subject is configured.
const DefaultNATSSubject = "coderunner.logs"

// BatchMessage is the JSON payload published for every batch.
type BatchMessage struct {
	RunID     string    `json:"run_id,omitempty"`
	Stream    string    `json:"stream"`
	Lines     []string  `json:"lines"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSSink publishes batches to a NATS subject so an external collector can
// follow a run live. Publish failures are logged and never fail the run.
type NATSSink struct {
	conn    *nats.Conn
	subject string
	runID   string
}

// NewNATSSink connects to url. The returned sink owns the connection; call Close.
func NewNATSSink(url, subject string) (*NATSSink, error) {
	if subject == "" {
		subject = DefaultNATSSubject
	}
	conn, err := nats.Connect(url,
		nats.Name("coderunner"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS log sink connected", logfields.URL(conn.ConnectedUrlRedacted()), slog.String("subject", subject))
	return &NATSSink{conn: conn, subject: subject}, nil
}

// WithRunID returns a sink sharing the connection that tags messages with id.
func (s *NATSSink) WithRunID(id string) *NATSSink {
	clone := *s
	clone.runID = id
	return &clone
}

// Subject returns the subject messages are published on.
func (s *NATSSink) Subject() string { return s.subject }

func (s *NATSSink) Emit(stream string, lines []string) {
	data, err := encodeBatch(s.runID, stream, lines, time.Now())
	if err != nil {
		slog.Warn("Failed to encode log batch", logfields.Error(err))
		return
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		slog.Warn("Failed to publish log batch", logfields.Stream(stream), logfields.Error(err))
	}
}

// Close drains pending publishes and closes the connection.
func (s *NATSSink) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Drain()
}

func encodeBatch(runID, stream string, lines []string, ts time.Time) ([]byte, error) {
	return json.Marshal(BatchMessage{RunID: runID, Stream: stream, Lines: lines, Timestamp: ts.UTC()})
}
