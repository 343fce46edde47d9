package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/coderunner/internal/auth"
	"git.home.luguber.info/inful/coderunner/internal/config"
	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
	"git.home.luguber.info/inful/coderunner/internal/history"
	"git.home.luguber.info/inful/coderunner/internal/logbatch"
	"git.home.luguber.info/inful/coderunner/internal/logfields"
	"git.home.luguber.info/inful/coderunner/internal/metrics"
	"git.home.luguber.info/inful/coderunner/internal/process"
	"git.home.luguber.info/inful/coderunner/internal/runner"
)

// Stack holds the collaborators built from the runtime settings for one
// command invocation. Close must be called once the command is done.
type Stack struct {
	Executor *process.Executor
	Auth     *auth.Manager
	Recorder *metrics.PrometheusRecorder
	History  history.Store

	logger   *slog.Logger
	nats     *logbatch.NATSSink
	textfile string
}

// NewStack wires the executor with its sinks, metrics and run history.
// An unreachable NATS server only disables live log publishing.
func NewStack(rt config.Runtime, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Stack{
		Auth:     auth.NewManager(rt.SSHKeyDir),
		Recorder: metrics.NewPrometheusRecorder(nil),
		logger:   logger,
		textfile: rt.MetricsTextfile,
	}

	opts := []process.Option{
		process.WithLogger(logger),
		process.WithRecorder(s.Recorder),
		process.WithFlushThresholds(rt.FlushBytes, rt.FlushInterval),
	}

	if rt.HistoryDB != "" {
		store, err := history.NewSQLiteStore(rt.HistoryDB)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open run history").
				WithContext("path", rt.HistoryDB).
				Build()
		}
		s.History = store
		opts = append(opts, process.WithHistory(store))
	}

	if rt.NATSURL != "" {
		sink, err := logbatch.NewNATSSink(rt.NATSURL, rt.NATSSubject)
		if err != nil {
			logger.Warn("Live log publishing disabled", logfields.Error(err))
		} else {
			s.nats = sink
		}
	}
	opts = append(opts, process.WithSinkFactory(s.sinkFor))

	s.Executor = process.NewExecutor(opts...)
	return s, nil
}

func (s *Stack) sinkFor(runID string) logbatch.Sink {
	local := logbatch.NewSlogSink(s.logger, logfields.RunID(runID))
	if s.nats == nil {
		return local
	}
	return logbatch.MultiSink{local, s.nats.WithRunID(runID)}
}

// Runner builds the job runner for cfg on top of the stack.
func (s *Stack) Runner(cfg *config.Config) *runner.Runner {
	return runner.New(cfg, s.Executor, s.Auth, runner.WithRecorder(s.Recorder))
}

// Close flushes metrics and releases connections. Failures are logged.
func (s *Stack) Close() {
	if s.textfile != "" {
		if err := s.Recorder.WriteTextfile(s.textfile); err != nil {
			s.logger.Warn("Failed to write metrics", logfields.Path(s.textfile), logfields.Error(err))
		}
	}
	if err := s.nats.Close(); err != nil {
		s.logger.Warn("Failed to close NATS connection", logfields.Error(err))
	}
	if s.History != nil {
		if err := s.History.Close(); err != nil {
			s.logger.Warn("Failed to close run history", logfields.Error(err))
		}
	}
}
