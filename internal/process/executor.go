package process

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
	"git.home.luguber.info/inful/coderunner/internal/history"
	"git.home.luguber.info/inful/coderunner/internal/logbatch"
	"git.home.luguber.info/inful/coderunner/internal/logfields"
	"git.home.luguber.info/inful/coderunner/internal/metrics"
)

// UnknownError is the failure detail used when the child wrote nothing to stderr.
const UnknownError = "Unknown error"

// SinkFactory builds the sink for one run, so sinks can tag batches with the run id.
type SinkFactory func(runID string) logbatch.Sink

// Runner is the executor contract consumed by the git and pyenv packages.
type Runner interface {
	Run(ctx context.Context, cmd Command, okLabel, failLabel string) (*Outcome, error)
}

// Executor spawns commands and supervises their output.
type Executor struct {
	logger        *slog.Logger
	sinks         SinkFactory
	recorder      metrics.Recorder
	store         history.Store
	flushBytes    int
	flushInterval time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for lifecycle messages and the default sink.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSinkFactory replaces the default slog sink.
func WithSinkFactory(f SinkFactory) Option {
	return func(e *Executor) {
		if f != nil {
			e.sinks = f
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Executor) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithHistory records every finished run in store.
func WithHistory(store history.Store) Option {
	return func(e *Executor) { e.store = store }
}

// WithFlushThresholds overrides the aggregator thresholds. Zero keeps the default.
func WithFlushThresholds(maxBytes int, interval time.Duration) Option {
	return func(e *Executor) {
		e.flushBytes = maxBytes
		e.flushInterval = interval
	}
}

// NewExecutor returns an Executor logging batches through slog by default.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sinks == nil {
		logger := e.logger
		e.sinks = func(runID string) logbatch.Sink {
			return logbatch.NewSlogSink(logger, logfields.RunID(runID))
		}
	}
	return e
}

// Run starts cmd, drains both output streams until EOF and waits for exit.
//
// Exit code 0 logs okLabel (with the stderr tail as detail when there is one)
// and returns the Outcome. A non-zero exit returns the Outcome together with
// an ExecutionError whose message is failLabel and whose detail is the stderr
// tail. When the command cannot be started the Outcome is nil.
func (e *Executor) Run(ctx context.Context, cmd Command, okLabel, failLabel string) (*Outcome, error) {
	if len(cmd.Args) == 0 {
		return nil, ferrors.ValidationError("empty command").Build()
	}
	redact := cmd.Redact
	if redact == nil {
		redact = func(s string) string { return s }
	}

	runID := uuid.NewString()
	display := redact(strings.Join(cmd.Args, " "))
	name := filepath.Base(cmd.Args[0])
	logger := e.logger.With(logfields.RunID(runID))
	logger.Debug("Starting process", logfields.Command(display), logfields.Path(cmd.Dir))

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	c.Env = mergeEnv(os.Environ(), cmd.Env)

	start := time.Now()
	stdout, stderr, err := pipes(c)
	if err == nil {
		err = c.Start()
	}
	if err != nil {
		e.recorder.IncProcessResult(name, metrics.ResultSpawnError)
		e.record(ctx, history.Run{
			ID: runID, Command: display, Label: failLabel, ExitCode: -1,
			StderrTail: redact(err.Error()), StartedAt: start,
		})
		return nil, ferrors.ExecutionError(failLabel).
			WithCause(err).
			WithDetail(redact(err.Error())).
			WithContext("run_id", runID).
			WithContext("command", display).
			Build()
	}

	sink := e.sinks(runID)
	observer := logbatch.WithObserver(func(stream string, reason logbatch.FlushReason, lines int) {
		e.recorder.IncLogFlush(stream, string(reason), lines)
	})
	outAgg := logbatch.New(sink, "stdout", e.aggregatorOptions(observer)...)
	errAgg := logbatch.New(sink, "stderr", e.aggregatorOptions(observer)...)
	tail := newLineRing(StderrTailLines)

	var wg sync.WaitGroup
	var stderrErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		stderrErr = drain(stderr, func(line string) {
			line = redact(line)
			tail.push(line)
			errAgg.AddLine(line)
		})
	}()

	outcome := &Outcome{RunID: runID}
	stdoutErr := drain(stdout, func(line string) {
		outcome.StdoutLines++
		if cmd.CaptureStdout {
			outcome.Stdout = append(outcome.Stdout, line)
		}
		outAgg.AddLine(redact(line))
	})

	wg.Wait()
	outAgg.Flush()
	errAgg.Flush()

	waitErr := c.Wait()
	outcome.Duration = time.Since(start)
	outcome.StderrTail = tail.lines()
	outcome.ExitCode = exitCode(waitErr)
	outcome.Succeeded = outcome.ExitCode == 0

	for _, readErr := range []error{stdoutErr, stderrErr} {
		if readErr != nil {
			logger.Warn("Output stream read failed", logfields.Error(readErr))
		}
	}

	result := metrics.ResultSuccess
	label := okLabel
	if !outcome.Succeeded {
		result = metrics.ResultFailed
		label = failLabel
	}
	e.recorder.ObserveProcessDuration(name, outcome.Duration, result)
	e.recorder.IncProcessResult(name, result)
	e.record(ctx, history.Run{
		ID: runID, Command: display, Label: label, ExitCode: outcome.ExitCode,
		Succeeded: outcome.Succeeded, StderrTail: outcome.Tail(),
		StartedAt: start, Duration: outcome.Duration,
	})

	logger.Debug("Process exited",
		logfields.Command(display),
		logfields.ExitCode(outcome.ExitCode),
		logfields.Duration(outcome.Duration))

	if outcome.Succeeded {
		if len(outcome.StderrTail) > 0 {
			logger.Info(okLabel, logfields.Detail(outcome.Tail()))
		} else {
			logger.Info(okLabel)
		}
		return outcome, nil
	}

	detail := outcome.Tail()
	if detail == "" {
		detail = UnknownError
	}
	return outcome, ferrors.ExecutionError(failLabel).
		WithDetail(detail).
		WithCause(waitErr).
		WithContext("run_id", runID).
		WithContext("exit_code", outcome.ExitCode).
		Build()
}

func (e *Executor) aggregatorOptions(extra ...logbatch.Option) []logbatch.Option {
	opts := []logbatch.Option{
		logbatch.WithMaxBytes(e.flushBytes),
		logbatch.WithInterval(e.flushInterval),
	}
	return append(opts, extra...)
}

func (e *Executor) record(ctx context.Context, run history.Run) {
	if e.store == nil {
		return
	}
	if err := e.store.Record(context.WithoutCancel(ctx), run); err != nil {
		e.logger.Warn("Failed to record run history", logfields.RunID(run.ID), logfields.Error(err))
	}
}

func pipes(c *exec.Cmd) (io.ReadCloser, io.ReadCloser, error) {
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return nil, nil, err
	}
	return stdout, stderr, nil
}

// drain reads r line by line until EOF. Lines of any length are accepted.
func drain(r io.Reader, fn func(string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			fn(strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code != 0 {
			return code
		}
	}
	return -1
}

// mergeEnv overlays overrides on base. Keys from base that are overridden are
// dropped so the child sees exactly one value per key.
func mergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[key]; ok {
			continue
		}
		out = append(out, kv)
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+overrides[k])
	}
	return out
}
