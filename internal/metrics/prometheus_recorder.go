package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "coderunner"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	processDuration *prom.HistogramVec
	processResults  *prom.CounterVec
	gitDuration     *prom.HistogramVec
	logFlushes      *prom.CounterVec
	logLines        *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		processDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "process_duration_seconds",
			Help:      "Wall time of spawned processes",
			Buckets:   prom.ExponentialBuckets(0.05, 2, 12),
		}, []string{"command", "result"}),
		processResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "process_results_total",
			Help:      "Spawned processes by command and result",
		}, []string{"command", "result"}),
		gitDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "git_operation_duration_seconds",
			Help:      "Duration of repository operations (clone, ls-remote)",
			Buckets:   prom.DefBuckets,
		}, []string{"operation", "result"}),
		logFlushes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "log_flushes_total",
			Help:      "Log batches emitted by stream and flush reason",
		}, []string{"stream", "reason"}),
		logLines: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "log_lines_total",
			Help:      "Log lines emitted by stream",
		}, []string{"stream"}),
	}
	reg.MustRegister(pr.processDuration, pr.processResults, pr.gitDuration, pr.logFlushes, pr.logLines)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveProcessDuration(command string, d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.processDuration.WithLabelValues(command, string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncProcessResult(command string, result ResultLabel) {
	if p == nil {
		return
	}
	p.processResults.WithLabelValues(command, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveGitOperation(op string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.gitDuration.WithLabelValues(op, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncLogFlush(stream, reason string, lines int) {
	if p == nil {
		return
	}
	p.logFlushes.WithLabelValues(stream, reason).Inc()
	p.logLines.WithLabelValues(stream).Add(float64(lines))
}

// WriteTextfile writes every metric of the registry to path atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
