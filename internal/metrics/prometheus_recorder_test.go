package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveProcessDuration("git", 150*time.Millisecond, ResultSuccess)
	pr.IncProcessResult("git", ResultSuccess)
	pr.IncProcessResult("uv", ResultFailed)
	pr.IncProcessResult("uv", ResultFailed)
	pr.ObserveGitOperation("clone", time.Second, true)
	pr.IncLogFlush("stderr", "size", 10)
	pr.IncLogFlush("stderr", "explicit", 3)

	require.InDelta(t, 1, testutil.ToFloat64(pr.processResults.WithLabelValues("git", "success")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(pr.processResults.WithLabelValues("uv", "failed")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.logFlushes.WithLabelValues("stderr", "size")), 0)
	require.InDelta(t, 13, testutil.ToFloat64(pr.logLines.WithLabelValues("stderr")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestPrometheusRecorderNilReceiver(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.IncProcessResult("git", ResultSuccess)
		pr.IncLogFlush("stdout", "interval", 1)
	})
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncProcessResult("python", ResultSpawnError)

	path := filepath.Join(t.TempDir(), "coderunner.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `coderunner_process_results_total{command="python",result="spawn_error"} 1`)
}
