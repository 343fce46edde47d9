// Package metrics provides the observability hooks for coderunner.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so no call site needs a nil check:
//
//	exec := process.NewExecutor(process.WithRecorder(metrics.NoopRecorder{}))
//
// When a metrics textfile is configured the CLI swaps in a PrometheusRecorder
// backed by its own registry and writes the registry out on exit with
// WriteTextfile, in the node_exporter textfile collector format.
package metrics
