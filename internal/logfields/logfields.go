package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyCommand    = "command"
	KeyStream     = "stream"
	KeyExitCode   = "exit_code"
	KeyDurationMS = "duration_ms"
	KeyLines      = "lines"
	KeyLabel      = "label"
	KeyDetail     = "detail"
	KeyURL        = "url"
	KeyBranch     = "branch"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyPackage    = "package"
	KeyAuthMode   = "auth_mode"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr         { return slog.String(KeyRunID, id) }
func Command(cmd string) slog.Attr      { return slog.String(KeyCommand, cmd) }
func Stream(s string) slog.Attr         { return slog.String(KeyStream, s) }
func ExitCode(code int) slog.Attr       { return slog.Int(KeyExitCode, code) }
func Lines(n int) slog.Attr             { return slog.Int(KeyLines, n) }
func Label(l string) slog.Attr          { return slog.String(KeyLabel, l) }
func Detail(d string) slog.Attr         { return slog.String(KeyDetail, d) }
func URL(u string) slog.Attr            { return slog.String(KeyURL, u) }
func Branch(b string) slog.Attr         { return slog.String(KeyBranch, b) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func File(f string) slog.Attr           { return slog.String(KeyFile, f) }
func Package(p string) slog.Attr        { return slog.String(KeyPackage, p) }
func AuthMode(m string) slog.Attr       { return slog.String(KeyAuthMode, m) }
func Duration(d time.Duration) slog.Attr { return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
