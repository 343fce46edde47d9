package commands

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/coderunner/internal/config"
	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run      RunCmd      `cmd:"" help:"Fetch the configured script and run it in a fresh virtual environment"`
	Branches BranchesCmd `cmd:"" help:"List the branches of the configured repository as JSON"`
	Files    FilesCmd    `cmd:"" help:"List the Python files of the configured repository as JSON"`
	Exec     ExecCmd     `cmd:"" help:"Run an arbitrary command under the process supervisor"`
	History  HistoryCmd  `cmd:"" help:"Show recently supervised processes"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig reads the configuration file. With optional set, a missing file
// yields the defaults instead of an error.
func loadConfig(path string, optional bool) (*config.Config, error) {
	if optional {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			slog.Debug("No configuration file, using defaults", slog.String("path", path))
			return config.Parse([]byte("{}"))
		}
	}
	return config.Load(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to write output").Build()
	}
	return nil
}
