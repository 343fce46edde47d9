package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
	"git.home.luguber.info/inful/coderunner/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to show" default:"20"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, true)
	if err != nil {
		return err
	}
	if cfg.Runtime.HistoryDB == "" {
		return ferrors.ConfigError("Run history is not configured").
			WithDetail("set runtime.history_db in the configuration file").
			Build()
	}

	store, err := history.NewSQLiteStore(cfg.Runtime.HistoryDB)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open run history").Build()
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to read run history").Build()
	}

	tw := tabwriter.NewWriter(g.stdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tSTARTED\tDURATION\tEXIT\tCOMMAND\tRESULT")
	for _, run := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Duration.Round(time.Millisecond),
			run.ExitCode,
			run.Command,
			run.Label,
		)
	}
	return tw.Flush()
}
