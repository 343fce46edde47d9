package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	DataDir string `name:"data-dir" help:"Override runtime.data_dir"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, false)
	if err != nil {
		return err
	}
	if r.DataDir != "" {
		cfg.Runtime.DataDir = r.DataDir
	}

	stack, err := NewStack(cfg.Runtime, g.logger())
	if err != nil {
		return err
	}
	defer stack.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g.logger().Info("Starting job", slog.String("job", cfg.Describe()), slog.String("data_dir", cfg.Runtime.DataDir))
	return stack.Runner(cfg).Run(ctx)
}
