package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/coderunner/internal/process"
)

// ExecCmd implements the 'exec' command.
type ExecCmd struct {
	Dir     string   `help:"Working directory of the command"`
	Command []string `arg:"" passthrough:"" help:"Command and its arguments"`
}

func (e *ExecCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, true)
	if err != nil {
		return err
	}
	stack, err := NewStack(cfg.Runtime, g.logger())
	if err != nil {
		return err
	}
	defer stack.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := stack.Executor.Run(ctx, process.Command{Args: e.Command, Dir: e.Dir}, "Command finished.", "Command failed.")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.stdout(), "run %s exited %d after %s\n", outcome.RunID, outcome.ExitCode, outcome.Duration.Round(time.Millisecond))
	return err
}
