package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// BranchesCmd implements the 'branches' command.
type BranchesCmd struct{}

func (b *BranchesCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, false)
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

	branches, err := stack.Runner(cfg).Branches(ctx)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout(), branches)
}

// FilesCmd implements the 'files' command.
type FilesCmd struct{}

func (f *FilesCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, false)
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

	files, err := stack.Runner(cfg).Files(ctx)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout(), files)
}
