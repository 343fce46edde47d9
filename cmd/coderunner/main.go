package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/coderunner/cmd/coderunner/commands"
	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
	"git.home.luguber.info/inful/coderunner/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("coderunner"),
		kong.Description("Fetch a Python script from inline code or git and run it in a supervised virtual environment."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default(), Stdout: os.Stdout}
	if err := parser.Run(global, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
