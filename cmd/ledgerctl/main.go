// Command ledgerctl imports statements and runs ledger maintenance and reports
// against the configured database.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/cli"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
)

var logLevel = flag.String("log-level", "warn", "Log level written to stderr")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	flag.Parse()

	app := cli.NewApp(logger.NewJSON(os.Stderr, *logLevel))
	cli.Register(commander, app)

	status := commander.Execute(context.Background())
	if err := app.Close(); err != nil && status == subcommands.ExitSuccess {
		status = subcommands.ExitFailure
	}
	os.Exit(int(status))
}
