// Command vth trades currencies against rates aggregated from CoinGecko and
// ExchangeRate-API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/valuta/cmd"
	"github.com/etnz/valuta/coingecko"
	"github.com/etnz/valuta/config"
	"github.com/etnz/valuta/logging"
	"github.com/google/subcommands"
)

// fiats offered by shell completion, next to every supported crypto.
var fiats = []string{"USD", "EUR", "RUB", "GBP", "JPY", "CHF", "CNY"}

func main() {
	cmd.Completion(append(fiats, coingecko.Symbols()...)).Complete("vth")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	flag.Parse()

	cfg, err := config.Load(*cmd.EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	var tee io.Writer
	if *cmd.Verbose {
		tee = os.Stderr
	}
	logger, closer, err := logging.New(logging.Options{Dir: cfg.LogDir, Level: cfg.LogLevel, JSON: cfg.JSONLogs, Tee: tee})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	slog.SetDefault(logger)

	app := cmd.NewApp(cfg, logger)
	cmd.Register(commander, app)

	os.Exit(run(commander, app, closer))
}

func run(commander *subcommands.Commander, app *cmd.App, closer io.Closer) int {
	defer closer.Close()

	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if ok, code := cmd.RunExtension(app, name, flag.Args()[1:]); ok {
			return code
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return int(commander.Execute(ctx))
}

func registered(commander *subcommands.Commander, name string) bool {
	found := false
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		found = found || c.Name() == name
	})
	return found
}
