package cmd

import (
	"flag"
	"log/slog"

	"github.com/etnz/valuta"
	"github.com/etnz/valuta/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Verbose also writes the log records on stderr.
var Verbose = flag.Bool("v", false, "also print log records on stderr")

// EnvFile is the dotenv file loaded before the environment.
var EnvFile = flag.String("env", ".env", "dotenv file with VTH_* settings")

// commands lists every subcommand bound to app, grouped, with its middleware.
func commands(app *App) map[string][]subcommands.Command {
	log := app.Logger
	std := func(c subcommands.Command) subcommands.Command { return chain(c, logged(log), timed) }
	return map[string][]subcommands.Command{
		"accounts": {
			std(&registerCmd{app: app}),
			std(&loginCmd{app: app}),
			std(&logoutCmd{app: app}),
		},
		"trading": {
			std(&showPortfolioCmd{app: app}),
			std(&tradeCmd{app: app, side: valuta.Buy}),
			chain(&tradeCmd{app: app, side: valuta.Sell}, logged(log), confirmed, timed),
		},
		"rates": {
			std(&getRateCmd{app: app}),
			std(&updateRatesCmd{app: app}),
			std(&showRatesCmd{app: app}),
		},
		"help": {
			&topicCmd{},
		},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander, app *App) {
	for group, cmds := range commands(app) {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// Completion returns the shell completion tree of vth.
func Completion(currencies []string) *complete.Command {
	currency := predict.Set(currencies)
	values := map[string]complete.Predictor{
		"currency": currency,
		"src":      currency,
		"dst":      currency,
		"base":     currency,
		"env":      predict.Files("*"),
	}

	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{},
	}
	flag.CommandLine.VisitAll(func(fl *flag.Flag) {
		root.Flags[fl.Name] = predictor(values, fl.Name)
	})

	app := &App{Logger: slog.Default()}
	for _, cmds := range commands(app) {
		for _, c := range cmds {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(fs)
			sub := &complete.Command{Flags: map[string]complete.Predictor{}}
			fs.VisitAll(func(fl *flag.Flag) {
				sub.Flags[fl.Name] = predictor(values, fl.Name)
			})
			root.Sub[c.Name()] = sub
		}
	}
	root.Sub["topic"].Args = complete.PredictFunc(func(prefix string) []string {
		topics, _ := docs.AllTopics()
		return topics
	})
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}

func predictor(values map[string]complete.Predictor, name string) complete.Predictor {
	if p, ok := values[name]; ok {
		return p
	}
	return predict.Nothing
}
