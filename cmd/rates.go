package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/valuta"
	"github.com/etnz/valuta/renderer"
	"github.com/google/subcommands"
)

type getRateCmd struct {
	app      *App
	src, dst string
}

func (*getRateCmd) Name() string     { return "get-rate" }
func (*getRateCmd) Synopsis() string { return "display the exchange rate between two currencies" }
func (*getRateCmd) Usage() string {
	return `vth get-rate -src <code> -dst <code>

  Displays how many dst units one src unit is worth, from the last update.
`
}

func (c *getRateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.src, "src", "", "source currency code")
	f.StringVar(&c.dst, "dst", valuta.DefaultBase, "destination currency code")
}

func (c *getRateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.app.warnIfStale(ctx)
	r, err := c.app.Converter.Rate(c.src, c.dst)
	if err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintf(stdout, "%s -> %s = %.8f\n", valuta.NormalizeCode(c.src), valuta.NormalizeCode(c.dst), r)
	return subcommands.ExitSuccess
}

type updateRatesCmd struct {
	app *App
}

func (*updateRatesCmd) Name() string     { return "update-rates" }
func (*updateRatesCmd) Synopsis() string { return "fetch the latest rates from every source" }
func (*updateRatesCmd) Usage() string {
	return `vth update-rates

  Fetches crypto rates from CoinGecko and fiat rates from ExchangeRate-API, then
  saves the merged table. A failing source is reported but does not stop the update.
`
}

func (c *updateRatesCmd) SetFlags(f *flag.FlagSet) {}

func (c *updateRatesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	result, err := c.app.Aggregator(ctx).Run(ctx)
	if path := c.app.Config.MetricsFile; path != "" {
		if err := c.app.Metrics.WriteTextfile(path); err != nil {
			loggerFrom(ctx, c.app.Logger).Warn("cannot write metrics", "file", path, "error", err)
		}
	}
	if err != nil {
		return fail(ctx, err)
	}

	fmt.Fprintf(stdout, "Updated %d rates.\n", result.RatesCount)
	if len(result.Errors) > 0 {
		fmt.Fprintln(stdout, "Some sources failed, the update went on without them:")
		for _, e := range result.Errors {
			fmt.Fprintf(stdout, " - %s\n", e)
		}
	}
	return subcommands.ExitSuccess
}

type showRatesCmd struct {
	app     *App
	history bool
}

func (*showRatesCmd) Name() string     { return "show-rates" }
func (*showRatesCmd) Synopsis() string { return "display the last rate table" }
func (*showRatesCmd) Usage() string {
	return `vth show-rates [-history]

  Displays the rates of the last update, its freshness and the failed sources.
`
}

func (c *showRatesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.history, "history", false, "also count the updates kept in the history")
}

func (c *showRatesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	doc, err := c.app.Rates.ReadCurrent()
	if err != nil {
		return fail(ctx, err)
	}
	expired, err := c.app.Converter.Expired()
	if err != nil {
		return fail(ctx, err)
	}
	var n int
	if c.history {
		history, err := c.app.Rates.ReadHistory()
		if err != nil {
			return fail(ctx, err)
		}
		n = len(history)
	}
	printMarkdown(renderer.RenderRates(renderer.NewRates(doc, expired, n)))
	return subcommands.ExitSuccess
}
