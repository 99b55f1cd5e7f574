package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/valuta"
	"github.com/etnz/valuta/renderer"
	"github.com/google/subcommands"
)

// tradeCmd implements both buy and sell.
type tradeCmd struct {
	app      *App
	side     valuta.Side
	currency string
	amount   float64
}

func (c *tradeCmd) Name() string { return string(c.side) }
func (c *tradeCmd) Synopsis() string {
	if c.side == valuta.Sell {
		return "withdraw an amount from a wallet of the logged in user"
	}
	return "deposit an amount into a wallet of the logged in user"
}
func (c *tradeCmd) Usage() string {
	return fmt.Sprintf(`vth %s -currency <code> -amount <amount>

  Trades amount units of currency and prints the estimated value in USD.
  A warning is printed when the rates are expired, the trade still happens.
`, c.side)
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "currency code, e.g. EUR or BTC")
	f.Float64Var(&c.amount, "amount", 0, "amount to trade, in units of currency")
}

func (c *tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := c.app.CurrentUser()
	if err != nil {
		return fail(ctx, err)
	}
	c.app.warnIfStale(ctx)

	engine := c.app.Trading(ctx)
	var t *valuta.Trade
	if c.side == valuta.Sell {
		t, err = engine.Sell(user, c.currency, c.amount)
	} else {
		t, err = engine.Buy(user, c.currency, c.amount)
	}
	if t == nil {
		return fail(ctx, err)
	}

	past := map[valuta.Side]string{valuta.Buy: "Bought", valuta.Sell: "Sold"}[t.Side]
	fmt.Fprintf(stdout, "%s %v %s, %s wallet: %v.\n", past, t.Amount, t.Currency, t.Currency, valuta.M(t.Balance, t.Currency))
	if err != nil {
		// the trade is saved, only its estimate failed.
		return fail(ctx, err)
	}
	fmt.Fprintf(stdout, "Estimated value: %v (rate %.8f).\n", valuta.M(t.EstimatedUSD, valuta.DefaultBase), t.Rate)
	return subcommands.ExitSuccess
}

type showPortfolioCmd struct {
	app  *App
	base string
}

func (*showPortfolioCmd) Name() string     { return "show-portfolio" }
func (*showPortfolioCmd) Synopsis() string { return "display the wallets of the logged in user" }
func (*showPortfolioCmd) Usage() string {
	return `vth show-portfolio [-base <code>]

  Displays every wallet of the logged in user and its value in the base currency.
`
}

func (c *showPortfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "base", valuta.DefaultBase, "currency to value the wallets in")
}

func (c *showPortfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := c.app.CurrentUser()
	if err != nil {
		return fail(ctx, err)
	}
	c.app.warnIfStale(ctx)
	p, total, err := c.app.Trading(ctx).Valuation(user, c.base)
	if err != nil {
		return fail(ctx, err)
	}
	v, err := renderer.NewValuation(p, c.base, total, c.app.Converter.Rate)
	if err != nil {
		return fail(ctx, err)
	}
	printMarkdown(renderer.RenderValuation(v))
	return subcommands.ExitSuccess
}
