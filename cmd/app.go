// Package cmd implements the vth command line application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/etnz/valuta"
	"github.com/etnz/valuta/coingecko"
	"github.com/etnz/valuta/config"
	"github.com/etnz/valuta/exchangerate"
	"github.com/etnz/valuta/metrics"
	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// App holds the components every command works with. It is built once from the
// configuration in main.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	HTTP       *http.Client
	Rates      *valuta.RatesStore
	Converter  *valuta.Converter
	Portfolios *valuta.PortfolioRepository
	Auth       *valuta.Auth
	Session    *valuta.Session
	Metrics    *metrics.Collector
}

// NewApp wires the components on top of cfg.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	cache := valuta.NewFileCache(0)
	rates := valuta.NewRatesStore(cfg.RatesPath(), cfg.HistoryPath(), cache)
	return &App{
		Config:     cfg,
		Logger:     logger,
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		Rates:      rates,
		Converter:  valuta.NewConverter(rates),
		Portfolios: valuta.NewPortfolioRepository(cfg.PortfoliosPath(), cache),
		Auth:       &valuta.Auth{Users: valuta.NewUserRepository(cfg.UsersPath(), cache)},
		Session:    valuta.NewSession(cfg.SessionPath(), cache),
		Metrics:    metrics.New(),
	}
}

// Sources returns the rate sources in merge order: a later source overrides an
// earlier one.
func (a *App) Sources(log *slog.Logger) []valuta.RateSource {
	return []valuta.RateSource{
		&coingecko.Client{
			HTTP:    a.HTTP,
			URL:     a.Config.CoinGeckoURL,
			Base:    a.Config.Base,
			Symbols: a.Config.Cryptos,
			Logger:  log,
		},
		&exchangerate.Client{
			HTTP:    a.HTTP,
			URL:     a.Config.ExchangeRateURL,
			APIKey:  a.Config.ExchangeRateAPIKey,
			Base:    a.Config.Base,
			Symbols: a.Config.Fiats,
			Logger:  log,
		},
	}
}

// Aggregator returns an Aggregator over every source.
func (a *App) Aggregator(ctx context.Context) *valuta.Aggregator {
	log := loggerFrom(ctx, a.Logger)
	return &valuta.Aggregator{
		Sources:    a.Sources(log),
		Store:      a.Rates,
		Base:       a.Config.Base,
		TTLSeconds: a.Config.TTLSeconds,
		Logger:     log,
		Observer:   a.Metrics,
	}
}

// Trading returns a TradingEngine logging with the command's logger.
func (a *App) Trading(ctx context.Context) *valuta.TradingEngine {
	return &valuta.TradingEngine{
		Portfolios: a.Portfolios,
		Converter:  a.Converter,
		Logger:     loggerFrom(ctx, a.Logger),
	}
}

// CurrentUser returns the logged in user.
func (a *App) CurrentUser() (string, error) {
	user, err := a.Session.User()
	if err != nil {
		return "", err
	}
	if user == "" {
		return "", fmt.Errorf("%w: nobody is logged in, run `vth login` first", valuta.ErrAuth)
	}
	return user, nil
}

// warnIfStale prints a warning when the rates are missing or expired. It never
// stops the command.
func (a *App) warnIfStale(ctx context.Context) {
	expired, err := a.Converter.Expired()
	switch {
	case errors.Is(err, valuta.ErrNotFound):
		fmt.Fprintln(stderr, "Warning: no rates yet, run `vth update-rates`.")
	case err != nil:
		loggerFrom(ctx, a.Logger).Warn("cannot check rates freshness", "error", err)
	case expired:
		age, _ := a.Converter.Age()
		fmt.Fprintf(stderr, "Warning: rates are %v old and expired, run `vth update-rates`.\n", age.Round(time.Second))
	}
}

// fail reports err to the operator and the log.
func fail(ctx context.Context, err error) subcommands.ExitStatus {
	loggerFrom(ctx, slog.Default()).Error("command failed", "error", err)
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
