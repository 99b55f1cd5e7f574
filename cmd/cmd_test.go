package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/valuta"
	"github.com/etnz/valuta/config"
	"github.com/google/subcommands"
)

// testApp is an App over a temporary data folder and fake rate sources.
type testApp struct {
	*App
	coingecko    *httptest.Server
	exchangerate *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	coingecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bitcoin":{"usd":50000},"ethereum":{"usd":2500}}`)
	}))
	t.Cleanup(coingecko.Close)
	exchangerate := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v6/test-key/") {
			http.Error(w, `{"result":"error","error-type":"invalid-key"}`, http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"result":"success","conversion_rates":{"USD":1,"EUR":0.9,"RUB":90}}`)
	}))
	t.Cleanup(exchangerate.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:            filepath.Join(dir, "data"),
		LogDir:             filepath.Join(dir, "logs"),
		LogLevel:           "debug",
		Base:               "USD",
		Fiats:              []string{"USD", "EUR", "RUB"},
		Cryptos:            []string{"BTC", "ETH"},
		Timeout:            time.Second,
		TTLSeconds:         3600,
		ExchangeRateAPIKey: "test-key",
		CoinGeckoURL:       coingecko.URL,
		ExchangeRateURL:    exchangerate.URL,
		MetricsFile:        filepath.Join(dir, "valuta.prom"),
	}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	app.Auth.Cost = 4 // bcrypt.MinCost
	return &testApp{App: app, coingecko: coingecko, exchangerate: exchangerate}
}

// run executes one vth command line and returns its status and outputs.
func (a *testApp) run(t *testing.T, input string, args ...string) (subcommands.ExitStatus, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr, oldIn, oldRaw := stdout, stderr, stdin, *rawMarkdown
	stdout, stderr, stdin, *rawMarkdown = &out, &errOut, strings.NewReader(input), true
	defer func() { stdout, stderr, stdin, *rawMarkdown = oldOut, oldErr, oldIn, oldRaw }()

	fs := flag.NewFlagSet("vth", flag.ContinueOnError)
	cdr := subcommands.NewCommander(fs, "vth")
	Register(cdr, a.App)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	status := cdr.Execute(context.Background())
	return status, out.String(), errOut.String()
}

// mustRun fails the test unless the command succeeds, and returns its stdout.
func (a *testApp) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	status, out, errOut := a.run(t, "", args...)
	if status != subcommands.ExitSuccess {
		t.Fatalf("vth %s: status %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), status, out, errOut)
	}
	return out
}

func TestAccounts(t *testing.T) {
	app := newTestApp(t)

	if out := app.mustRun(t, "register", "-username", "alice", "-password", "password1"); out != "User alice registered.\n" {
		t.Errorf("register output = %q", out)
	}
	status, _, errOut := app.run(t, "", "register", "-username", "alice", "-password", "password2")
	if status != subcommands.ExitFailure || !strings.HasPrefix(errOut, "Error: authentication error: user \"alice\" already exists") {
		t.Errorf("duplicate register = %v, %q", status, errOut)
	}

	status, _, errOut = app.run(t, "", "login", "-username", "alice", "-password", "wrong-password")
	if status != subcommands.ExitFailure || !strings.Contains(errOut, "wrong password") {
		t.Errorf("bad login = %v, %q", status, errOut)
	}
	if out := app.mustRun(t, "login", "-username", "alice", "-password", "password1"); out != "Logged in as alice.\n" {
		t.Errorf("login output = %q", out)
	}
	if out := app.mustRun(t, "logout"); out != "Logged out alice.\n" {
		t.Errorf("logout output = %q", out)
	}
	if out := app.mustRun(t, "logout"); out != "Nobody is logged in.\n" {
		t.Errorf("second logout output = %q", out)
	}

	status, _, errOut = app.run(t, "", "buy", "-currency", "EUR", "-amount", "1")
	if status != subcommands.ExitFailure || !strings.Contains(errOut, "vth login") {
		t.Errorf("buy while logged out = %v, %q", status, errOut)
	}
}

func TestTradingSession(t *testing.T) {
	app := newTestApp(t)
	app.mustRun(t, "register", "-username", "bob", "-password", "password1")
	app.mustRun(t, "login", "-username", "bob", "-password", "password1")

	// Without rates the trade stands but cannot be valued.
	status, out, errOut := app.run(t, "", "buy", "-currency", "eur", "-amount", "10")
	if status != subcommands.ExitFailure {
		t.Errorf("buy without rates status = %v", status)
	}
	if want := fmt.Sprintf("Bought 10 EUR, EUR wallet: %v.\n", valuta.M(10, "EUR")); out != want {
		t.Errorf("buy without rates output = %q", out)
	}
	if !strings.Contains(errOut, "Warning: no rates yet") || !strings.Contains(errOut, "run update-rates first") {
		t.Errorf("buy without rates stderr = %q", errOut)
	}

	out = app.mustRun(t, "update-rates")
	if out != "Updated 5 rates.\n" {
		t.Errorf("update-rates output = %q", out)
	}

	out = app.mustRun(t, "buy", "-currency", "EUR", "-amount", "90")
	if want := fmt.Sprintf("Bought 90 EUR, EUR wallet: %v.\nEstimated value: $100.00 (rate 1.11111111).\n", valuta.M(100, "EUR")); out != want {
		t.Errorf("buy output = %q, want %q", out, want)
	}

	out = app.mustRun(t, "get-rate", "-src", "btc", "-dst", "usd")
	if out != "BTC -> USD = 50000.00000000\n" {
		t.Errorf("get-rate output = %q", out)
	}

	// sell asks for a confirmation.
	status, out, _ = app.run(t, "n\n", "sell", "-currency", "EUR", "-amount", "40")
	if status != subcommands.ExitFailure || !strings.HasSuffix(out, "[y/N] Cancelled.\n") {
		t.Errorf("cancelled sell = %v, %q", status, out)
	}
	status, out, _ = app.run(t, "y\n", "sell", "-currency", "EUR", "-amount", "40")
	if status != subcommands.ExitSuccess || !strings.Contains(out, fmt.Sprintf("Sold 40 EUR, EUR wallet: %v.", valuta.M(60, "EUR"))) {
		t.Errorf("confirmed sell = %v, %q", status, out)
	}

	status, _, errOut = app.run(t, "", "sell", "-yes", "-currency", "EUR", "-amount", "100")
	if status != subcommands.ExitFailure || !strings.Contains(errOut, "insufficient funds") {
		t.Errorf("over sell = %v, %q", status, errOut)
	}

	out = app.mustRun(t, "show-portfolio", "-base", "EUR")
	sixty := valuta.M(60, "EUR")
	for _, want := range []string{"# Portfolio of bob", fmt.Sprintf("| EUR | %v | 1 | %v |", sixty, sixty), fmt.Sprintf("**Total: %v**", sixty)} {
		if !strings.Contains(out, want) {
			t.Errorf("show-portfolio does not contain %q:\n%s", want, out)
		}
	}

	out = app.mustRun(t, "show-rates", "-history")
	for _, want := range []string{"# Rates per 1 USD", "fresh", "History: 1 updates kept.", "| BTC | 0.00002 | 50000 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("show-rates does not contain %q:\n%s", want, out)
		}
	}
}

func TestUpdateRates_PartialFailure(t *testing.T) {
	app := newTestApp(t)
	app.Config.ExchangeRateAPIKey = "revoked"

	out := app.mustRun(t, "update-rates")
	want := "Updated 3 rates.\nSome sources failed, the update went on without them:\n - ExchangeRate-API request failed: 401 Unauthorized: check EXCHANGERATE_API_KEY"
	if !strings.HasPrefix(out, want) {
		t.Errorf("update-rates output = %q, want prefix %q", out, want)
	}

	content, err := readFile(app.Config.MetricsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(content, `valuta_update_runs_total{outcome="partial"} 1`) {
		t.Errorf("metrics file:\n%s", content)
	}
}

func TestStaleRatesWarning(t *testing.T) {
	app := newTestApp(t)
	app.mustRun(t, "update-rates")
	app.Converter.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	status, out, errOut := app.run(t, "", "get-rate", "-src", "EUR", "-dst", "RUB")
	if status != subcommands.ExitSuccess || out != "EUR -> RUB = 100.00000000\n" {
		t.Errorf("get-rate = %v, %q", status, out)
	}
	if !strings.Contains(errOut, "expired, run `vth update-rates`") {
		t.Errorf("expected a freshness warning, got %q", errOut)
	}

	status, _, errOut = app.run(t, "", "get-rate", "-src", "EUR", "-dst", "GBP")
	if status != subcommands.ExitFailure || !strings.Contains(errOut, "unknown currency GBP") {
		t.Errorf("get-rate GBP = %v, %q", status, errOut)
	}
}

func TestTopic(t *testing.T) {
	app := newTestApp(t)
	out := app.mustRun(t, "topic", "rates")
	if !strings.Contains(out, "update-rates") {
		t.Errorf("topic rates:\n%s", out)
	}
	if status, _, _ := app.run(t, "", "topic", "nope"); status != subcommands.ExitFailure {
		t.Errorf("unknown topic status = %v", status)
	}
}

func TestCompletion(t *testing.T) {
	c := Completion([]string{"USD", "EUR"})
	for _, name := range []string{"register", "buy", "sell", "get-rate", "update-rates", "show-rates", "topic"} {
		if _, ok := c.Sub[name]; !ok {
			t.Errorf("no completion for %s", name)
		}
	}
	if _, ok := c.Sub["sell"].Flags["yes"]; !ok {
		t.Errorf("sell completion misses -yes")
	}
	if got := c.Sub["buy"].Flags["currency"].Predict("E"); len(got) != 2 {
		t.Errorf("currency prediction = %v", got)
	}
}
