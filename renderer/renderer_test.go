package renderer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/valuta"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// tables parses markdown and returns the cell texts of every table row, header included.
func tables(t *testing.T, md string) [][]string {
	t.Helper()
	source := []byte(md)
	parser := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()
	root := parser.Parse(text.NewReader(source))

	var rows [][]string
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *east.TableHeader, *east.TableRow:
			var cells []string
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, cellText(c, source))
			}
			rows = append(rows, cells)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func cellText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
			continue
		}
		b.WriteString(cellText(c, source))
	}
	return b.String()
}

func testPortfolio(t *testing.T) *valuta.Portfolio {
	t.Helper()
	p := valuta.NewPortfolio("alice")
	for cur, amount := range map[string]float64{"USD": 100, "EUR": 90, "BTC": 0.001} {
		w, err := p.Wallet(cur)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Deposit(amount); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func TestRenderValuation(t *testing.T) {
	table := valuta.RateTable{"USD": 1, "EUR": 0.9, "BTC": 0.00002}
	rate := func(src, dst string) (float64, error) { return table[dst] / table[src], nil }

	v, err := NewValuation(testPortfolio(t), "usd", 250, rate)
	if err != nil {
		t.Fatal(err)
	}
	md := RenderValuation(v)

	if !strings.HasPrefix(md, "# Portfolio of alice\n") {
		t.Errorf("unexpected title:\n%s", md)
	}
	if !strings.Contains(md, "**Total: $250.00**") {
		t.Errorf("total missing:\n%s", md)
	}
	rows := tables(t, md)
	want := [][]string{
		{"Currency", "Balance", "Rate to USD", "Value in USD"},
		{"BTC", "0.00100000 ₿", "50000", "$50.00"},
		{"EUR", valuta.M(90, "EUR").String(), "1.1111111", "$100.00"},
		{"USD", "$100.00", "1", "$100.00"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d table rows, want %d:\n%s", len(rows), len(want), md)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %q, want %q", i, rows[i], want[i])
		}
	}
}

func TestRenderValuation_Empty(t *testing.T) {
	v, err := NewValuation(valuta.NewPortfolio("bob"), "", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	md := RenderValuation(v)
	if !strings.Contains(md, "No wallets yet") || len(tables(t, md)) != 0 {
		t.Errorf("unexpected empty valuation:\n%s", md)
	}
}

func TestNewValuation_Total(t *testing.T) {
	calls := 0
	rate := func(src, dst string) (float64, error) { calls++; return 1, nil }
	v, err := NewValuation(testPortfolio(t), "USD", 123.45, rate)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Total.String(); got != "$123.45" {
		t.Errorf("Total = %s, want the given $123.45", got)
	}
	if calls != len(v.Rows) {
		t.Errorf("rate called %d times for %d rows", calls, len(v.Rows))
	}
}

func TestNewValuation_RateError(t *testing.T) {
	rate := func(src, dst string) (float64, error) { return 0, &valuta.CurrencyNotFoundError{Code: src} }
	_, err := NewValuation(testPortfolio(t), "USD", 0, rate)
	var notFound *valuta.CurrencyNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("NewValuation() error = %v, want CurrencyNotFoundError", err)
	}
}

func TestRenderRates(t *testing.T) {
	doc := &valuta.RatesDocument{
		Base:       "USD",
		UpdatedAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		TTLSeconds: 300,
		Rates:      valuta.RateTable{"USD": 1, "EUR": 0.8, "BTC": 0.00002},
		Errors:     []string{"CoinGecko request failed: http status 503"},
	}
	md := RenderRates(NewRates(doc, true, 4))

	for _, want := range []string{
		"# Rates per 1 USD",
		"Updated 2025-06-01 10:00:00 UTC, **expired**",
		"(TTL 5m0s)",
		"History: 4 updates kept.",
		"## Failed sources",
		"* CoinGecko request failed: http status 503",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("rates report does not contain %q:\n%s", want, md)
		}
	}
	rows := tables(t, md)
	want := [][]string{
		{"Currency", "Rate", "1 unit in USD"},
		{"BTC", "0.00002", "50000"},
		{"EUR", "0.8", "1.25"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d:\n%s", len(rows), len(want), md)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %q, want %q", i, rows[i], want[i])
		}
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1"},
		{0.9, "0.9"},
		{1 / 0.9, "1.1111111"},
		{0.00002, "0.00002"},
		{50000, "50000"},
		{123456789, "123456789"},
	}
	for _, tt := range tests {
		if got := formatRate(tt.in); got != tt.want {
			t.Errorf("formatRate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
