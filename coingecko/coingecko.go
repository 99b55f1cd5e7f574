// Package coingecko fetches crypto currency rates from the CoinGecko simple price API.
package coingecko

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/etnz/valuta"
)

// Name identifies the source in error messages and metrics.
const Name = "CoinGecko"

// DefaultURL is the public API root.
const DefaultURL = "https://api.coingecko.com/api/v3"

// ids maps supported crypto symbols to CoinGecko coin ids.
var ids = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"USDT": "tether",
	"SOL":  "solana",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"TON":  "the-open-network",
	"LTC":  "litecoin",
}

// CoinID returns the CoinGecko id of symbol.
func CoinID(symbol string) (string, bool) {
	id, ok := ids[valuta.NormalizeCode(symbol)]
	return id, ok
}

// Client is a valuta.RateSource for crypto currencies.
type Client struct {
	HTTP    *http.Client // carries the request timeout
	URL     string       // API root, DefaultURL when empty
	Base    string
	Symbols []string
	Logger  *slog.Logger
}

// Name implements valuta.RateSource.
func (c *Client) Name() string { return Name }

// FetchRates implements valuta.RateSource. CoinGecko quotes the price of one coin
// in base; the table holds its inverse, the number of coins per unit of base.
func (c *Client) FetchRates(ctx context.Context) (valuta.RateTable, error) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}
	vs := strings.ToLower(valuta.NormalizeCode(c.Base))
	if vs == "" {
		vs = strings.ToLower(valuta.DefaultBase)
	}

	symbols := make(map[string]string) // coin id -> symbol
	var coins []string
	for _, s := range c.Symbols {
		s = valuta.NormalizeCode(s)
		id, ok := ids[s]
		if !ok {
			log.Warn("unsupported crypto symbol, skipped", "source", Name, "symbol", s)
			continue
		}
		if _, dup := symbols[id]; !dup {
			symbols[id] = s
			coins = append(coins, id)
		}
	}
	rates := valuta.RateTable{}
	if len(coins) == 0 {
		return rates, nil
	}

	root := c.URL
	if root == "" {
		root = DefaultURL
	}
	q := url.Values{}
	q.Set("ids", strings.Join(coins, ","))
	q.Set("vs_currencies", vs)
	addr := strings.TrimSuffix(root, "/") + "/simple/price?" + q.Encode()

	var doc any
	if err := valuta.GetJSON(ctx, c.HTTP, addr, &doc); err != nil {
		return nil, &valuta.APIRequestError{Source: Name, Cause: err}
	}
	for _, id := range coins {
		path := fmt.Sprintf("$[%q][%q]", id, vs)
		price, err := valuta.JSONPathFloat(path, doc)
		if err != nil {
			return nil, &valuta.APIRequestError{Source: Name, Cause: fmt.Errorf("malformed payload: %w", err)}
		}
		if price <= 0 {
			return nil, &valuta.APIRequestError{Source: Name, Cause: errors.New("malformed payload: non positive price for " + id)}
		}
		rates[symbols[id]] = 1 / price
	}
	log.Info("crypto rates fetched", "source", Name, "rates", len(rates))
	return rates, nil
}

// Symbols returns the supported crypto symbols in alphabetical order.
func Symbols() []string {
	return slices.Sorted(maps.Keys(ids))
}
