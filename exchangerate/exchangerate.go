// Package exchangerate fetches fiat currency rates from ExchangeRate-API v6.
package exchangerate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/valuta"
)

// Name identifies the source in error messages and metrics.
const Name = "ExchangeRate-API"

// DefaultURL is the public API root.
const DefaultURL = "https://v6.exchangerate-api.com"

// Client is a valuta.RateSource for fiat currencies. Without an APIKey it fetches
// nothing.
type Client struct {
	HTTP    *http.Client // carries the request timeout
	URL     string       // API root, DefaultURL when empty
	APIKey  string
	Base    string
	Symbols []string
	Logger  *slog.Logger
}

// Name implements valuta.RateSource.
func (c *Client) Name() string { return Name }

// FetchRates implements valuta.RateSource.
func (c *Client) FetchRates(ctx context.Context) (valuta.RateTable, error) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}
	rates := valuta.RateTable{}
	if c.APIKey == "" {
		log.Debug("no api key, source skipped", "source", Name)
		return rates, nil
	}
	base := valuta.NormalizeCode(c.Base)
	if base == "" {
		base = valuta.DefaultBase
	}

	root := c.URL
	if root == "" {
		root = DefaultURL
	}
	addr := fmt.Sprintf("%s/v6/%s/latest/%s", strings.TrimSuffix(root, "/"), url.PathEscape(c.APIKey), base)

	var doc any
	if err := valuta.GetJSON(ctx, c.HTTP, addr, &doc); err != nil {
		return nil, &valuta.APIRequestError{Source: Name, Cause: c.redact(explain(err))}
	}
	if m, ok := doc.(map[string]any); ok && m["result"] == "error" {
		return nil, &valuta.APIRequestError{Source: Name, Cause: fmt.Errorf("api error: %v", m["error-type"])}
	}
	conv, err := valuta.JSONPathObject("$.conversion_rates", doc)
	if err != nil {
		return nil, &valuta.APIRequestError{Source: Name, Cause: fmt.Errorf("malformed payload: %w", err)}
	}
	for _, s := range c.Symbols {
		s = valuta.NormalizeCode(s)
		if _, ok := conv[s]; !ok {
			log.Warn("currency not quoted, skipped", "source", Name, "symbol", s)
			continue
		}
		rate, err := valuta.JSONPathFloat(fmt.Sprintf("$.conversion_rates[%q]", s), doc)
		if err != nil || rate <= 0 {
			return nil, &valuta.APIRequestError{Source: Name, Cause: fmt.Errorf("malformed payload: bad rate for %s", s)}
		}
		rates[s] = rate
	}
	rates[base] = 1
	log.Info("fiat rates fetched", "source", Name, "rates", len(rates))
	return rates, nil
}

// redact hides the API key that transport errors quote in the request URL.
func (c *Client) redact(err error) error {
	if !strings.Contains(err.Error(), c.APIKey) && !strings.Contains(err.Error(), url.PathEscape(c.APIKey)) {
		return err
	}
	return &redactedError{err: err, secrets: []string{url.PathEscape(c.APIKey), c.APIKey}}
}

// redactedError prints err without its secrets and still unwraps to it.
type redactedError struct {
	err     error
	secrets []string
}

func (e *redactedError) Error() string {
	msg := e.err.Error()
	for _, s := range e.secrets {
		msg = strings.ReplaceAll(msg, s, "***")
	}
	return msg
}

func (e *redactedError) Unwrap() error { return e.err }

// explain turns the statuses the API documents into actionable messages.
func explain(err error) error {
	var status *valuta.StatusError
	if !errors.As(err, &status) {
		return err
	}
	switch status.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: check EXCHANGERATE_API_KEY: %w", status.Status, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: request quota reached: %w", status.Status, err)
	}
	return err
}
