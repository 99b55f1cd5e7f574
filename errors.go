package valuta

import (
	"errors"
	"fmt"
)

// ErrValidation is returned for bad or empty input the caller can fix.
var ErrValidation = errors.New("validation error")

// ErrAuth is returned for unknown users and bad credentials.
var ErrAuth = errors.New("authentication error")

// ErrNotFound is returned when a persisted resource has never been written.
var ErrNotFound = errors.New("not found")

// InsufficientFundsError is returned when a withdrawal exceeds the wallet balance.
type InsufficientFundsError struct {
	Currency  string
	Available float64
	Requested float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %.8g %s, requested %.8g %s", e.Available, e.Currency, e.Requested, e.Currency)
}

// CurrencyNotFoundError is returned when the rate table has no entry for Code.
type CurrencyNotFoundError struct {
	Code string
}

func (e *CurrencyNotFoundError) Error() string {
	return fmt.Sprintf("unknown currency %s: run update-rates to refresh the rate table", e.Code)
}

// APIRequestError reports a failed call to one rate source: transport, HTTP status
// or payload. It is collected by the Aggregator and never aborts an update.
type APIRequestError struct {
	Source string
	Cause  error
}

func (e *APIRequestError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Source, e.Cause)
}

func (e *APIRequestError) Unwrap() error { return e.Cause }

// validationf formats a message wrapping ErrValidation.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
