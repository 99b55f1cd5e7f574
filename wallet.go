package valuta

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Wallet holds the balance of a single currency. The balance is never negative.
type Wallet struct {
	currency string
	balance  decimal.Decimal
}

// NewWallet returns an empty wallet for currency.
func NewWallet(currency string) (*Wallet, error) {
	currency = NormalizeCode(currency)
	if currency == "" {
		return nil, validationf("currency must not be empty")
	}
	return &Wallet{currency: currency}, nil
}

func (w *Wallet) Currency() string        { return w.currency }
func (w *Wallet) Amount() decimal.Decimal { return w.balance }
func (w *Wallet) Balance() float64        { return w.balance.InexactFloat64() }
func (w *Wallet) Money() Money            { return M(w.balance, w.currency) }

// String returns "CUR: balance" with the currency's display precision.
func (w *Wallet) String() string {
	return fmt.Sprintf("%s: %s", w.currency, w.Money())
}

// SetBalance replaces the balance; negative or non finite values are rejected.
func (w *Wallet) SetBalance(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return validationf("balance must be a finite number, got %v", v)
	}
	if v < 0 {
		return validationf("balance cannot be negative, got %v", v)
	}
	w.balance = decimal.NewFromFloat(v)
	return nil
}

// Deposit adds amount to the balance.
func (w *Wallet) Deposit(amount float64) error {
	amt, err := parseAmount(amount)
	if err != nil {
		return err
	}
	w.balance = w.balance.Add(amt)
	return nil
}

// Withdraw removes amount from the balance. It fails with an *InsufficientFundsError,
// leaving the balance unchanged, when amount exceeds the balance.
func (w *Wallet) Withdraw(amount float64) error {
	amt, err := parseAmount(amount)
	if err != nil {
		return err
	}
	if amt.GreaterThan(w.balance) {
		return &InsufficientFundsError{
			Currency:  w.currency,
			Available: w.Balance(),
			Requested: amount,
		}
	}
	w.balance = w.balance.Sub(amt)
	return nil
}

// parseAmount validates a deposit or withdraw amount.
func parseAmount(amount float64) (decimal.Decimal, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return decimal.Zero, validationf("amount must be a finite number, got %v", amount)
	}
	if amount <= 0 {
		return decimal.Zero, validationf("amount must be > 0, got %v", amount)
	}
	return decimal.NewFromFloat(amount), nil
}

// Equal reports whether both wallets hold the same currency and balance.
func (w *Wallet) Equal(o *Wallet) bool {
	if w == nil || o == nil {
		return w == o
	}
	return w.currency == o.currency && w.balance.Equal(o.balance)
}

type jsonWallet struct {
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

func (w *Wallet) MarshalJSON() ([]byte, error) {
	// balance is written as a JSON number, not as decimal's default quoted string.
	return json.Marshal(struct {
		Currency string      `json:"currency"`
		Balance  json.Number `json:"balance"`
	}{w.currency, json.Number(w.balance.String())})
}

func (w *Wallet) UnmarshalJSON(data []byte) error {
	var jw jsonWallet
	if err := json.Unmarshal(data, &jw); err != nil {
		return err
	}
	cur := NormalizeCode(jw.Currency)
	if cur == "" {
		return validationf("wallet without currency")
	}
	if jw.Balance.IsNegative() {
		return validationf("wallet %s has a negative balance %s", cur, jw.Balance)
	}
	w.currency = cur
	w.balance = jw.Balance
	return nil
}
