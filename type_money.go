package valuta

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount in a currency, used to display wallet balances and valuations.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns value in currency.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

func newDecimal[T float64 | int | int64 | decimal.Decimal](v T) decimal.Decimal {
	switch v := any(v).(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case decimal.Decimal:
		return v
	}
	return decimal.Zero
}

// go-money knows ISO 4217 currencies only, crypto assets are registered with the
// number of digits worth showing.
func init() {
	money.AddCurrency("BTC", "₿", "1 $", ".", ",", 8)
	money.AddCurrency("ETH", "Ξ", "1 $", ".", ",", 8)
	money.AddCurrency("USDT", "₮", "1 $", ".", ",", 2)
	money.AddCurrency("SOL", "◎", "1 $", ".", ",", 6)
	money.AddCurrency("BNB", "BNB", "1 $", ".", ",", 6)
	money.AddCurrency("XRP", "XRP", "1 $", ".", ",", 6)
	money.AddCurrency("ADA", "₳", "1 $", ".", ",", 6)
	money.AddCurrency("DOGE", "Ð", "1 $", ".", ",", 4)
	money.AddCurrency("TON", "TON", "1 $", ".", ",", 6)
	money.AddCurrency("LTC", "Ł", "1 $", ".", ",", 8)
}

// String returns the amount formatted for its currency, e.g. "$1,234.50".
func (m Money) String() string {
	cur := money.GetCurrency(m.cur)
	if cur == nil {
		// unknown to go-money, keep every digit.
		return m.value.String() + " " + m.cur
	}
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string         { return m.cur }
func (m Money) Value() decimal.Decimal   { return m.value }
func (m Money) Float() float64           { return m.value.InexactFloat64() }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) Equal(n Money) bool       { return m.cur == n.cur && m.value.Equal(n.value) }
func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }

// Convert returns m expressed in currency to, given the number of 'to' units per
// one unit of m's currency.
func (m Money) Convert(rate float64, to string) Money {
	return Money{value: m.value.Mul(decimal.NewFromFloat(rate)), cur: to}
}
