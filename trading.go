package valuta

import (
	"fmt"
	"log/slog"
	"strings"
)

// Side is the direction of a trade.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Trade is the outcome of a buy or a sell.
type Trade struct {
	Username string
	Side     Side
	Currency string
	Amount   float64
	// Balance is the wallet balance after the trade.
	Balance float64
	// Rate is the currency to USD rate used for the estimate, zero when unknown.
	Rate         float64
	EstimatedUSD float64
}

// TradingEngine applies trades to users' portfolios.
type TradingEngine struct {
	Portfolios *PortfolioRepository
	Converter  *Converter
	Logger     *slog.Logger // defaults to slog.Default()
}

func (e *TradingEngine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Buy deposits amount into the user's currency wallet.
func (e *TradingEngine) Buy(username, currency string, amount float64) (*Trade, error) {
	return e.trade(Buy, username, currency, amount)
}

// Sell withdraws amount from the user's currency wallet.
func (e *TradingEngine) Sell(username, currency string, amount float64) (*Trade, error) {
	return e.trade(Sell, username, currency, amount)
}

// trade runs load, mutate and save on the whole portfolio. The USD estimate is
// computed after the save: if it fails, the trade is returned along with the error.
func (e *TradingEngine) trade(side Side, username, currency string, amount float64) (*Trade, error) {
	username = strings.TrimSpace(username)
	currency = NormalizeCode(currency)
	if username == "" {
		return nil, validationf("no user is logged in")
	}
	if currency == "" {
		return nil, validationf("currency must not be empty")
	}
	if _, err := parseAmount(amount); err != nil {
		return nil, err
	}

	p, err := e.Portfolios.Load(username)
	if err != nil {
		return nil, err
	}
	// a sell on a missing wallet fails on an empty balance, nothing is saved then.
	w, err := p.Wallet(currency)
	if err != nil {
		return nil, err
	}
	switch side {
	case Buy:
		err = w.Deposit(amount)
	case Sell:
		err = w.Withdraw(amount)
	default:
		return nil, fmt.Errorf("unknown trade side %q", side)
	}
	if err != nil {
		return nil, err
	}
	if err := e.Portfolios.Save(p); err != nil {
		return nil, fmt.Errorf("cannot save portfolio of %s: %w", username, err)
	}

	t := &Trade{
		Username: username,
		Side:     side,
		Currency: currency,
		Amount:   amount,
		Balance:  w.Balance(),
	}
	e.logger().Info("trade", "side", side, "user", username, "currency", currency, "amount", amount, "balance", t.Balance)

	rate, err := e.Converter.Rate(currency, DefaultBase)
	if err != nil {
		return t, fmt.Errorf("%s of %v %s saved, but cannot estimate its USD value: %w", side, amount, currency, err)
	}
	t.Rate = rate
	t.EstimatedUSD = amount * rate
	return t, nil
}

// Valuation returns the user's portfolio and its total value in base.
func (e *TradingEngine) Valuation(username, base string) (*Portfolio, float64, error) {
	p, err := e.Portfolios.Load(username)
	if err != nil {
		return nil, 0, err
	}
	total, err := p.TotalValue(base, e.Converter.Rate)
	if err != nil {
		return p, 0, err
	}
	return p, total, nil
}
