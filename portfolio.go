package valuta

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DefaultBase is the currency used for valuations when none is given.
const DefaultBase = "USD"

// RateFunc returns the number of dst units worth one src unit.
type RateFunc func(src, dst string) (float64, error)

// Portfolio is a user's set of wallets, at most one per currency.
type Portfolio struct {
	username string
	wallets  map[string]*Wallet
}

// NewPortfolio returns an empty portfolio owned by username.
func NewPortfolio(username string) *Portfolio {
	return &Portfolio{
		username: strings.TrimSpace(username),
		wallets:  make(map[string]*Wallet),
	}
}

func (p *Portfolio) Username() string { return p.username }

// Wallet returns the wallet for currency, creating an empty one on first access.
// Repeated calls return the same wallet.
func (p *Portfolio) Wallet(currency string) (*Wallet, error) {
	currency = NormalizeCode(currency)
	if currency == "" {
		return nil, validationf("currency must not be empty")
	}
	if w, ok := p.wallets[currency]; ok {
		return w, nil
	}
	w := &Wallet{currency: currency}
	p.wallets[currency] = w
	return w, nil
}

// Lookup returns the wallet for currency without creating it.
func (p *Portfolio) Lookup(currency string) (*Wallet, bool) {
	w, ok := p.wallets[NormalizeCode(currency)]
	return w, ok
}

// Currencies returns the portfolio's currencies in alphabetical order.
func (p *Portfolio) Currencies() []string {
	return slices.Sorted(maps.Keys(p.wallets))
}

// Wallets returns the wallets sorted by currency.
func (p *Portfolio) Wallets() []*Wallet {
	ws := make([]*Wallet, 0, len(p.wallets))
	for _, cur := range p.Currencies() {
		ws = append(ws, p.wallets[cur])
	}
	return ws
}

// TotalValue sums every wallet balance converted into base with rate.
func (p *Portfolio) TotalValue(base string, rate RateFunc) (float64, error) {
	if rate == nil {
		return 0, validationf("a rate provider is required")
	}
	base = NormalizeCode(base)
	if base == "" {
		base = DefaultBase
	}
	total := 0.0
	for _, w := range p.Wallets() {
		r, err := rate(w.currency, base)
		if err != nil {
			return 0, fmt.Errorf("cannot value %s wallet in %s: %w", w.currency, base, err)
		}
		total += w.Balance() * r
	}
	return total, nil
}

// Equal reports whether both portfolios have the same owner, wallets and balances.
func (p *Portfolio) Equal(o *Portfolio) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.username == o.username && maps.EqualFunc(p.wallets, o.wallets, (*Wallet).Equal)
}

type jsonPortfolio struct {
	Username string    `json:"username"`
	Wallets  []*Wallet `json:"wallets"`
}

func (p *Portfolio) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonPortfolio{Username: p.username, Wallets: p.Wallets()})
}

func (p *Portfolio) UnmarshalJSON(data []byte) error {
	var jp jsonPortfolio
	if err := json.Unmarshal(data, &jp); err != nil {
		return err
	}
	q := NewPortfolio(jp.Username)
	for _, w := range jp.Wallets {
		if w == nil {
			continue
		}
		if _, dup := q.wallets[w.currency]; dup {
			return fmt.Errorf("%w: portfolio %q has two %s wallets", ErrValidation, q.username, w.currency)
		}
		q.wallets[w.currency] = w
	}
	*p = *q
	return nil
}

// PortfolioRepository stores every portfolio in a single portfolios.json document.
type PortfolioRepository struct {
	file *JSONFile
}

// NewPortfolioRepository returns a repository backed by the file at path.
func NewPortfolioRepository(path string, cache *FileCache) *PortfolioRepository {
	return &PortfolioRepository{file: &JSONFile{Path: path, Cache: cache}}
}

func (r *PortfolioRepository) all() ([]*Portfolio, error) {
	var list []*Portfolio
	if _, err := r.file.Read(&list); err != nil {
		return nil, err
	}
	return list, nil
}

// Load returns the user's portfolio, or a new empty one if the user has none yet.
// A new portfolio is only written by Save.
func (r *PortfolioRepository) Load(username string) (*Portfolio, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, validationf("username must not be empty")
	}
	list, err := r.all()
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		if p.username == username {
			return p, nil
		}
	}
	return NewPortfolio(username), nil
}

// Save replaces the stored portfolio of the same user, or appends it.
func (r *PortfolioRepository) Save(p *Portfolio) error {
	list, err := r.all()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(list, func(q *Portfolio) bool { return q.username == p.username })
	if i >= 0 {
		list[i] = p
	} else {
		list = append(list, p)
	}
	return r.file.WriteAtomic(list)
}
