// Package currency defines currencies, the registry they live in, and the
// converters used to express amounts in an account's home currency.
package currency

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateCurrency = errors.New("duplicate currency")
	ErrUnknownCurrency   = errors.New("unknown currency")
	ErrRateNotFound      = errors.New("rate not found")
)

// Currency is an immutable currency description.
type Currency struct {
	Symbol    string // ISO 4217 code, unique within a registry
	Precision int    // decimal places the currency is traded to
	Display   string // €, $, ¥ ...
	Name      string
}

// Equal compares symbol, precision and display. Name is descriptive only.
func (c Currency) Equal(o Currency) bool {
	return c.Symbol == o.Symbol && c.Precision == o.Precision && c.Display == o.Display
}

func (c Currency) String() string { return c.Symbol }

// Round rounds amount to the currency precision.
func (c Currency) Round(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(int32(c.Precision)).Float64()
	return f
}

// Format renders amount with the currency precision and display glyph.
func (c Currency) Format(amount float64) string {
	s := decimal.NewFromFloat(amount).StringFixed(int32(c.Precision))
	if c.Display == "" {
		return s + " " + c.Symbol
	}
	return c.Display + s
}

// Registry holds the currencies known to a process. It is built once at
// startup and handed to whatever needs to resolve symbols.
type Registry struct {
	bySymbol map[string]Currency
}

func NewRegistry() *Registry {
	return &Registry{bySymbol: make(map[string]Currency)}
}

// Register creates a currency and adds it to the registry.
func (r *Registry) Register(symbol string, precision int, display, name string) (Currency, error) {
	if symbol == "" {
		return Currency{}, fmt.Errorf("register currency: empty symbol")
	}
	if _, ok := r.bySymbol[symbol]; ok {
		return Currency{}, fmt.Errorf("register currency %s: %w", symbol, ErrDuplicateCurrency)
	}
	c := Currency{Symbol: symbol, Precision: precision, Display: display, Name: name}
	r.bySymbol[symbol] = c
	return c, nil
}

// Lookup returns the currency registered under symbol.
func (r *Registry) Lookup(symbol string) (Currency, error) {
	c, ok := r.bySymbol[symbol]
	if !ok {
		return Currency{}, fmt.Errorf("currency %s: %w", symbol, ErrUnknownCurrency)
	}
	return c, nil
}

// MustLookup is Lookup for symbols known to be registered.
func (r *Registry) MustLookup(symbol string) Currency {
	c, err := r.Lookup(symbol)
	if err != nil {
		panic(err)
	}
	return c
}

// Symbols returns the registered symbols in sorted order.
func (r *Registry) Symbols() []string {
	out := make([]string, 0, len(r.bySymbol))
	for s := range r.bySymbol {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

var standard = []Currency{
	{"XXX", 2, "", "No currency"},

	{"XAG", 5, "", "Silver (one troy ounce)"},
	{"XAU", 5, "", "Gold (one troy ounce)"},
	{"XPD", 5, "", "Palladium (one troy ounce)"},
	{"XPT", 5, "", "Platinum (one troy ounce)"},

	{"BTC", 8, "₿", "Bitcoin"},
	{"BCH", 8, "", "Bitcoin Cash"},
	{"ETH", 18, "Ξ", "Ethereum"},
	{"ETC", 18, "", "Ethereum Classic"},
	{"USDT", 8, "", "Tether"},
	{"XRP", 6, "", "Ripple"},
	{"NEO", 8, "", "NEO"},
	{"LTC", 8, "Ł", "Litecoin"},
	{"VTC", 8, "", "Vertcoin"},
	{"XLM", 8, "", "Stellar Lumens"},
	{"XMR", 12, "", "Monero"},
	{"XTZ", 6, "ꜩ", "Tez"},
	{"DSH", 8, "", "Dash"},
	{"ZEC", 8, "", "Zcash"},
	{"EOS", 4, "", "EOS.IO"},
	{"LINK", 8, "", "Chainlink"},
	{"ATOM", 8, "", "Cosmos"},
	{"DAI", 8, "", "Dai"},

	{"EUR", 2, "€", "Euro"},
	{"EUX", 0, "", "Euro cent"},
	{"USD", 2, "$", "US Dollar"},
	{"USX", 0, "¢", "US cent"},
	{"GBP", 2, "£", "Pound sterling"},
	{"GBX", 0, "p", "Penny sterling"},
	{"ZAR", 2, "R", "South African rand"},
	{"ZAC", 0, "c", "South African cent"},
	{"CHF", 2, "Fr", "Swiss franc"},
	{"CAD", 2, "C$", "Canadian dollar"},
	{"AUD", 2, "A$", "Australian dollar"},
	{"NZD", 2, "$", "New Zealand dollar"},
	{"DKK", 2, "kr", "Danish krone"},
	{"SEK", 2, "kr", "Swedish krona"},
	{"NOK", 2, "kr", "Norwegian krone"},
	{"ISK", 0, "Íkr", "Icelandic krona"},
	{"PLN", 2, "zł", "Polish zloty"},
	{"HUF", 2, "Ft", "Hungarian forint"},
	{"JPY", 0, "¥", "Japanese yen"},
	{"SGD", 2, "S$", "Singapore dollar"},
	{"HKD", 2, "HK$", "Hong Kong dollar"},
	{"KRW", 0, "₩", "South Korean won"},
	{"TWD", 2, "NT$", "Taiwan new dollar"},
	{"CNY", 2, "¥", "Chinese onshore yuan renminbi"},
	{"CNH", 2, "¥", "Chinese offshore yuan renminbi"},
	{"INR", 2, "₨", "Indian rupee"},
}

// NewStandardRegistry returns a registry preloaded with the ISO 4217 fiat
// currencies, precious metals and common cryptocurrencies.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	for _, c := range standard {
		if _, err := r.Register(c.Symbol, c.Precision, c.Display, c.Name); err != nil {
			panic(err)
		}
	}
	return r
}
