package currency

import (
	"fmt"
	"sort"
)

// Converter converts amounts from a base currency to a term currency.
// X units of base are worth X*rate units of term.
type Converter interface {
	Convert(amount float64, base, term Currency) (converted, rate float64, err error)
	ExchangeRate(base, term Currency) (float64, error)
	KnownBaseCurrencies(term Currency) []Currency
	KnownTermCurrencies(base Currency) []Currency
}

// UpdatableConverter keeps a table of direct rates that a driver updates
// as quotes arrive. Rates are not inverted or chained.
type UpdatableConverter struct {
	rates map[string]map[string]float64
	known map[string]Currency
}

func NewUpdatableConverter() *UpdatableConverter {
	return &UpdatableConverter{
		rates: make(map[string]map[string]float64),
		known: make(map[string]Currency),
	}
}

// Update sets the base→term rate. Same-currency updates are ignored.
func (u *UpdatableConverter) Update(base, term Currency, rate float64) {
	if base.Equal(term) {
		return
	}
	m, ok := u.rates[base.Symbol]
	if !ok {
		m = make(map[string]float64)
		u.rates[base.Symbol] = m
	}
	m[term.Symbol] = rate
	u.known[base.Symbol] = base
	u.known[term.Symbol] = term
}

func (u *UpdatableConverter) Convert(amount float64, base, term Currency) (float64, float64, error) {
	rate, err := u.ExchangeRate(base, term)
	if err != nil {
		return 0, 0, err
	}
	return amount * rate, rate, nil
}

func (u *UpdatableConverter) ExchangeRate(base, term Currency) (float64, error) {
	if base.Equal(term) {
		return 1, nil
	}
	rate := u.rates[base.Symbol][term.Symbol]
	if rate == 0 {
		return 0, fmt.Errorf("exchange %s→%s: %w", base, term, ErrRateNotFound)
	}
	return rate, nil
}

// KnownBaseCurrencies returns the currencies with a known rate into term.
func (u *UpdatableConverter) KnownBaseCurrencies(term Currency) []Currency {
	var out []Currency
	for b, m := range u.rates {
		if _, ok := m[term.Symbol]; ok {
			out = append(out, u.known[b])
		}
	}
	sortBySymbol(out)
	return out
}

// KnownTermCurrencies returns the currencies base has a known rate into.
func (u *UpdatableConverter) KnownTermCurrencies(base Currency) []Currency {
	var out []Currency
	for t := range u.rates[base.Symbol] {
		out = append(out, u.known[t])
	}
	sortBySymbol(out)
	return out
}

func sortBySymbol(cs []Currency) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Symbol < cs[j].Symbol })
}
