// Package market holds instrument reference data used to value positions.
package market

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rustyeddy/tradebook/currency"
)

var (
	ErrDuplicateInstrument = errors.New("duplicate instrument")
	ErrUnknownInstrument   = errors.New("unknown instrument")
)

type Type string

const (
	Stock  Type = "stock"
	Index  Type = "index"
	ETF    Type = "etf"
	ETC    Type = "etc"
	Forex  Type = "forex"
	Crypto Type = "crypto"
)

// Instrument describes a tradable instrument.
//
// Nominal value = quantity * price * PriceFactor.
type Instrument struct {
	Symbol             string
	Name               string
	Type               Type
	Currency           currency.Currency // price currency
	PriceFactor        float64
	InitialMargin      float64 // per unit of quantity, 0 for fully financed
	PriceDecimalPlaces int
	MinIncrement       float64
}

// Factor returns the price factor, treating an unset factor as 1.
func (i *Instrument) Factor() float64 {
	if i.PriceFactor == 0 {
		return 1
	}
	return i.PriceFactor
}

func (i *Instrument) String() string { return i.Symbol }

// Registry holds instruments by symbol.
type Registry struct {
	bySymbol map[string]*Instrument
}

func NewRegistry() *Registry {
	return &Registry{bySymbol: make(map[string]*Instrument)}
}

func (r *Registry) Add(inst *Instrument) error {
	if inst == nil || inst.Symbol == "" {
		return fmt.Errorf("add instrument: empty symbol")
	}
	if _, ok := r.bySymbol[inst.Symbol]; ok {
		return fmt.Errorf("add instrument %s: %w", inst.Symbol, ErrDuplicateInstrument)
	}
	r.bySymbol[inst.Symbol] = inst
	return nil
}

func (r *Registry) Lookup(symbol string) (*Instrument, error) {
	inst, ok := r.bySymbol[symbol]
	if !ok {
		return nil, fmt.Errorf("instrument %s: %w", symbol, ErrUnknownInstrument)
	}
	return inst, nil
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
