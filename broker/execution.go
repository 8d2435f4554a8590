// Package broker turns broker fill reports into executions the portfolio
// books.
package broker

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/tradebook/currency"
	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/pkg/id"
)

// Fill is a fill or partial fill as reported by the broker.
type Fill struct {
	ID         string
	Time       time.Time
	Side       Side
	Quantity   float64
	Price      float64
	Commission float64
	// CommissionCurrency defaults to the instrument currency.
	CommissionCurrency *currency.Currency
}

// Execution is the booked form of a fill. All amounts are in the
// instrument currency. Everything except the matching state (PnL,
// RealizedPnL and the unrealized fields) is fixed at construction.
type Execution struct {
	ID           string
	Time         time.Time
	Side         Side
	Quantity     float64 // unsigned
	QuantitySign float64
	Price        float64
	Currency     currency.Currency

	Commission                 float64 // in CommissionCurrency
	CommissionCurrency         currency.Currency
	CommissionRate             float64
	CommissionConverted        float64
	CommissionConvertedPerUnit float64

	Amount   float64 // factored price * quantity
	Margin   float64
	Debt     float64
	CashFlow float64

	PnL                 float64
	RealizedPnL         float64
	UnrealizedQuantity  float64
	UnrealizedPriceHigh float64
	UnrealizedPriceLow  float64
}

// NewExecution books fill f against inst. The commission is converted into
// the instrument currency with conv when the currencies differ.
func NewExecution(f Fill, inst *market.Instrument, conv currency.Converter) (*Execution, error) {
	if inst == nil {
		return nil, fmt.Errorf("new execution: nil instrument")
	}
	qty := math.Abs(f.Quantity)
	sign := f.Side.Sign()
	amount := f.Price * inst.Factor() * qty
	margin := qty * inst.InitialMargin
	debt := 0.0
	if amount != 0 {
		debt = amount - margin
	}

	commCcy := inst.Currency
	if f.CommissionCurrency != nil {
		commCcy = *f.CommissionCurrency
	}
	commConv, rate := f.Commission, 1.0
	if !commCcy.Equal(inst.Currency) {
		if conv == nil {
			return nil, fmt.Errorf("new execution %s: commission in %s needs a converter", inst, commCcy)
		}
		var err error
		commConv, rate, err = conv.Convert(f.Commission, commCcy, inst.Currency)
		if err != nil {
			return nil, fmt.Errorf("new execution %s: commission: %w", inst, err)
		}
	}
	perUnit := 0.0
	if qty != 0 {
		perUnit = commConv / qty
	}

	xid := f.ID
	if xid == "" {
		xid = id.NewAt(f.Time)
	}

	return &Execution{
		ID:                         xid,
		Time:                       f.Time,
		Side:                       f.Side,
		Quantity:                   qty,
		QuantitySign:               sign,
		Price:                      f.Price,
		Currency:                   inst.Currency,
		Commission:                 f.Commission,
		CommissionCurrency:         commCcy,
		CommissionRate:             rate,
		CommissionConverted:        commConv,
		CommissionConvertedPerUnit: perUnit,
		Amount:                     amount,
		Margin:                     margin,
		Debt:                       debt,
		CashFlow:                   -sign * amount,
		PnL:                        -commConv,
		RealizedPnL:                0,
		UnrealizedQuantity:         qty,
		UnrealizedPriceHigh:        f.Price,
		UnrealizedPriceLow:         f.Price,
	}, nil
}

// Consume marks qty of the execution as matched. The unrealized quantity
// never drops below zero.
func (e *Execution) Consume(qty float64) {
	e.UnrealizedQuantity = math.Max(e.UnrealizedQuantity-qty, 0)
}

// Widen stretches the unrealized price bookmarks to include price.
func (e *Execution) Widen(price float64) {
	e.UnrealizedPriceHigh = math.Max(e.UnrealizedPriceHigh, price)
	e.UnrealizedPriceLow = math.Min(e.UnrealizedPriceLow, price)
}

// IsOpen reports whether part of the execution is still unmatched.
func (e *Execution) IsOpen() bool { return e.UnrealizedQuantity > 0 }

func (e *Execution) String() string {
	return fmt.Sprintf("%s %g @ %g", e.Side, e.Quantity, e.Price)
}
