// Package portfolio books executions into positions and a shared account,
// matching offsetting executions into round-trips.
package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradebook/account"
	"github.com/rustyeddy/tradebook/broker"
	"github.com/rustyeddy/tradebook/currency"
	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/performance"
	"github.com/rustyeddy/tradebook/series"
)

// Side is the direction of a position.
type Side int

const (
	Long Side = iota
	Short
)

func (s Side) String() string {
	if s == Short {
		return "short"
	}
	return "long"
}

// Position is the exposure to one instrument. A position whose quantity
// is zero is flat; the next execution opens it afresh, and executions from
// earlier incarnations no longer take part in matching.
//
// All amounts are in the instrument currency.
type Position struct {
	instrument *market.Instrument
	account    *account.Account
	matching   performance.Matching
	log        zerolog.Logger

	executions []*broker.Execution
	amounts    series.Scalar
	perf       *performance.Performance

	bought, sold, soldShort float64

	quantitySigned float64
	quantity       float64
	side           Side

	cashFlow    float64
	entryAmount float64
	debt        float64
	margin      float64
	price       float64
}

// NewPosition returns a flat position in inst. Executions are booked to
// acct and matched with m.
func NewPosition(inst *market.Instrument, acct *account.Account, m performance.Matching, log zerolog.Logger) *Position {
	return &Position{
		instrument: inst,
		account:    acct,
		matching:   m,
		perf:       performance.New(),
		log:        log.With().Str("component", "position").Str("instrument", inst.Symbol).Logger(),
	}
}

// Execute books ex into the position and returns the round-trips it
// closed. The account is charged first; if that fails the position is
// left untouched.
func (p *Position) Execute(ex *broker.Execution) ([]performance.Roundtrip, error) {
	if ex == nil {
		return nil, fmt.Errorf("position %s: nil execution", p.instrument)
	}
	if !ex.Currency.Equal(p.instrument.Currency) {
		return nil, fmt.Errorf("position %s: execution in %s, instrument in %s",
			p.instrument, ex.Currency, p.instrument.Currency)
	}
	if err := p.account.Execute(ex); err != nil {
		return nil, fmt.Errorf("position %s: %w", p.instrument, err)
	}

	if p.quantity == 0 {
		p.open(ex)
		return nil, nil
	}

	before := p.quantitySigned
	rts := p.match(ex, before)
	p.updateQuantities(ex, before)
	p.updateMarginAndDebt(ex, before)

	p.executions = append(p.executions, ex)
	p.cashFlow += ex.CashFlow - ex.CommissionConverted
	for _, rt := range rts {
		p.perf.AddRoundtrip(rt)
	}
	p.revalue(ex.Time, ex.Price)

	ev := p.log.Debug().
		Str("side", ex.Side.String()).
		Float64("qty", ex.Quantity).
		Float64("price", ex.Price).
		Float64("position", p.quantitySigned).
		Int("roundtrips", len(rts)).
		Float64("realized_pnl", ex.RealizedPnL)
	switch {
	case p.quantity == 0:
		ev.Msg("position closed")
	case math.Signbit(before) != math.Signbit(p.quantitySigned):
		ev.Msg("position reversed")
	default:
		ev.Msg("position updated")
	}
	return rts, nil
}

// Revalue marks the open executions to price at t without trading. It is
// a no-op on a flat position.
func (p *Position) Revalue(t time.Time, price float64) {
	if p.quantity == 0 {
		return
	}
	p.revalue(t, price)
}

func (p *Position) open(ex *broker.Execution) {
	p.margin = ex.Margin
	p.debt = ex.Debt
	p.price = ex.Price
	p.entryAmount = ex.Amount

	for _, e := range p.executions {
		e.UnrealizedQuantity = 0
	}
	p.updateQuantities(ex, 0)
	p.executions = append(p.executions, ex)

	cf := ex.CashFlow - ex.CommissionConverted
	p.cashFlow = cf
	amt := ex.Price * p.instrument.Factor() * p.quantitySigned
	p.amounts.Add(ex.Time, amt)
	p.perf.AddPnL(ex.Time, amt, amt, amt, cf)
	p.perf.AddDrawdown(ex.Time, amt+cf)
	p.revalue(ex.Time, ex.Price)

	p.log.Debug().
		Str("side", p.side.String()).
		Float64("qty", p.quantity).
		Float64("price", ex.Price).
		Msg("position opened")
}

// match pairs ex against the open executions on the other side of the
// position, in matching order, until ex is used up.
func (p *Position) match(ex *broker.Execution, before float64) []performance.Roundtrip {
	sign := ex.QuantitySign
	if (before >= 0) == (sign >= 0) {
		ex.RealizedPnL = 0
		return nil
	}

	var (
		rts        []performance.Roundtrip
		left       = ex.Quantity
		commission float64
		amount     float64
	)
	visit := func(e *broker.Execution) {
		if e.UnrealizedQuantity <= 0 || e.QuantitySign == sign {
			return
		}
		qty := math.Min(left, e.UnrealizedQuantity)
		commission += qty * (ex.CommissionConvertedPerUnit + e.CommissionConvertedPerUnit)
		amount += -sign * qty * (ex.Price - e.Price)
		left -= qty
		rts = append(rts, performance.NewRoundtrip(p.instrument, e, ex, qty))
		e.Consume(qty)
		ex.Consume(qty)
	}

	n := len(p.executions)
	for i := 0; i < n && left > 0; i++ {
		if p.matching == performance.LIFO {
			visit(p.executions[n-1-i])
		} else {
			visit(p.executions[i])
		}
	}

	amount *= p.instrument.Factor()
	ex.PnL += amount
	ex.RealizedPnL = amount - commission
	return rts
}

func (p *Position) updateQuantities(ex *broker.Execution, before float64) {
	switch ex.Side {
	case broker.Buy, broker.BuyMinus:
		p.bought += ex.Quantity
	case broker.Sell, broker.SellPlus:
		p.sold += ex.Quantity
	case broker.SellShort, broker.SellShortExempt:
		p.soldShort += ex.Quantity
	}

	p.quantitySigned = before + ex.QuantitySign*ex.Quantity
	p.quantity = math.Abs(p.quantitySigned)
	p.side = Long
	if p.quantitySigned < 0 {
		p.side = Short
	}
}

// updateMarginAndDebt adjusts margin and debt for ex against the quantity
// held before it.
func (p *Position) updateMarginAndDebt(ex *broker.Execution, before float64) {
	if (before >= 0) == (ex.QuantitySign >= 0) {
		p.margin += ex.Margin
		p.debt += ex.Debt
		return
	}

	held := math.Abs(before)
	switch {
	case held > ex.Quantity:
		keep := 1 - ex.Quantity/held
		p.margin *= keep
		p.debt *= keep
	case held < ex.Quantity:
		excess := ex.Quantity - held
		p.margin = excess * p.instrument.InitialMargin
		p.debt = excess*ex.Price*p.instrument.Factor() - p.margin
	default:
		p.margin = 0
		p.debt = 0
	}
}

func (p *Position) revalue(t time.Time, price float64) {
	unrealized := 0.0
	for _, e := range p.executions {
		if !e.IsOpen() {
			continue
		}
		unrealized += (price - e.Price) * e.UnrealizedQuantity * e.QuantitySign
		e.Widen(price)
	}

	f := p.instrument.Factor()
	p.price = price
	amt := price * f * p.quantitySigned
	p.amounts.Add(t, amt)
	p.perf.AddPnL(t, p.entryAmount, amt, unrealized*f, p.cashFlow)
	p.perf.AddDrawdown(t, amt+p.cashFlow)
}

func (p *Position) Instrument() *market.Instrument { return p.instrument }
func (p *Position) Currency() currency.Currency    { return p.instrument.Currency }

// ExecutionHistory returns the executions booked so far, oldest first.
func (p *Position) ExecutionHistory() []*broker.Execution {
	out := make([]*broker.Execution, len(p.executions))
	copy(out, p.executions)
	return out
}

func (p *Position) Debt() float64   { return p.debt }
func (p *Position) Margin() float64 { return p.margin }

// Leverage is amount over margin, or 0 without margin.
func (p *Position) Leverage() float64 {
	if p.margin == 0 {
		return 0
	}
	return p.amounts.CurrentValue() / p.margin
}

func (p *Position) Price() float64             { return p.price }
func (p *Position) QuantityBought() float64    { return p.bought }
func (p *Position) QuantitySold() float64      { return p.sold }
func (p *Position) QuantitySoldShort() float64 { return p.soldShort }
func (p *Position) Side() Side                 { return p.side }
func (p *Position) Quantity() float64          { return p.quantity }
func (p *Position) QuantitySigned() float64    { return p.quantitySigned }

// CashFlow is the sum of execution cash flows net of commissions.
func (p *Position) CashFlow() float64 { return p.cashFlow }

// Amount is the factored price times the signed quantity.
func (p *Position) Amount() float64 { return p.amounts.CurrentValue() }

func (p *Position) AmountHistory() []series.Point { return p.amounts.History() }

func (p *Position) Performance() *performance.Performance { return p.perf }
