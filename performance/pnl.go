// Package performance tracks profit and loss, drawdowns and round-trip
// statistics of a position or a whole portfolio.
package performance

import (
	"time"

	"github.com/rustyeddy/tradebook/series"
)

// PnL holds the profit-and-loss amount, the unrealized amount and the
// percentage of the initial amount.
//
// Unlike series.Scalar, samples earlier than the last one are dropped
// rather than inserted; a sample at the same time replaces the last one.
type PnL struct {
	amount     series.Scalar
	unrealized series.Scalar
	percentage series.Scalar
}

// Amount is the current PnL: position value plus cash flow.
func (p *PnL) Amount() float64               { return p.amount.CurrentValue() }
func (p *PnL) AmountHistory() []series.Point { return p.amount.History() }

// UnrealizedAmount is the marked-to-market gain or loss of the open lots.
func (p *PnL) UnrealizedAmount() float64               { return p.unrealized.CurrentValue() }
func (p *PnL) UnrealizedAmountHistory() []series.Point { return p.unrealized.History() }

// Percentage is the PnL amount relative to the initial amount, in percent.
func (p *PnL) Percentage() float64               { return p.percentage.CurrentValue() }
func (p *PnL) PercentageHistory() []series.Point { return p.percentage.History() }

// Add records a PnL sample. It reports whether the sample was kept.
func (p *PnL) Add(t time.Time, initial, amount, unrealized, cashFlow float64) bool {
	if c, ok := p.amount.Current(); ok && t.Before(c.Time) {
		return false
	}

	pct := 0.0
	if initial != 0 {
		pct = (amount + cashFlow) / initial * 100
	}
	p.amount.Add(t, amount+cashFlow)
	p.unrealized.Add(t, unrealized)
	p.percentage.Add(t, pct)
	return true
}
