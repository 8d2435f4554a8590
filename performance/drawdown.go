package performance

import (
	"math"
	"time"

	"github.com/rustyeddy/tradebook/series"
)

// Drawdown tracks the decline of a value from its high watermark.
// Amounts and percentages are zero or negative. Samples at or before the
// last sample time are dropped.
type Drawdown struct {
	watermark  series.Scalar
	amount     series.Scalar
	percentage series.Scalar
	maxAmount  series.Scalar
	maxPct     series.Scalar
}

// Watermark is the highest value seen so far.
func (d *Drawdown) Watermark() float64               { return d.watermark.CurrentValue() }
func (d *Drawdown) WatermarkHistory() []series.Point { return d.watermark.History() }

func (d *Drawdown) Amount() float64               { return d.amount.CurrentValue() }
func (d *Drawdown) AmountHistory() []series.Point { return d.amount.History() }

// Percentage is in the range [-100, 0] for a positive watermark.
func (d *Drawdown) Percentage() float64               { return d.percentage.CurrentValue() }
func (d *Drawdown) PercentageHistory() []series.Point { return d.percentage.History() }

// MaxAmount is the deepest drawdown amount seen so far.
func (d *Drawdown) MaxAmount() float64               { return d.maxAmount.CurrentValue() }
func (d *Drawdown) MaxAmountHistory() []series.Point { return d.maxAmount.History() }

func (d *Drawdown) MaxPercentage() float64               { return d.maxPct.CurrentValue() }
func (d *Drawdown) MaxPercentageHistory() []series.Point { return d.maxPct.History() }

// Add records value at t. It reports whether the sample was kept.
func (d *Drawdown) Add(t time.Time, value float64) bool {
	last, ok := d.amount.Current()
	if !ok {
		d.watermark.Add(t, value)
		d.amount.Add(t, 0)
		d.percentage.Add(t, 0)
		d.maxAmount.Add(t, 0)
		d.maxPct.Add(t, 0)
		return true
	}
	if !t.After(last.Time) {
		return false
	}

	if value > d.watermark.CurrentValue() {
		d.watermark.Add(t, value)
	}

	a, p := 0.0, 0.0
	if w := d.watermark.CurrentValue(); w != 0 {
		a = math.Min(value-w, 0)
		p = math.Min(a/w*100, 0)
	}

	d.amount.Add(t, a)
	d.percentage.Add(t, p)
	d.maxAmount.Add(t, math.Min(a, d.maxAmount.CurrentValue()))
	d.maxPct.Add(t, math.Min(p, d.maxPct.CurrentValue()))
	return true
}
