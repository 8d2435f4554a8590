package performance

import (
	"math"
	"time"

	"github.com/rustyeddy/tradebook/broker"
	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/pkg/id"
)

// Side is the direction of a round-trip.
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

// Roundtrip is a matched entry/exit pair, or a quantity slice of one.
// Values are fixed at construction and exposed through getters.
//
// Excursions and efficiencies are percentages. MAE of 0% is perfect; an
// efficiency of 100% captured the whole price range seen while the
// round-trip was open.
type Roundtrip struct {
	id         string
	instrument *market.Instrument
	side       Side
	quantity   float64
	entryTime  time.Time
	entryPrice float64
	exitTime   time.Time
	exitPrice  float64
	highPrice  float64
	lowPrice   float64
	commission float64
	grossPnL   float64
	netPnL     float64
	maePrice   float64
	mfePrice   float64
	mae        float64
	mfe        float64
	entryEff   float64
	exitEff    float64
	totalEff   float64
}

// NewRoundtrip builds the round-trip of qty units entered by entry and
// closed by exit.
func NewRoundtrip(inst *market.Instrument, entry, exit *broker.Execution, qty float64) Roundtrip {
	side := Long
	if entry.Side.IsSell() {
		side = Short
	}
	in, out := entry.Price, exit.Price

	gross := qty * (out - in) * inst.Factor()
	if side == Short {
		gross = qty * (in - out) * inst.Factor()
	}
	commission := (entry.CommissionConvertedPerUnit + exit.CommissionConvertedPerUnit) * qty

	high := math.Max(entry.UnrealizedPriceHigh, exit.UnrealizedPriceHigh)
	low := math.Min(entry.UnrealizedPriceLow, exit.UnrealizedPriceLow)
	delta := high - low

	rt := Roundtrip{
		id:         id.NewAt(exit.Time),
		instrument: inst,
		side:       side,
		quantity:   qty,
		entryTime:  entry.Time,
		entryPrice: in,
		exitTime:   exit.Time,
		exitPrice:  out,
		highPrice:  high,
		lowPrice:   low,
		commission: commission,
		grossPnL:   gross,
		netPnL:     gross - commission,
	}

	if side == Long {
		rt.maePrice, rt.mfePrice = low, high
		rt.mae = 100 * (1 - ratio(low, in))
		rt.mfe = 100 * (ratio(high, out) - 1)
		if delta != 0 {
			rt.entryEff = 100 * (high - in) / delta
			rt.exitEff = 100 * (out - low) / delta
			rt.totalEff = 100 * (out - in) / delta
		}
	} else {
		rt.maePrice, rt.mfePrice = high, low
		rt.mae = 100 * (ratio(high, in) - 1)
		rt.mfe = 100 * (1 - ratio(low, out))
		if delta != 0 {
			rt.entryEff = 100 * (in - low) / delta
			rt.exitEff = 100 * (high - out) / delta
			rt.totalEff = 100 * (in - out) / delta
		}
	}
	return rt
}

// ratio is a/b, or 1 when b is zero so the excursion reads as 0%.
func ratio(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}

func (r Roundtrip) ID() string                     { return r.id }
func (r Roundtrip) Instrument() *market.Instrument { return r.instrument }
func (r Roundtrip) Side() Side                     { return r.side }
func (r Roundtrip) Quantity() float64              { return r.quantity }
func (r Roundtrip) EntryTime() time.Time           { return r.entryTime }
func (r Roundtrip) EntryPrice() float64            { return r.entryPrice }
func (r Roundtrip) ExitTime() time.Time            { return r.exitTime }
func (r Roundtrip) ExitPrice() float64             { return r.exitPrice }
func (r Roundtrip) Duration() time.Duration        { return r.exitTime.Sub(r.entryTime) }
func (r Roundtrip) HighestPrice() float64          { return r.highPrice }
func (r Roundtrip) LowestPrice() float64           { return r.lowPrice }
func (r Roundtrip) Commission() float64            { return r.commission }
func (r Roundtrip) GrossPnL() float64              { return r.grossPnL }
func (r Roundtrip) NetPnL() float64                { return r.netPnL }

func (r Roundtrip) MaximumAdversePrice() float64       { return r.maePrice }
func (r Roundtrip) MaximumFavorablePrice() float64     { return r.mfePrice }
func (r Roundtrip) MaximumAdverseExcursion() float64   { return r.mae }
func (r Roundtrip) MaximumFavorableExcursion() float64 { return r.mfe }
func (r Roundtrip) EntryEfficiency() float64           { return r.entryEff }
func (r Roundtrip) ExitEfficiency() float64            { return r.exitEff }
func (r Roundtrip) TotalEfficiency() float64           { return r.totalEff }
