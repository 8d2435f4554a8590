package performance

import "time"

// Performance bundles the PnL, drawdown and round-trip trackers of a
// position or a portfolio.
type Performance struct {
	pnl        PnL
	drawdown   Drawdown
	roundtrips RoundtripPerformance
}

func New() *Performance { return &Performance{} }

func (p *Performance) AddRoundtrip(rt Roundtrip) { p.roundtrips.Add(rt) }

func (p *Performance) AddPnL(t time.Time, initial, amount, unrealized, cashFlow float64) bool {
	return p.pnl.Add(t, initial, amount, unrealized, cashFlow)
}

func (p *Performance) AddDrawdown(t time.Time, value float64) bool {
	return p.drawdown.Add(t, value)
}

func (p *Performance) PnL() *PnL                         { return &p.pnl }
func (p *Performance) Drawdown() *Drawdown               { return &p.drawdown }
func (p *Performance) Roundtrips() *RoundtripPerformance { return &p.roundtrips }
