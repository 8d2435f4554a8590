package performance

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// RoundtripPerformance aggregates statistics over the round-trips added
// to it. A round-trip with a positive net PnL is a winner, a negative one
// a loser; break-even round-trips count toward neither.
type RoundtripPerformance struct {
	rts []Roundtrip

	long, short     int
	winning, losing int

	winStreak, lossStreak       int
	maxWinStreak, maxLossStreak int
}

func (p *RoundtripPerformance) Add(rt Roundtrip) {
	p.rts = append(p.rts, rt)

	if rt.Side() == Short {
		p.short++
	} else {
		p.long++
	}

	switch net := rt.NetPnL(); {
	case net > 0:
		p.winning++
		p.winStreak++
		p.lossStreak = 0
	case net < 0:
		p.losing++
		p.lossStreak++
		p.winStreak = 0
	default:
		p.winStreak, p.lossStreak = 0, 0
	}
	p.maxWinStreak = max(p.maxWinStreak, p.winStreak)
	p.maxLossStreak = max(p.maxLossStreak, p.lossStreak)
}

// Roundtrips returns a copy of the round-trips in the order added.
func (p *RoundtripPerformance) Roundtrips() []Roundtrip {
	out := make([]Roundtrip, len(p.rts))
	copy(out, p.rts)
	return out
}

func (p *RoundtripPerformance) TotalCount() int   { return len(p.rts) }
func (p *RoundtripPerformance) LongCount() int    { return p.long }
func (p *RoundtripPerformance) ShortCount() int   { return p.short }
func (p *RoundtripPerformance) WinningCount() int { return p.winning }
func (p *RoundtripPerformance) LosingCount() int  { return p.losing }

func (p *RoundtripPerformance) MaxConsecutiveWinners() int { return p.maxWinStreak }
func (p *RoundtripPerformance) MaxConsecutiveLosers() int  { return p.maxLossStreak }

// WinRate is the fraction of winners, in [0, 1].
func (p *RoundtripPerformance) WinRate() float64 {
	if len(p.rts) == 0 {
		return 0
	}
	return float64(p.winning) / float64(len(p.rts))
}

// LossRate is the fraction of losers, in [0, 1].
func (p *RoundtripPerformance) LossRate() float64 {
	if len(p.rts) == 0 {
		return 0
	}
	return float64(p.losing) / float64(len(p.rts))
}

func (p *RoundtripPerformance) GrossPnL() float64 {
	return p.sum(Roundtrip.GrossPnL)
}

func (p *RoundtripPerformance) NetPnL() float64 {
	return p.sum(Roundtrip.NetPnL)
}

func (p *RoundtripPerformance) Commission() float64 {
	return p.sum(Roundtrip.Commission)
}

func (p *RoundtripPerformance) AverageNetPnL() float64 {
	return p.mean(Roundtrip.NetPnL, nil)
}

// NetPnLStdDev is the sample standard deviation of the net PnL.
func (p *RoundtripPerformance) NetPnLStdDev() float64 {
	if len(p.rts) < 2 {
		return 0
	}
	return stat.StdDev(p.values(Roundtrip.NetPnL, nil), nil)
}

func (p *RoundtripPerformance) AverageWinningNetPnL() float64 {
	return p.mean(Roundtrip.NetPnL, func(r Roundtrip) bool { return r.NetPnL() > 0 })
}

func (p *RoundtripPerformance) AverageLosingNetPnL() float64 {
	return p.mean(Roundtrip.NetPnL, func(r Roundtrip) bool { return r.NetPnL() < 0 })
}

// ProfitFactor is the sum of winning net PnL over the absolute sum of
// losing net PnL. It is 0 when there are no losers.
func (p *RoundtripPerformance) ProfitFactor() float64 {
	var won, lost float64
	for _, r := range p.rts {
		if n := r.NetPnL(); n > 0 {
			won += n
		} else {
			lost -= n
		}
	}
	if lost == 0 {
		return 0
	}
	return won / lost
}

func (p *RoundtripPerformance) AverageDuration() time.Duration {
	if len(p.rts) == 0 {
		return 0
	}
	var total time.Duration
	for _, r := range p.rts {
		total += r.Duration()
	}
	return total / time.Duration(len(p.rts))
}

func (p *RoundtripPerformance) MinDuration() time.Duration {
	if len(p.rts) == 0 {
		return 0
	}
	d := time.Duration(math.MaxInt64)
	for _, r := range p.rts {
		d = min(d, r.Duration())
	}
	return d
}

func (p *RoundtripPerformance) MaxDuration() time.Duration {
	var d time.Duration
	for _, r := range p.rts {
		d = max(d, r.Duration())
	}
	return d
}

func (p *RoundtripPerformance) AverageMaximumAdverseExcursion() float64 {
	return p.mean(Roundtrip.MaximumAdverseExcursion, nil)
}

func (p *RoundtripPerformance) AverageMaximumFavorableExcursion() float64 {
	return p.mean(Roundtrip.MaximumFavorableExcursion, nil)
}

func (p *RoundtripPerformance) AverageEntryEfficiency() float64 {
	return p.mean(Roundtrip.EntryEfficiency, nil)
}

func (p *RoundtripPerformance) AverageExitEfficiency() float64 {
	return p.mean(Roundtrip.ExitEfficiency, nil)
}

func (p *RoundtripPerformance) AverageTotalEfficiency() float64 {
	return p.mean(Roundtrip.TotalEfficiency, nil)
}

func (p *RoundtripPerformance) values(get func(Roundtrip) float64, keep func(Roundtrip) bool) []float64 {
	out := make([]float64, 0, len(p.rts))
	for _, r := range p.rts {
		if keep == nil || keep(r) {
			out = append(out, get(r))
		}
	}
	return out
}

func (p *RoundtripPerformance) mean(get func(Roundtrip) float64, keep func(Roundtrip) bool) float64 {
	v := p.values(get, keep)
	if len(v) == 0 {
		return 0
	}
	return stat.Mean(v, nil)
}

func (p *RoundtripPerformance) sum(get func(Roundtrip) float64) float64 {
	var s float64
	for _, r := range p.rts {
		s += get(r)
	}
	return s
}
