// Package replay drives a portfolio from a recorded stream of fills and
// price marks.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradebook/broker"
	"github.com/rustyeddy/tradebook/currency"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/portfolio"
)

// Summary counts what a run processed.
type Summary struct {
	Events     int
	Fills      int
	Marks      int
	Roundtrips int
	First      time.Time
	Last       time.Time
}

// Runner feeds events into a portfolio, resolving symbols through the
// registries.
type Runner struct {
	Portfolio   *portfolio.Portfolio
	Instruments *market.Registry
	Currencies  *currency.Registry
	Log         zerolog.Logger
}

// Run consumes src until it is exhausted, ctx is done or an event fails.
func (r *Runner) Run(ctx context.Context, src Source) (Summary, error) {
	log := r.Log.With().Str("component", "replay").Logger()
	var s Summary
	for {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		ev, ok, err := src.Next()
		if err != nil {
			return s, err
		}
		if !ok {
			break
		}

		n, err := r.apply(ev)
		if err != nil {
			return s, fmt.Errorf("replay %s %s at %s: %w", ev.Kind, ev.Instrument, ev.Time.Format(time.RFC3339), err)
		}

		if s.Events == 0 {
			s.First = ev.Time
		}
		s.Events++
		s.Last = ev.Time
		s.Roundtrips += n
		if ev.Kind == Mark {
			s.Marks++
		} else {
			s.Fills++
		}
	}

	log.Info().
		Int("events", s.Events).
		Int("fills", s.Fills).
		Int("marks", s.Marks).
		Int("roundtrips", s.Roundtrips).
		Msg("replay finished")
	return s, nil
}

func (r *Runner) apply(ev Event) (int, error) {
	inst, err := r.Instruments.Lookup(ev.Instrument)
	if err != nil {
		return 0, err
	}
	if ev.Kind == Mark {
		return 0, r.Portfolio.Revalue(inst, ev.Time, ev.Price)
	}

	f := broker.Fill{
		ID:         ev.ID,
		Time:       ev.Time,
		Side:       ev.Side,
		Quantity:   ev.Quantity,
		Price:      ev.Price,
		Commission: ev.Commission,
	}
	if ev.CommissionCurrency != "" {
		ccy, err := r.Currencies.Lookup(ev.CommissionCurrency)
		if err != nil {
			return 0, err
		}
		f.CommissionCurrency = &ccy
	}
	rts, err := r.Portfolio.ExecuteFill(inst, f)
	return len(rts), err
}

// Report summarizes the portfolio after a run.
func Report(p *portfolio.Portfolio, s Summary, dataset string) (*journal.Report, error) {
	eq, err := p.Equity()
	if err != nil {
		return nil, err
	}
	perf := p.Performance()
	rts := perf.Roundtrips()

	rep := &journal.Report{
		Holder:       p.Holder(),
		Currency:     p.Currency().Symbol,
		Matching:     p.Matching().String(),
		Dataset:      dataset,
		Start:        s.First,
		End:          s.Last,
		StartEquity:  p.InitialCash(),
		EndEquity:    eq,
		NetPnL:       eq - p.InitialCash(),
		MaxDDPct:     perf.Drawdown().MaxPercentage(),
		Roundtrips:   rts.TotalCount(),
		Wins:         rts.WinningCount(),
		Losses:       rts.LosingCount(),
		WinRate:      rts.WinRate(),
		ProfitFactor: rts.ProfitFactor(),
		Commission:   rts.Commission(),
		AvgDuration:  rts.AverageDuration(),
	}
	if p.InitialCash() != 0 {
		rep.ReturnPct = rep.NetPnL / p.InitialCash() * 100
	}
	return rep, nil
}
