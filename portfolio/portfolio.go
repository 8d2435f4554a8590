package portfolio

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradebook/account"
	"github.com/rustyeddy/tradebook/broker"
	"github.com/rustyeddy/tradebook/currency"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/performance"
)

const noteInitialCash = "initial cash"

// Config holds what a portfolio needs at construction.
type Config struct {
	Holder      string
	Currency    currency.Currency // home currency
	InitialCash float64
	Start       time.Time
	Converter   currency.Converter
	Matching    performance.Matching

	// Journal, if set, receives every transaction, round-trip and equity
	// snapshot. The portfolio does not close it.
	Journal journal.Journal
	Logger  *zerolog.Logger
}

// Portfolio owns one account and a position per traded instrument.
type Portfolio struct {
	holder      string
	currency    currency.Currency
	converter   currency.Converter
	matching    performance.Matching
	initialCash float64
	tradeCash   float64

	account    *account.Account
	positions  map[string]*Position
	executions []*broker.Execution
	perf       *performance.Performance

	journal    journal.Journal
	journalErr error
	log        zerolog.Logger
}

func New(cfg Config) (*Portfolio, error) {
	if cfg.Holder == "" {
		return nil, errors.New("new portfolio: empty holder")
	}
	if cfg.Currency.Symbol == "" {
		return nil, errors.New("new portfolio: no home currency")
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	conv := cfg.Converter
	if conv == nil {
		conv = currency.NewUpdatableConverter()
	}

	p := &Portfolio{
		holder:      cfg.Holder,
		currency:    cfg.Currency,
		converter:   conv,
		matching:    cfg.Matching,
		initialCash: cfg.InitialCash,
		positions:   make(map[string]*Position),
		perf:        performance.New(),
		journal:     cfg.Journal,
		log:         log.With().Str("component", "portfolio").Str("holder", cfg.Holder).Logger(),
	}
	p.account = account.New(cfg.Holder, cfg.Currency, conv, log)
	p.account.SetListener(p)

	if err := p.account.Add(cfg.Start, cfg.InitialCash, cfg.Currency, noteInitialCash); err != nil {
		return nil, fmt.Errorf("new portfolio: %w", err)
	}
	if err := p.mark(cfg.Start); err != nil {
		return nil, fmt.Errorf("new portfolio: %w", err)
	}
	if err := p.flushJournal(); err != nil {
		return nil, fmt.Errorf("new portfolio: %w", err)
	}

	p.log.Info().
		Str("currency", cfg.Currency.Symbol).
		Float64("initial_cash", cfg.InitialCash).
		Str("matching", cfg.Matching.String()).
		Msg("portfolio created")
	return p, nil
}

func (p *Portfolio) Holder() string                 { return p.holder }
func (p *Portfolio) Currency() currency.Currency    { return p.currency }
func (p *Portfolio) Account() *account.Account      { return p.account }
func (p *Portfolio) Matching() performance.Matching { return p.matching }
func (p *Portfolio) InitialCash() float64           { return p.initialCash }

// Performance is portfolio wide: every round-trip of every position, and
// PnL and drawdown of the equity.
func (p *Portfolio) Performance() *performance.Performance { return p.perf }

// Position returns the position in the instrument with the given symbol.
func (p *Portfolio) Position(symbol string) (*Position, bool) {
	pos, ok := p.positions[symbol]
	return pos, ok
}

// Positions returns every position ever opened, sorted by symbol. Flat
// positions are included.
func (p *Portfolio) Positions() []*Position {
	out := make([]*Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].instrument.Symbol < out[j].instrument.Symbol
	})
	return out
}

// ExecutionHistory returns every execution booked, in booking order.
func (p *Portfolio) ExecutionHistory() []*broker.Execution {
	out := make([]*broker.Execution, len(p.executions))
	copy(out, p.executions)
	return out
}

// ExecuteFill builds an execution from a broker fill and books it.
func (p *Portfolio) ExecuteFill(inst *market.Instrument, f broker.Fill) ([]performance.Roundtrip, error) {
	ex, err := broker.NewExecution(f, inst, p.converter)
	if err != nil {
		return nil, err
	}
	return p.Execute(inst, ex)
}

// Execute books ex into the position in inst, opening the position on
// first use, and returns the round-trips it closed.
func (p *Portfolio) Execute(inst *market.Instrument, ex *broker.Execution) ([]performance.Roundtrip, error) {
	if inst == nil || ex == nil {
		return nil, errors.New("portfolio execute: nil instrument or execution")
	}
	pos, ok := p.positions[inst.Symbol]
	if !ok {
		pos = NewPosition(inst, p.account, p.matching, p.log)
	} else if pos.instrument != inst {
		return nil, fmt.Errorf("portfolio execute: %s: %w", inst, market.ErrDuplicateInstrument)
	}

	cash, err := p.toHome(ex.CashFlow-ex.CommissionConverted, ex.Currency)
	if err != nil {
		return nil, fmt.Errorf("portfolio execute: %w", err)
	}
	rts, err := pos.Execute(ex)
	if err != nil {
		return nil, fmt.Errorf("portfolio execute: %w", err)
	}
	p.positions[inst.Symbol] = pos
	p.executions = append(p.executions, ex)
	p.tradeCash += cash

	for _, rt := range rts {
		p.perf.AddRoundtrip(rt)
		if p.journal != nil {
			p.keep(p.journal.RecordRoundtrip(roundtripRecord(rt)))
		}
		p.log.Debug().
			Str("instrument", inst.Symbol).
			Str("side", rt.Side().String()).
			Float64("qty", rt.Quantity()).
			Float64("net_pnl", rt.NetPnL()).
			Msg("roundtrip matched")
	}

	if err := p.mark(ex.Time); err != nil {
		return rts, fmt.Errorf("portfolio execute: %w", err)
	}
	return rts, p.flushJournal()
}

// Revalue marks the position in inst to price at t. Instruments never
// traded are ignored.
func (p *Portfolio) Revalue(inst *market.Instrument, t time.Time, price float64) error {
	if inst == nil {
		return errors.New("portfolio revalue: nil instrument")
	}
	pos, ok := p.positions[inst.Symbol]
	if !ok {
		return nil
	}
	pos.Revalue(t, price)
	if err := p.mark(t); err != nil {
		return fmt.Errorf("portfolio revalue: %w", err)
	}
	return p.flushJournal()
}

// Equity is the initial cash plus the net cash flow of every execution
// and the current value of every position, in the home currency. Cash
// flows are converted at the rate of the day they were booked, position
// values at the current rate.
func (p *Portfolio) Equity() (float64, error) {
	eq := p.initialCash + p.tradeCash
	for _, pos := range p.positions {
		v, err := p.toHome(pos.Amount(), pos.Currency())
		if err != nil {
			return 0, fmt.Errorf("equity %s: %w", pos.instrument, err)
		}
		eq += v
	}
	return eq, nil
}

// OnTransaction forwards account transactions to the journal.
func (p *Portfolio) OnTransaction(holder string, tx account.Transaction) {
	if p.journal == nil {
		return
	}
	p.keep(p.journal.RecordTransaction(journal.TransactionRecord{
		TxID:            tx.ID(),
		Holder:          holder,
		Time:            tx.Time(),
		Action:          tx.Action().String(),
		Currency:        tx.Currency().Symbol,
		Amount:          tx.Amount(),
		Rate:            tx.ConversionRate(),
		AmountConverted: tx.AmountConverted(),
		Note:            tx.Note(),
	}))
}

// mark samples equity-based PnL and drawdown at t.
func (p *Portfolio) mark(t time.Time) error {
	eq, err := p.Equity()
	if err != nil {
		return err
	}
	var unrealized, margin, debt float64
	for _, pos := range p.positions {
		ccy := pos.Currency()
		u, err := p.toHome(pos.Performance().PnL().UnrealizedAmount(), ccy)
		if err != nil {
			return err
		}
		m, err := p.toHome(pos.Margin(), ccy)
		if err != nil {
			return err
		}
		d, err := p.toHome(pos.Debt(), ccy)
		if err != nil {
			return err
		}
		unrealized += u
		margin += m
		debt += d
	}

	p.perf.AddPnL(t, p.initialCash, eq, unrealized, -p.initialCash)
	p.perf.AddDrawdown(t, eq)

	if p.journal == nil {
		return nil
	}
	p.keep(p.journal.RecordEquity(journal.EquitySnapshot{
		Time:     t,
		Holder:   p.holder,
		Balance:  p.account.Balance(),
		Equity:   eq,
		Margin:   margin,
		Debt:     debt,
		PnL:      p.perf.PnL().Amount(),
		Drawdown: p.perf.Drawdown().Amount(),
	}))
	return nil
}

func (p *Portfolio) toHome(amount float64, ccy currency.Currency) (float64, error) {
	if amount == 0 || ccy.Equal(p.currency) {
		return amount, nil
	}
	v, _, err := p.converter.Convert(amount, ccy, p.currency)
	return v, err
}

// keep holds on to the first journal failure until flushJournal.
func (p *Portfolio) keep(err error) {
	if err != nil && p.journalErr == nil {
		p.journalErr = err
	}
}

func (p *Portfolio) flushJournal() error {
	err := p.journalErr
	p.journalErr = nil
	if err != nil {
		p.log.Error().Err(err).Msg("journal write failed")
		return fmt.Errorf("journal: %w", err)
	}
	return nil
}

func roundtripRecord(rt performance.Roundtrip) journal.RoundtripRecord {
	return journal.RoundtripRecord{
		RoundtripID: rt.ID(),
		Instrument:  rt.Instrument().Symbol,
		Side:        rt.Side().String(),
		Quantity:    rt.Quantity(),
		EntryTime:   rt.EntryTime(),
		EntryPrice:  rt.EntryPrice(),
		ExitTime:    rt.ExitTime(),
		ExitPrice:   rt.ExitPrice(),
		Commission:  rt.Commission(),
		GrossPnL:    rt.GrossPnL(),
		NetPnL:      rt.NetPnL(),
	}
}
