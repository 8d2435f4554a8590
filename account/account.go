// Package account implements a single-entry ledger kept in a home currency.
package account

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradebook/broker"
	"github.com/rustyeddy/tradebook/currency"
	"github.com/rustyeddy/tradebook/pkg/id"
	"github.com/rustyeddy/tradebook/series"
)

const (
	noteExecution  = "order execution"
	noteCommission = "order execution commission"
)

// Listener is notified after every booked transaction.
type Listener interface {
	OnTransaction(holder string, tx Transaction)
}

// Account holds transactions in its home currency. Foreign-currency
// amounts are converted with the account converter; the balance is not
// prevented from going negative.
type Account struct {
	holder    string
	currency  currency.Currency
	converter currency.Converter
	balance   series.Scalar
	txs       []Transaction
	listener  Listener
	log       zerolog.Logger
}

func New(holder string, home currency.Currency, conv currency.Converter, log zerolog.Logger) *Account {
	return &Account{
		holder:    holder,
		currency:  home,
		converter: conv,
		log:       log.With().Str("component", "account").Str("holder", holder).Logger(),
	}
}

// SetListener installs l to be called for every new transaction.
func (a *Account) SetListener(l Listener) { a.listener = l }

func (a *Account) Holder() string              { return a.holder }
func (a *Account) Currency() currency.Currency { return a.currency }

func (a *Account) String() string { return a.holder + " " + a.currency.Symbol }

// Balance is the total of all transactions in the home currency.
func (a *Account) Balance() float64 { return a.balance.CurrentValue() }

// BalanceAt is the balance as of t.
func (a *Account) BalanceAt(t time.Time) float64 { return a.balance.At(t) }

func (a *Account) BalanceHistory() []series.Point { return a.balance.History() }

func (a *Account) TransactionHistory() []Transaction {
	out := make([]Transaction, len(a.txs))
	copy(out, a.txs)
	return out
}

// Add deposits a positive amount or withdraws a negative one. A zero
// amount is ignored.
func (a *Account) Add(t time.Time, amount float64, ccy currency.Currency, note string) error {
	tx, ok, err := a.prepare(t, amount, ccy, note)
	if err != nil {
		return fmt.Errorf("account add: %w", err)
	}
	if ok {
		a.book(tx)
	}
	return nil
}

// Execute books the cash movement of an execution: the net of its cash
// flow and debt, then the commission as a separate debit. Nothing is
// booked if either conversion fails.
func (a *Account) Execute(ex *broker.Execution) error {
	main, hasMain, err := a.prepare(ex.Time, ex.CashFlow+ex.Debt, ex.Currency, noteExecution)
	if err != nil {
		return fmt.Errorf("account execute: %w", err)
	}

	var comm Transaction
	hasComm := false
	if ex.Commission != 0 {
		comm, hasComm, err = a.prepare(ex.Time, -ex.Commission, ex.CommissionCurrency, noteCommission)
		if err != nil {
			return fmt.Errorf("account execute commission: %w", err)
		}
	}

	if hasMain {
		a.book(main)
	}
	if hasComm {
		a.book(comm)
	}
	return nil
}

func (a *Account) prepare(t time.Time, amount float64, ccy currency.Currency, note string) (Transaction, bool, error) {
	action := Credit
	switch {
	case amount < 0:
		amount = -amount
		action = Debit
	case amount == 0:
		return Transaction{}, false, nil
	}

	conv, rate := amount, 1.0
	if !ccy.Equal(a.currency) {
		var err error
		conv, rate, err = a.converter.Convert(amount, ccy, a.currency)
		if err != nil {
			return Transaction{}, false, err
		}
	}

	return Transaction{
		id:              id.NewAt(t),
		action:          action,
		time:            t,
		currency:        ccy,
		amount:          amount,
		conversionRate:  rate,
		amountConverted: conv,
		note:            note,
	}, true, nil
}

func (a *Account) book(tx Transaction) {
	a.balance.Accumulate(tx.time, tx.Signed())
	a.txs = append(a.txs, tx)

	a.log.Debug().
		Str("action", tx.action.String()).
		Str("currency", tx.currency.Symbol).
		Float64("amount", tx.amount).
		Float64("converted", tx.amountConverted).
		Str("note", tx.note).
		Msg("transaction booked")

	if a.listener != nil {
		a.listener.OnTransaction(a.holder, tx)
	}
}
