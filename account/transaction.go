package account

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradebook/currency"
)

// Action is the direction of a ledger entry.
type Action int

const (
	Credit Action = iota
	Debit
)

func (a Action) String() string {
	if a == Debit {
		return "debit"
	}
	return "credit"
}

// Transaction is a booked ledger entry. It is read-only: the fields are
// unexported and only getters are provided.
type Transaction struct {
	id              string
	action          Action
	time            time.Time
	currency        currency.Currency
	amount          float64
	conversionRate  float64
	amountConverted float64
	note            string
}

func (t Transaction) ID() string                  { return t.id }
func (t Transaction) Action() Action              { return t.action }
func (t Transaction) Time() time.Time             { return t.time }
func (t Transaction) Currency() currency.Currency { return t.currency }

// Amount is the unsigned amount in the transaction currency.
func (t Transaction) Amount() float64 { return t.amount }

// ConversionRate converts the transaction currency into the home currency.
func (t Transaction) ConversionRate() float64 { return t.conversionRate }

// AmountConverted is the unsigned amount in the home currency.
func (t Transaction) AmountConverted() float64 { return t.amountConverted }

func (t Transaction) Note() string { return t.note }

// Signed returns the home-currency amount, negative for debits.
func (t Transaction) Signed() float64 {
	if t.action == Debit {
		return -t.amountConverted
	}
	return t.amountConverted
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %g (%s)", t.action, t.currency, t.amount, t.note)
}
