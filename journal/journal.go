// journal/journal.go
package journal

import (
	"time"
)

// TransactionRecord mirrors one booked account transaction.
type TransactionRecord struct {
	TxID            string
	Holder          string
	Time            time.Time
	Action          string // credit or debit
	Currency        string
	Amount          float64
	Rate            float64
	AmountConverted float64
	Note            string
}

// RoundtripRecord mirrors one matched round-trip.
type RoundtripRecord struct {
	RoundtripID string
	Instrument  string
	Side        string
	Quantity    float64
	EntryTime   time.Time
	EntryPrice  float64
	ExitTime    time.Time
	ExitPrice   float64
	Commission  float64
	GrossPnL    float64
	NetPnL      float64
}

// EquitySnapshot is the portfolio state after an execution or a
// revaluation, in the home currency.
type EquitySnapshot struct {
	Time     time.Time
	Holder   string
	Balance  float64
	Equity   float64
	Margin   float64
	Debt     float64
	PnL      float64
	Drawdown float64
}

type Journal interface {
	RecordTransaction(TransactionRecord) error
	RecordRoundtrip(RoundtripRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}
