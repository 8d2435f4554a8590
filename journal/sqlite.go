package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite journals into a SQLite database. Times are stored in UTC so the
// text columns sort and compare chronologically.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTransaction(t TransactionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO transactions
		(tx_id, holder, time, action, currency, amount, rate, amount_converted, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TxID, t.Holder, t.Time.UTC(), t.Action, t.Currency,
		t.Amount, t.Rate, t.AmountConverted, t.Note,
	)
	return err
}

func (j *SQLite) RecordRoundtrip(r RoundtripRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO roundtrips
		(roundtrip_id, instrument, side, quantity, entry_time, entry_price, exit_time, exit_price, commission, gross_pnl, net_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RoundtripID, r.Instrument, r.Side, r.Quantity,
		r.EntryTime.UTC(), r.EntryPrice, r.ExitTime.UTC(), r.ExitPrice,
		r.Commission, r.GrossPnL, r.NetPnL,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, holder, balance, equity, margin, debt, pnl, drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Time.UTC(), e.Holder, e.Balance, e.Equity, e.Margin, e.Debt, e.PnL, e.Drawdown,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
