package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const roundtripColumns = `roundtrip_id, instrument, side, quantity, entry_time, entry_price,
	exit_time, exit_price, commission, gross_pnl, net_pnl`

type scanner interface {
	Scan(dest ...any) error
}

func scanRoundtrip(s scanner) (RoundtripRecord, error) {
	var rec RoundtripRecord
	err := s.Scan(
		&rec.RoundtripID,
		&rec.Instrument,
		&rec.Side,
		&rec.Quantity,
		&rec.EntryTime,
		&rec.EntryPrice,
		&rec.ExitTime,
		&rec.ExitPrice,
		&rec.Commission,
		&rec.GrossPnL,
		&rec.NetPnL,
	)
	return rec, err
}

// GetRoundtrip returns a single round-trip by ID.
func (j *SQLite) GetRoundtrip(id string) (RoundtripRecord, error) {
	row := j.db.QueryRow(`SELECT `+roundtripColumns+` FROM roundtrips WHERE roundtrip_id = ?`, id)

	rec, err := scanRoundtrip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RoundtripRecord{}, fmt.Errorf("roundtrip %q not found", id)
		}
		return RoundtripRecord{}, err
	}
	return rec, nil
}

// ListRoundtripsClosedBetween returns round-trips whose exit_time is within [start, end).
func (j *SQLite) ListRoundtripsClosedBetween(start, end time.Time) ([]RoundtripRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+roundtripColumns+`
		FROM roundtrips
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC, roundtrip_id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoundtripRecord
	for rows.Next() {
		rec, err := scanRoundtrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns equity snapshots with time in [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, holder, balance, equity, margin, debt, pnl, drawdown
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, rowid ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(
			&e.Time,
			&e.Holder,
			&e.Balance,
			&e.Equity,
			&e.Margin,
			&e.Debt,
			&e.PnL,
			&e.Drawdown,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTransactions returns the transactions of holder in booking order.
func (j *SQLite) ListTransactions(holder string) ([]TransactionRecord, error) {
	rows, err := j.db.Query(`
		SELECT tx_id, holder, time, action, currency, amount, rate, amount_converted, note
		FROM transactions
		WHERE holder = ?
		ORDER BY time ASC, rowid ASC`, holder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		var t TransactionRecord
		if err := rows.Scan(
			&t.TxID,
			&t.Holder,
			&t.Time,
			&t.Action,
			&t.Currency,
			&t.Amount,
			&t.Rate,
			&t.AmountConverted,
			&t.Note,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RoundtripStats aggregates the round-trips closed in a period.
type RoundtripStats struct {
	Count        int
	Wins         int
	Losses       int
	GrossProfit  float64
	GrossLoss    float64 // positive
	NetPnL       float64
	ProfitFactor float64 // 0 without losses
}

// StatsClosedBetween aggregates round-trips whose exit_time is within [start, end).
func (j *SQLite) StatsClosedBetween(start, end time.Time) (RoundtripStats, error) {
	var s RoundtripStats
	err := j.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN net_pnl > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN net_pnl < 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN net_pnl > 0 THEN net_pnl ELSE 0 END), 0),
			COALESCE(-SUM(CASE WHEN net_pnl < 0 THEN net_pnl ELSE 0 END), 0),
			COALESCE(SUM(net_pnl), 0)
		FROM roundtrips
		WHERE exit_time >= ? AND exit_time < ?`, start.UTC(), end.UTC()).
		Scan(&s.Count, &s.Wins, &s.Losses, &s.GrossProfit, &s.GrossLoss, &s.NetPnL)
	if err != nil {
		return RoundtripStats{}, err
	}
	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}
	return s, nil
}
