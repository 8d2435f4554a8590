// journal/csv.go
package journal

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	transactionHeader = []string{"tx_id", "holder", "time", "action", "currency", "amount", "rate", "amount_converted", "note"}
	roundtripHeader   = []string{"roundtrip_id", "instrument", "side", "quantity", "entry_time", "entry_price", "exit_time", "exit_price", "commission", "gross_pnl", "net_pnl"}
	equityHeader      = []string{"time", "holder", "balance", "equity", "margin", "debt", "pnl", "drawdown"}
)

// CSV writes each record kind to its own file, flushing after every row.
type CSV struct {
	transactions *csv.Writer
	roundtrips   *csv.Writer
	equity       *csv.Writer
	files        []*os.File
}

func NewCSV(transactionsPath, roundtripsPath, equityPath string) (*CSV, error) {
	j := &CSV{}
	var err error
	if j.transactions, err = j.create(transactionsPath, transactionHeader); err != nil {
		return nil, errors.Join(err, j.Close())
	}
	if j.roundtrips, err = j.create(roundtripsPath, roundtripHeader); err != nil {
		return nil, errors.Join(err, j.Close())
	}
	if j.equity, err = j.create(equityPath, equityHeader); err != nil {
		return nil, errors.Join(err, j.Close())
	}
	return j, nil
}

func (j *CSV) create(path string, header []string) (*csv.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	j.files = append(j.files, f)

	w := csv.NewWriter(f)
	if err := write(w, header); err != nil {
		return nil, err
	}
	return w, nil
}

func (j *CSV) RecordTransaction(t TransactionRecord) error {
	return write(j.transactions, []string{
		t.TxID,
		t.Holder,
		t.Time.Format(time.RFC3339),
		t.Action,
		t.Currency,
		f(t.Amount),
		f(t.Rate),
		f(t.AmountConverted),
		t.Note,
	})
}

func (j *CSV) RecordRoundtrip(r RoundtripRecord) error {
	return write(j.roundtrips, []string{
		r.RoundtripID,
		r.Instrument,
		r.Side,
		f(r.Quantity),
		r.EntryTime.Format(time.RFC3339),
		f(r.EntryPrice),
		r.ExitTime.Format(time.RFC3339),
		f(r.ExitPrice),
		f(r.Commission),
		f(r.GrossPnL),
		f(r.NetPnL),
	})
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	return write(j.equity, []string{
		e.Time.Format(time.RFC3339),
		e.Holder,
		f(e.Balance),
		f(e.Equity),
		f(e.Margin),
		f(e.Debt),
		f(e.PnL),
		f(e.Drawdown),
	})
}

func (j *CSV) Close() error {
	var errs []error
	for _, w := range []*csv.Writer{j.transactions, j.roundtrips, j.equity} {
		if w == nil {
			continue
		}
		w.Flush()
		errs = append(errs, w.Error())
	}
	for _, fh := range j.files {
		errs = append(errs, fh.Close())
	}
	return errors.Join(errs...)
}

func write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
