package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradebook/broker"
)

// Kind tells a fill from a price mark.
type Kind int

const (
	Fill Kind = iota
	Mark
)

func (k Kind) String() string {
	if k == Mark {
		return "mark"
	}
	return "fill"
}

// Event is one row of a replay file.
type Event struct {
	Time       time.Time
	Instrument string
	Kind       Kind
	Side       broker.Side // fills only
	Quantity   float64
	Price      float64
	Commission float64
	// CommissionCurrency is empty for the instrument currency.
	CommissionCurrency string
	ID                 string
}

// Source yields events in file order. ok is false at the end.
type Source interface {
	Next() (ev Event, ok bool, err error)
}

// CSVFeed reads events from CSV. Expected columns:
//
//	time,instrument,event,quantity,price,commission,commission_currency,id
//
// event is an order side (buy, sell, sell_short, ...) or "mark". A header
// row is allowed; trailing columns may be omitted.
type CSVFeed struct {
	c    io.Closer
	r    *csv.Reader
	from time.Time
	to   time.Time
	line int

	sawFirst bool
}

// NewCSVFeed reads from r, keeping events with time in [from, to). Zero
// bounds are open.
func NewCSVFeed(r io.Reader, from, to time.Time) *CSVFeed {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return &CSVFeed{r: cr, from: from, to: to}
}

// OpenCSV opens the file at path as a feed. Close releases the file.
func OpenCSV(path string, from, to time.Time) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	feed := NewCSVFeed(f, from, to)
	feed.c = f
	return feed, nil
}

func (f *CSVFeed) Close() error {
	if f.c != nil {
		return f.c.Close()
	}
	return nil
}

func (f *CSVFeed) Next() (Event, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return Event{}, false, nil
		}
		if err != nil {
			return Event{}, false, err
		}
		f.line++
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		ev, err := parseRow(row)
		if err != nil {
			return Event{}, false, fmt.Errorf("replay row %d: %w", f.line, err)
		}
		if !inRange(ev.Time, f.from, f.to) {
			continue
		}
		return ev, true, nil
	}
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

func parseRow(row []string) (Event, error) {
	if len(row) < 5 {
		return Event{}, fmt.Errorf("expected at least 5 columns, got %d", len(row))
	}
	if len(row) > 8 {
		return Event{}, fmt.Errorf("too many columns (expected <=8): %v", row)
	}
	col := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var ev Event
	ts := col(0)
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Event{}, fmt.Errorf("bad time %q: %w", ts, err)
	}
	ev.Time = t

	ev.Instrument = col(1)
	if ev.Instrument == "" {
		return Event{}, fmt.Errorf("missing instrument")
	}

	if ev.Price, err = parseFloat(col(4)); err != nil {
		return Event{}, fmt.Errorf("bad price %q: %w", col(4), err)
	}

	if strings.EqualFold(col(2), "mark") {
		ev.Kind = Mark
		return ev, nil
	}

	ev.Kind = Fill
	if ev.Side, err = broker.ParseSide(col(2)); err != nil {
		return Event{}, err
	}
	if ev.Quantity, err = parseFloat(col(3)); err != nil {
		return Event{}, fmt.Errorf("bad quantity %q: %w", col(3), err)
	}
	if ev.Quantity < 0 {
		return Event{}, fmt.Errorf("negative quantity %g", ev.Quantity)
	}
	if ev.Commission, err = parseFloat(col(5)); err != nil {
		return Event{}, fmt.Errorf("bad commission %q: %w", col(5), err)
	}
	ev.CommissionCurrency = col(6)
	ev.ID = col(7)
	return ev, nil
}

// parseFloat treats an empty column as zero.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
