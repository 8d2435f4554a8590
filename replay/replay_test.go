package replay

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/broker"
	"github.com/rustyeddy/tradebook/currency"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/performance"
	"github.com/rustyeddy/tradebook/portfolio"
)

const fills = `time,instrument,event,quantity,price,commission,commission_currency,id
2024-03-01T14:30:00Z,ABC,buy,100,100,1,,f1
# opening mark
2024-03-01T15:00:00Z,ABC,mark,,95
2024-03-01T16:00:00Z,ABC,sell,100,110,1,USD,f2
2024-03-02T14:30:00Z,ABC,sell_short,10,120,0.5
2024-03-02T15:00:00Z,ABC,buy,10,115,0.5
`

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func collect(t *testing.T, src Source) []Event {
	t.Helper()
	var out []Event
	for {
		ev, ok, err := src.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func TestCSVFeedParse(t *testing.T) {
	t.Parallel()

	evs := collect(t, NewCSVFeed(strings.NewReader(fills), time.Time{}, time.Time{}))
	require.Len(t, evs, 5)

	assert.Equal(t, Fill, evs[0].Kind)
	assert.Equal(t, broker.Buy, evs[0].Side)
	assert.Equal(t, 100.0, evs[0].Quantity)
	assert.Equal(t, 1.0, evs[0].Commission)
	assert.Equal(t, "f1", evs[0].ID)
	assert.Empty(t, evs[0].CommissionCurrency)

	assert.Equal(t, Mark, evs[1].Kind)
	assert.Equal(t, 95.0, evs[1].Price)

	assert.Equal(t, "USD", evs[2].CommissionCurrency)
	assert.Equal(t, broker.SellShort, evs[3].Side)
}

func TestCSVFeedRange(t *testing.T) {
	t.Parallel()

	from := ts("2024-03-01T15:00:00Z")
	to := ts("2024-03-02T15:00:00Z")
	evs := collect(t, NewCSVFeed(strings.NewReader(fills), from, to))
	require.Len(t, evs, 3)
	assert.Equal(t, from, evs[0].Time)
	assert.Equal(t, broker.SellShort, evs[2].Side)
}

func TestCSVFeedErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  string
	}{
		{"short row", "2024-03-01T14:30:00Z,ABC,buy,1"},
		{"bad time", "yesterday,ABC,buy,1,10"},
		{"no instrument", "2024-03-01T14:30:00Z,,buy,1,10"},
		{"bad side", "2024-03-01T14:30:00Z,ABC,hold,1,10"},
		{"bad quantity", "2024-03-01T14:30:00Z,ABC,buy,x,10"},
		{"negative quantity", "2024-03-01T14:30:00Z,ABC,buy,-1,10"},
		{"bad price", "2024-03-01T14:30:00Z,ABC,mark,,abc"},
		{"too many columns", "2024-03-01T14:30:00Z,ABC,buy,1,10,0,USD,id,extra"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := NewCSVFeed(strings.NewReader(tt.row), time.Time{}, time.Time{}).Next()
			assert.Error(t, err)
		})
	}
}

func TestOpenCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fills.csv")
	require.NoError(t, os.WriteFile(path, []byte(fills), 0644))

	feed, err := OpenCSV(path, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, collect(t, feed), 5)
	assert.NoError(t, feed.Close())

	_, err = OpenCSV(filepath.Join(t.TempDir(), "missing.csv"), time.Time{}, time.Time{})
	assert.Error(t, err)
}

func newRunner(t *testing.T, j journal.Journal) *Runner {
	t.Helper()

	ccys := currency.NewStandardRegistry()
	usd := ccys.MustLookup("USD")
	insts := market.NewRegistry()
	require.NoError(t, insts.Add(&market.Instrument{Symbol: "ABC", Type: market.Stock, Currency: usd, PriceFactor: 1}))

	p, err := portfolio.New(portfolio.Config{
		Holder:      "replay",
		Currency:    usd,
		InitialCash: 10000,
		Start:       ts("2024-03-01T00:00:00Z"),
		Matching:    performance.FIFO,
		Journal:     j,
	})
	require.NoError(t, err)
	return &Runner{Portfolio: p, Instruments: insts, Currencies: ccys, Log: zerolog.Nop()}
}

func TestRunnerRun(t *testing.T) {
	t.Parallel()

	j, err := journal.NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	r := newRunner(t, j)
	s, err := r.Run(context.Background(), NewCSVFeed(strings.NewReader(fills), time.Time{}, time.Time{}))
	require.NoError(t, err)

	assert.Equal(t, 5, s.Events)
	assert.Equal(t, 4, s.Fills)
	assert.Equal(t, 1, s.Marks)
	assert.Equal(t, 2, s.Roundtrips)
	assert.Equal(t, ts("2024-03-01T14:30:00Z"), s.First)
	assert.Equal(t, ts("2024-03-02T15:00:00Z"), s.Last)

	// long: +1000 - 2 commission, short: +50 - 1 commission
	eq, err := r.Portfolio.Equity()
	require.NoError(t, err)
	assert.InDelta(t, 11047.0, eq, 1e-9)

	rts := r.Portfolio.Performance().Roundtrips()
	assert.Equal(t, 1, rts.LongCount())
	assert.Equal(t, 1, rts.ShortCount())
	// the mark widened the first trade's range
	assert.Equal(t, 95.0, rts.Roundtrips()[0].LowestPrice())

	stored, err := j.ListRoundtripsClosedBetween(s.First, s.Last.Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	rep, err := Report(r.Portfolio, s, "fills.csv")
	require.NoError(t, err)
	assert.Equal(t, "fifo", rep.Matching)
	assert.InDelta(t, 1047.0, rep.NetPnL, 1e-9)
	assert.InDelta(t, 10.47, rep.ReturnPct, 1e-9)
	assert.Equal(t, 2, rep.Wins)
	assert.Equal(t, 1.0, rep.WinRate)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteOrg(&buf))
	assert.Contains(t, buf.String(), "fills.csv")
}

func TestRunnerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"unknown instrument", "2024-03-01T14:30:00Z,XYZ,buy,1,10\n"},
		{"unknown commission currency", "2024-03-01T14:30:00Z,ABC,buy,1,10,1,ZZZ\n"},
		{"bad row", "2024-03-01T14:30:00Z,ABC,buy\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newRunner(t, nil)
			s, err := r.Run(context.Background(), NewCSVFeed(strings.NewReader(tt.data), time.Time{}, time.Time{}))
			assert.Error(t, err)
			assert.Zero(t, s.Events)
		})
	}
}

func TestRunnerCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner(t, nil)
	_, err := r.Run(ctx, NewCSVFeed(strings.NewReader(fills), time.Time{}, time.Time{}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.Portfolio.ExecutionHistory())
}
