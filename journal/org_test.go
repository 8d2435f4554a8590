package journal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRoundtripOrg(t *testing.T) {
	t.Parallel()

	entry := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	r := RoundtripRecord{
		RoundtripID: "01HRX5J8ZP3K",
		Instrument:  "ABC",
		Side:        "short",
		Quantity:    250,
		EntryTime:   entry,
		EntryPrice:  101.5,
		ExitTime:    entry.Add(90 * time.Minute),
		ExitPrice:   99.25,
		Commission:  2.5,
		GrossPnL:    562.5,
		NetPnL:      560,
	}

	got := FormatRoundtripOrg(r)

	assert.True(t, strings.HasPrefix(got, "** Roundtrip: ABC short (01HRX5J8)\n"))
	assert.Contains(t, got, ":ID: 01HRX5J8ZP3K\n")
	assert.Contains(t, got, ":QUANTITY: 250\n")
	assert.Contains(t, got, ":ENTRY_PRICE: 101.50000\n")
	assert.Contains(t, got, ":EXIT_PRICE: 99.25000\n")
	assert.Contains(t, got, ":ENTRY_TIME: 2024-03-15T10:30:45Z\n")
	assert.Contains(t, got, ":EXIT_TIME: 2024-03-15T12:00:45Z\n")
	assert.Contains(t, got, ":DURATION: 1h30m0s\n")
	assert.Contains(t, got, ":NET_PNL: 560.00\n")
	assert.Contains(t, got, ":END:")
	assert.Contains(t, got, "*** Thesis")
	assert.Contains(t, got, "*** Review")
}

func TestFormatRoundtripsOrg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatRoundtripsOrg(nil))

	rts := []RoundtripRecord{
		{RoundtripID: "a", Instrument: "ABC", Side: "long"},
		{RoundtripID: "b", Instrument: "XYZ", Side: "short"},
	}
	got := FormatRoundtripsOrg(rts)
	assert.Equal(t, 2, strings.Count(got, "** Roundtrip:"))
	assert.Contains(t, got, "- \n\n\n** Roundtrip: XYZ short (b)")
}

func TestReportWriteOrg(t *testing.T) {
	t.Parallel()

	r := &Report{
		RunID:       "RUN1",
		Created:     time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC),
		Holder:      "alice",
		Currency:    "USD",
		Matching:    "fifo",
		Dataset:     "fills.csv",
		Start:       time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		StartEquity: 10000,
		EndEquity:   10998,
		NetPnL:      998,
		ReturnPct:   9.98,
		MaxDDPct:    -0.01,
		Roundtrips:  1,
		Wins:        1,
		WinRate:     1,
		Commission:  2,
		AvgDuration: 30 * time.Minute,
		Notes:       []string{"single roundtrip"},
	}

	var buf bytes.Buffer
	require.NoError(t, r.WriteOrg(&buf))
	got := buf.String()

	assert.Contains(t, got, "* RUN: alice fills.csv")
	assert.Contains(t, got, ":RUN_ID:      RUN1")
	assert.Contains(t, got, ":START_DATE:  2024-06-03")
	assert.Contains(t, got, ":NET_PNL:     998.00")
	assert.Contains(t, got, ":MAX_DD_PCT:  -0.01")
	assert.Contains(t, got, ":PROFIT_FAC:  (no losses)")
	assert.Contains(t, got, ":CREATED:     [2024-06-03 Mon 18:00]")
	assert.Contains(t, got, "- Win Rate:         *100.00%*")
	assert.Contains(t, got, "- Avg Duration:     *30m0s*")
	assert.Contains(t, got, "** Observations\n- single roundtrip")
}
