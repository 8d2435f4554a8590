package replay

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz/lzma"
)

type tick struct {
	ms       uint32
	ask, bid uint32
}

func bi5(t *testing.T, ticks ...tick) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	require.NoError(t, err)
	for _, tk := range ticks {
		var rec [bi5RecordSize]byte
		binary.BigEndian.PutUint32(rec[0:4], tk.ms)
		binary.BigEndian.PutUint32(rec[4:8], tk.ask)
		binary.BigEndian.PutUint32(rec[8:12], tk.bid)
		binary.BigEndian.PutUint32(rec[12:16], math.Float32bits(1.5))
		binary.BigEndian.PutUint32(rec[16:20], math.Float32bits(2.5))
		_, err := w.Write(rec[:])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestBI5Marks(t *testing.T) {
	t.Parallel()

	hour := ts("2024-03-01T15:00:00Z")
	data := bi5(t, tick{0, 10002, 10000}, tick{1500, 9502, 9498})

	src, err := NewBI5Marks(bytes.NewReader(data), "ABC", hour.Add(20*time.Minute), 2)
	require.NoError(t, err)
	evs := collect(t, src)
	require.Len(t, evs, 2)

	assert.Equal(t, Mark, evs[0].Kind)
	assert.Equal(t, "ABC", evs[0].Instrument)
	assert.Equal(t, hour, evs[0].Time)
	assert.InDelta(t, 100.01, evs[0].Price, 1e-9)
	assert.Equal(t, hour.Add(1500*time.Millisecond), evs[1].Time)
	assert.InDelta(t, 95.0, evs[1].Price, 1e-9)
}

func TestBI5Errors(t *testing.T) {
	t.Parallel()

	_, err := NewBI5Marks(strings.NewReader("not lzma"), "ABC", time.Time{}, 5)
	assert.Error(t, err)

	// a truncated record
	data := bi5(t, tick{0, 1, 1})
	var short bytes.Buffer
	w, err := lzma.NewWriter(&short)
	require.NoError(t, err)
	_, err = w.Write(make([]byte, bi5RecordSize-4))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	src, err := NewBI5Marks(bytes.NewReader(short.Bytes()), "ABC", time.Time{}, 5)
	require.NoError(t, err)
	_, _, err = src.Next()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "15h_ticks.bi5")
	require.NoError(t, os.WriteFile(path, data, 0644))
	f, err := OpenBI5(path, "ABC", time.Time{}, 5)
	require.NoError(t, err)
	assert.Len(t, collect(t, f), 1)
	assert.NoError(t, f.Close())

	_, err = OpenBI5(filepath.Join(t.TempDir(), "missing.bi5"), "ABC", time.Time{}, 5)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	ticks, err := NewBI5Marks(bytes.NewReader(bi5(t,
		tick{0, 9600, 9600},             // 15:00:00
		tick{3_600_000 - 1, 9700, 9700}, // 15:59:59.999
	)), "ABC", ts("2024-03-01T15:00:00Z"), 2)
	require.NoError(t, err)

	csvFeed := NewCSVFeed(strings.NewReader(fills), time.Time{}, time.Time{})
	evs := collect(t, Merge(csvFeed, ticks))
	require.Len(t, evs, 7)
	for i := 1; i < len(evs); i++ {
		assert.False(t, evs[i].Time.Before(evs[i-1].Time), "event %d out of order", i)
	}
	// the CSV mark at 15:00 wins the tie
	assert.Equal(t, 95.0, evs[1].Price)
	assert.Equal(t, 96.0, evs[2].Price)
	assert.Equal(t, 97.0, evs[3].Price)

	assert.Empty(t, collect(t, Merge()))
}

func TestRunnerWithTicks(t *testing.T) {
	t.Parallel()

	ticks, err := NewBI5Marks(bytes.NewReader(bi5(t, tick{600_000, 9000, 9000}, tick{1_200_000, 12000, 12000})),
		"ABC", ts("2024-03-01T15:00:00Z"), 2)
	require.NoError(t, err)

	r := newRunner(t, nil)
	s, err := r.Run(context.Background(), Merge(NewCSVFeed(strings.NewReader(fills), time.Time{}, time.Time{}), ticks))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Marks)

	rt := r.Portfolio.Performance().Roundtrips().Roundtrips()[0]
	assert.Equal(t, 90.0, rt.LowestPrice())
	assert.Equal(t, 120.0, rt.HighestPrice())
}
