package replay

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ulikunitz/xz/lzma"
)

// bi5RecordSize is one Dukascopy tick: ms offset, ask, bid (points) and
// two float32 volumes, big endian.
const bi5RecordSize = 20

// BI5Marks turns one hour of Dukascopy ticks into mark events at the
// bid/ask midpoint.
type BI5Marks struct {
	c          io.Closer
	r          io.Reader
	instrument string
	hour       time.Time
	scale      float64
	buf        [bi5RecordSize]byte
}

// NewBI5Marks reads LZMA-compressed ticks from r. hour is the UTC start of
// the file's hour; prices carry decimals places, e.g. 5 for EURUSD.
func NewBI5Marks(r io.Reader, instrument string, hour time.Time, decimals int) (*BI5Marks, error) {
	zr, err := lzma.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("bi5 %s: %w", instrument, err)
	}
	return &BI5Marks{
		r:          zr,
		instrument: instrument,
		hour:       hour.UTC().Truncate(time.Hour),
		scale:      math.Pow10(decimals),
	}, nil
}

// OpenBI5 opens a .bi5 file as a mark source. Close releases the file.
func OpenBI5(path, instrument string, hour time.Time, decimals int) (*BI5Marks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := NewBI5Marks(f, instrument, hour, decimals)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	m.c = f
	return m, nil
}

func (m *BI5Marks) Close() error {
	if m.c != nil {
		return m.c.Close()
	}
	return nil
}

func (m *BI5Marks) Next() (Event, bool, error) {
	_, err := io.ReadFull(m.r, m.buf[:])
	if errors.Is(err, io.EOF) {
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, fmt.Errorf("bi5 %s: %w", m.instrument, err)
	}
	ms := binary.BigEndian.Uint32(m.buf[0:4])
	ask := float64(binary.BigEndian.Uint32(m.buf[4:8])) / m.scale
	bid := float64(binary.BigEndian.Uint32(m.buf[8:12])) / m.scale
	return Event{
		Time:       m.hour.Add(time.Duration(ms) * time.Millisecond),
		Instrument: m.instrument,
		Kind:       Mark,
		Price:      (ask + bid) / 2,
	}, true, nil
}

// Merge interleaves time-ordered sources into one time-ordered source.
// On equal times the earlier source goes first.
func Merge(sources ...Source) Source {
	return &merged{sources: sources, heads: make([]*Event, len(sources))}
}

type merged struct {
	sources []Source
	heads   []*Event
	done    []bool
}

func (m *merged) Next() (Event, bool, error) {
	if m.done == nil {
		m.done = make([]bool, len(m.sources))
	}
	best := -1
	for i, src := range m.sources {
		if m.done[i] {
			continue
		}
		if m.heads[i] == nil {
			ev, ok, err := src.Next()
			if err != nil {
				return Event{}, false, err
			}
			if !ok {
				m.done[i] = true
				continue
			}
			m.heads[i] = &ev
		}
		if best < 0 || m.heads[i].Time.Before(m.heads[best].Time) {
			best = i
		}
	}
	if best < 0 {
		return Event{}, false, nil
	}
	ev := *m.heads[best]
	m.heads[best] = nil
	return ev, true, nil
}
