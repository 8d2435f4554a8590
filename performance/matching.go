package performance

import (
	"fmt"
	"strings"
)

// Matching selects which open execution an offsetting execution closes.
type Matching int

const (
	// FIFO closes the oldest open execution first.
	FIFO Matching = iota
	// LIFO closes the newest open execution first.
	LIFO
)

func (m Matching) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	}
	return fmt.Sprintf("matching(%d)", int(m))
}

func ParseMatching(s string) (Matching, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo", "":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	}
	return 0, fmt.Errorf("unknown roundtrip matching %q", s)
}
