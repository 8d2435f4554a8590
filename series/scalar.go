// Package series holds the time-ordered scalar series every ledger,
// position and performance tracker is built on.
package series

import (
	"sort"
	"time"
)

// Point is a single sample of a series.
type Point struct {
	Time  time.Time
	Value float64
}

// Scalar is an append-mostly mapping from timestamp to value.
// Timestamps are kept strictly increasing in storage order.
// The zero value is an empty series ready to use.
type Scalar struct {
	points []Point
}

// IsEmpty reports whether the series has no samples.
func (s *Scalar) IsEmpty() bool { return len(s.points) == 0 }

// Len returns the number of samples.
func (s *Scalar) Len() int { return len(s.points) }

// Current returns the latest sample.
func (s *Scalar) Current() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// CurrentValue returns the latest value, or 0 when the series is empty.
func (s *Scalar) CurrentValue() float64 {
	if len(s.points) == 0 {
		return 0
	}
	return s.points[len(s.points)-1].Value
}

// At returns the value of the last sample at or before t, or 0 if none.
func (s *Scalar) At(t time.Time) float64 {
	// first index with Time > t
	i := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Time.After(t)
	})
	if i == 0 {
		return 0
	}
	return s.points[i-1].Value
}

// History returns a copy of all samples in time order.
func (s *Scalar) History() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Add sets the value effective at t. A sample at an existing timestamp is
// replaced; samples after t are left untouched.
func (s *Scalar) Add(t time.Time, v float64) {
	n := len(s.points)
	if n == 0 || s.points[n-1].Time.Before(t) {
		s.points = append(s.points, Point{Time: t, Value: v})
		return
	}
	if s.points[n-1].Time.Equal(t) {
		s.points[n-1].Value = v
		return
	}

	i := s.search(t)
	if s.points[i].Time.Equal(t) {
		s.points[i].Value = v
		return
	}
	s.insert(i, Point{Time: t, Value: v})
}

// Accumulate adds v to the running total at t and shifts every later
// sample by v, so the series stays a correct cumulative total when a
// delta arrives out of order.
func (s *Scalar) Accumulate(t time.Time, v float64) {
	n := len(s.points)
	if n == 0 {
		s.points = append(s.points, Point{Time: t, Value: v})
		return
	}
	last := s.points[n-1]
	if last.Time.Before(t) {
		s.points = append(s.points, Point{Time: t, Value: last.Value + v})
		return
	}
	if last.Time.Equal(t) {
		s.points[n-1].Value += v
		return
	}

	i := s.search(t)
	if s.points[i].Time.Equal(t) {
		s.points[i].Value += v
	} else {
		prev := 0.0
		if i > 0 {
			prev = s.points[i-1].Value
		}
		s.insert(i, Point{Time: t, Value: prev + v})
	}
	for j := i + 1; j < len(s.points); j++ {
		s.points[j].Value += v
	}
}

// search returns the first index whose timestamp is not before t.
func (s *Scalar) search(t time.Time) int {
	return sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Time.Before(t)
	})
}

func (s *Scalar) insert(i int, p Point) {
	s.points = append(s.points, Point{})
	copy(s.points[i+1:], s.points[i:])
	s.points[i] = p
}
