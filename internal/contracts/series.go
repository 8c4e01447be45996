package contracts

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Bar is one OHLCV sample for a fixed interval
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Series is an immutable, time-ascending, timestamp-unique run of bars.
// The zero value is an empty series.
type Series struct {
	bars []Bar
}

// NewSeries sorts bars ascending and drops duplicate timestamps (the last one wins)
func NewSeries(bars []Bar) Series {
	if len(bars) == 0 {
		return Series{}
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(b.Timestamp) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}

	return Series{bars: out}
}

// Len returns the number of bars
func (s Series) Len() int {
	return len(s.bars)
}

// Bars returns a copy of the underlying bars
func (s Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Latest returns the most recent bar
func (s Series) Latest() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// Previous returns the bar just before Latest
func (s Series) Previous() (Bar, bool) {
	if len(s.bars) < 2 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-2], true
}

// RequireLen fails when the series holds fewer than n bars
func (s Series) RequireLen(n int) error {
	if len(s.bars) < n {
		return fmt.Errorf("%w: need %d bars, have %d", ErrShortSeries, n, len(s.bars))
	}
	return nil
}

// Filter keeps the bars for which keep returns true
func (s Series) Filter(keep func(Bar) bool) Series {
	var out []Bar
	for _, b := range s.bars {
		if keep(b) {
			out = append(out, b)
		}
	}
	return Series{bars: out}
}

// Between keeps bars with from <= timestamp < to
func (s Series) Between(from, to time.Time) Series {
	return s.Filter(func(b Bar) bool {
		return !b.Timestamp.Before(from) && b.Timestamp.Before(to)
	})
}

// MarshalJSON encodes the series as a plain bar array
func (s Series) MarshalJSON() ([]byte, error) {
	if s.bars == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.bars)
}

// UnmarshalJSON decodes a bar array, re-establishing ordering invariants
func (s *Series) UnmarshalJSON(data []byte) error {
	var bars []Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return err
	}
	*s = NewSeries(bars)
	return nil
}
