package premarket

import (
	"fmt"
	"time"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/config"
)

// Window is a local-exchange time-of-day range [Start, End) before the open
type Window struct {
	Location *time.Location
	Start    time.Duration // offset from local midnight
	End      time.Duration
}

// DefaultWindow is 04:00-09:30 New York time
func DefaultWindow() Window {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}
	return Window{
		Location: loc,
		Start:    4 * time.Hour,
		End:      9*time.Hour + 30*time.Minute,
	}
}

// WindowFromConfig builds the window from PREMARKET_* settings
func WindowFromConfig(cfg config.PremarketConfig) (Window, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Window{}, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	start, err := config.ParseClock(cfg.Start)
	if err != nil {
		return Window{}, err
	}
	end, err := config.ParseClock(cfg.End)
	if err != nil {
		return Window{}, err
	}
	if end <= start {
		return Window{}, fmt.Errorf("premarket window end %s is not after start %s", cfg.End, cfg.Start)
	}
	return Window{Location: loc, Start: start, End: end}, nil
}

// Bounds returns the absolute window on the exchange-local date of day
func (w Window) Bounds(day time.Time) (start, end time.Time) {
	y, m, d := day.In(w.Location).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, w.Location)
	return midnight.Add(w.Start), midnight.Add(w.End)
}

// Contains reports whether t falls inside the window on its own local date
func (w Window) Contains(t time.Time) bool {
	start, end := w.Bounds(t)
	return !t.Before(start) && t.Before(end)
}

// FilterWindow keeps the bars of s inside the window on day's local date
func FilterWindow(s contracts.Series, day time.Time, w Window) contracts.Series {
	start, end := w.Bounds(day)
	return s.Between(start, end)
}
