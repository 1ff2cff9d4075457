package tariff

import (
	"fmt"
	"strings"
)

// Window prices the daily period [Start, End) at Price.
// Times are "HH:MM"; a window with Start > End wraps across midnight and
// Start == End is empty.
type Window struct {
	Name  string
	Start string
	End   string
	Price float64
}

// CurveFromWindows builds a 24-hour curve starting at midnight. Each hour
// takes the price of the first window containing its start minute, or base.
func CurveFromWindows(windows []Window, base float64) (Curve, error) {
	type span struct{ start, end int }
	spans := make([]span, len(windows))
	for i, w := range windows {
		s, err := parseHHMM(w.Start)
		if err != nil {
			return Curve{}, fmt.Errorf("window %d: %w", i, err)
		}
		e, err := parseHHMM(w.End)
		if err != nil {
			return Curve{}, fmt.Errorf("window %d: %w", i, err)
		}
		spans[i] = span{s, e}
	}

	prices := make([]float64, 24)
	for h := range prices {
		prices[h] = base
		for i, sp := range spans {
			if inWindow(h*60, sp.start, sp.end) {
				prices[h] = windows[i].Price
				break
			}
		}
	}
	return NewCurve(prices, 0)
}

func parseHHMM(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0], "%d", &h); err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &m); err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	// 24:00 closes a window at midnight.
	if h == 24 && m == 0 {
		return 0, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// inWindow checks whether tMins is in [start, end) on a 24h clock.
func inWindow(tMins, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return tMins >= start && tMins < end
	}
	return tMins >= start || tMins < end
}
