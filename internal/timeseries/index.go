package timeseries

import (
	"fmt"
	"strings"
	"time"
)

// PVGISLayout is the timestamp format of PVGIS hourly exports (20160101:0010).
const PVGISLayout = "20060102:1504"

// DefaultLayouts are tried in order when ParseIndex gets no explicit layouts.
var DefaultLayouts = []string{
	time.DateTime,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	PVGISLayout,
	"02/01/2006 15:04",
}

// ParseIndex converts textual timestamps to times in UTC. The first layout
// that parses a value is used for it. Any failure is ErrMalformedIndex.
func ParseIndex(raw []string, layouts ...string) ([]time.Time, error) {
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	out := make([]time.Time, len(raw))
	for i, s := range raw {
		ts, err := parseOne(strings.TrimSpace(s), layouts)
		if err != nil {
			return nil, fmt.Errorf("row %d %q: %w", i, s, ErrMalformedIndex)
		}
		out[i] = ts
	}
	return out, nil
}

func parseOne(s string, layouts []string) (time.Time, error) {
	var lastErr error
	for _, l := range layouts {
		ts, err := time.ParseInLocation(l, s, time.UTC)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
