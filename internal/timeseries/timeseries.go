// Package timeseries reduces multi-year hourly series to a single typical year.
//
// Every profile is keyed on the 2019 calendar (a non-leap year). Rows falling
// on 29 February are dropped before grouping, so a typical year always has
// 8760 hourly slots.
package timeseries

import (
	"errors"
	"fmt"
	"time"

	"pv-sizing/internal/model"

	"gonum.org/v1/gonum/stat"
)

const (
	// ReferenceYear is the calendar year typical-year profiles are indexed on.
	ReferenceYear = 2019
	// HoursPerYear is the number of slots in a typical year.
	HoursPerYear = 8760
)

var (
	ErrMalformedIndex = errors.New("malformed timestamp index")
	ErrIncompleteYear = errors.New("series does not cover every hour of the year")
	ErrIncompleteDay  = errors.New("series does not cover every hour of the day")
	ErrUnordered      = model.ErrUnordered
	ErrShape          = errors.New("column length does not match index length")
)

// Table is a set of numeric columns sharing one time index.
// Values[c][r] is the value of column c at Times[r].
type Table struct {
	Columns []string
	Times   []time.Time
	Values  [][]float64
}

// NewTable builds a validated table.
func NewTable(times []time.Time, columns []string, values ...[]float64) (Table, error) {
	t := Table{Columns: columns, Times: times, Values: values}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

func (t Table) Len() int { return len(t.Times) }

func (t Table) Validate() error {
	if len(t.Columns) != len(t.Values) {
		return fmt.Errorf("%d column names for %d columns: %w", len(t.Columns), len(t.Values), ErrShape)
	}
	for c, col := range t.Values {
		if len(col) != len(t.Times) {
			return fmt.Errorf("column %q has %d rows, index has %d: %w", t.Columns[c], len(col), len(t.Times), ErrShape)
		}
	}
	for i := 1; i < len(t.Times); i++ {
		if !t.Times[i].After(t.Times[i-1]) {
			return fmt.Errorf("row %d (%s): %w", i, t.Times[i].Format(time.DateTime), ErrUnordered)
		}
	}
	return nil
}

// Column returns the named column.
func (t Table) Column(name string) ([]float64, bool) {
	for i, c := range t.Columns {
		if c == name {
			return t.Values[i], true
		}
	}
	return nil, false
}

// IsLeapDay reports whether ts falls on 29 February.
func IsLeapDay(ts time.Time) bool {
	return ts.Month() == time.February && ts.Day() == 29
}

// DropLeapDays returns a copy of t without rows on 29 February.
func DropLeapDays(t Table) Table {
	keep := make([]int, 0, len(t.Times))
	for i, ts := range t.Times {
		if !IsLeapDay(ts) {
			keep = append(keep, i)
		}
	}
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Times:   make([]time.Time, len(keep)),
		Values:  make([][]float64, len(t.Values)),
	}
	for r, i := range keep {
		out.Times[r] = t.Times[i]
	}
	for c, col := range t.Values {
		out.Values[c] = make([]float64, len(keep))
		for r, i := range keep {
			out.Values[c][r] = col[i]
		}
	}
	return out
}

// ReferenceTimes returns the 8760 hourly timestamps of the reference year.
func ReferenceTimes() []time.Time {
	start := time.Date(ReferenceYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, HoursPerYear)
	for h := range out {
		out[h] = start.Add(time.Duration(h) * time.Hour)
	}
	return out
}

// Slot maps a timestamp to its hour-of-year position in the reference year,
// ignoring year and minutes. 29 February has no slot.
func Slot(ts time.Time) (int, bool) {
	if IsLeapDay(ts) {
		return 0, false
	}
	ref := time.Date(ReferenceYear, ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, time.UTC)
	start := time.Date(ReferenceYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(ref.Sub(start) / time.Hour), true
}

// Annualize collapses a multi-year table into one typical year: rows are
// grouped by (month, day, hour) and each column is averaged. The result is
// indexed on ReferenceTimes. Missing slots fail with ErrIncompleteYear.
func Annualize(t Table) (Table, error) {
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	t = DropLeapDays(t)
	slots := make([]int, len(t.Times))
	for i, ts := range t.Times {
		slots[i], _ = Slot(ts)
	}

	ref := ReferenceTimes()
	if missing := firstGap(slots, HoursPerYear); missing >= 0 {
		return Table{}, fmt.Errorf("slot %s: %w", ref[missing].Format("01-02 15:04"), ErrIncompleteYear)
	}

	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Times:   ref,
		Values:  make([][]float64, len(t.Values)),
	}
	for c, col := range t.Values {
		out.Values[c] = groupMean(col, slots, HoursPerYear)
	}
	return out, nil
}

// DailyProfile is the mean value of each column per hour of day.
// Values[c][h] is column c at hour h.
type DailyProfile struct {
	Columns []string
	Values  [][]float64
}

// Column returns the 24 hourly means of the named column.
func (d DailyProfile) Column(name string) ([]float64, bool) {
	for i, c := range d.Columns {
		if c == name {
			return d.Values[i], true
		}
	}
	return nil, false
}

// HourOfDayAverage averages every column by hour of day across all rows.
func HourOfDayAverage(t Table) (DailyProfile, error) {
	if err := t.Validate(); err != nil {
		return DailyProfile{}, err
	}
	hours := make([]int, len(t.Times))
	for i, ts := range t.Times {
		hours[i] = ts.Hour()
	}
	if missing := firstGap(hours, 24); missing >= 0 {
		return DailyProfile{}, fmt.Errorf("hour %02d: %w", missing, ErrIncompleteDay)
	}
	out := DailyProfile{
		Columns: append([]string(nil), t.Columns...),
		Values:  make([][]float64, len(t.Values)),
	}
	for c, col := range t.Values {
		out.Values[c] = groupMean(col, hours, 24)
	}
	return out, nil
}

// firstGap returns the first bucket in [0, n) no key falls into, or -1.
func firstGap(keys []int, n int) int {
	seen := make([]bool, n)
	for _, k := range keys {
		seen[k] = true
	}
	for k, ok := range seen {
		if !ok {
			return k
		}
	}
	return -1
}

// groupMean averages values into n buckets keyed by keys.
// Callers check coverage with firstGap first.
func groupMean(values []float64, keys []int, n int) []float64 {
	buckets := make([][]float64, n)
	for i, v := range values {
		buckets[keys[i]] = append(buckets[keys[i]], v)
	}
	out := make([]float64, n)
	for k, b := range buckets {
		out[k] = stat.Mean(b, nil)
	}
	return out
}
