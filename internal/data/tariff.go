package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"pv-sizing/internal/tariff"
	"pv-sizing/internal/timeseries"
)

// LoadTariffFile reads an hourly price curve from disk.
func LoadTariffFile(path string) (tariff.Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return tariff.Curve{}, err
	}
	defer f.Close()
	return ParseTariffCSV(f)
}

// ParseTariffCSV reads "hour,price" rows. The hour column is either an hour
// of day (0..23) or a timestamp; the first row sets the curve start hour.
// The curve must have exactly 24 rows.
func ParseTariffCSV(r io.Reader) (tariff.Curve, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	if _, err := cr.Read(); err != nil {
		return tariff.Curve{}, fmt.Errorf("read header: %w", err)
	}
	var prices []float64
	start := -1
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tariff.Curve{}, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) < 2 {
			return tariff.Curve{}, fmt.Errorf("line %d: want hour,price", line)
		}
		if start < 0 {
			h, err := hourOf(rec[0])
			if err != nil {
				return tariff.Curve{}, fmt.Errorf("line %d: %w", line, err)
			}
			start = h
		}
		p, err := parseDecimalComma(rec[1])
		if err != nil {
			return tariff.Curve{}, fmt.Errorf("line %d: invalid price %q", line, rec[1])
		}
		prices = append(prices, p)
	}
	if start < 0 {
		start = 0
	}
	return tariff.NewCurve(prices, start)
}

func hourOf(s string) (int, error) {
	s = strings.TrimSpace(s)
	if h, err := strconv.Atoi(s); err == nil {
		return h, nil
	}
	ts, err := timeseries.ParseIndex([]string{s})
	if err != nil {
		return 0, err
	}
	return ts[0].Hour(), nil
}
