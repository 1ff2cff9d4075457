// Package report renders projection charts as PNG.
package report

import (
	"errors"
	"fmt"
	"os"

	"pv-sizing/internal/finance"

	"github.com/vicanso/go-charts/v2"
)

// Chart kinds served by the API and written by the CLI.
const (
	KindDaily    = "daily"
	KindCashflow = "cashflow"
)

var ErrUnknownKind = errors.New("unknown chart kind")

// DailyChart plots the hour-of-day mean load against production (kWh).
func DailyChart(load, prod []float64) ([]byte, error) {
	if len(load) != 24 || len(prod) != 24 {
		return nil, fmt.Errorf("daily chart needs 24 hours, got %d load and %d production", len(load), len(prod))
	}
	hours := make([]string, 24)
	for h := range hours {
		hours[h] = fmt.Sprintf("%02d", h)
	}
	p, err := charts.LineRender(
		[][]float64{load, prod},
		charts.TitleTextOptionFunc("Typical day (kWh)"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: hours, BoundaryGap: charts.FalseFlag(), SplitNumber: 12}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{"Load", "Production"},
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(900),
		charts.HeightOptionFunc(500),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}

// CashflowChart plots the accumulated cashflow per year.
func CashflowChart(rows []finance.Row) ([]byte, error) {
	if len(rows) == 0 {
		return nil, errors.New("no cashflow rows")
	}
	years := make([]string, len(rows))
	acc := make([]float64, len(rows))
	for i, r := range rows {
		years[i] = fmt.Sprintf("%d", r.Year)
		acc[i] = r.Accumulated
	}
	p, err := charts.BarRender(
		[][]float64{acc},
		charts.TitleTextOptionFunc("Accumulated cashflow (€)"),
		charts.XAxisDataOptionFunc(years),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{"Accumulated cashflow"},
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(900),
		charts.HeightOptionFunc(500),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}

// Render builds the chart of the given kind.
func Render(kind string, load, prod []float64, rows []finance.Row) ([]byte, error) {
	switch kind {
	case "", KindDaily:
		return DailyChart(load, prod)
	case KindCashflow:
		return CashflowChart(rows)
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
}

// WritePNG writes a rendered chart to path.
func WritePNG(path string, png []byte) error {
	return os.WriteFile(path, png, 0o644)
}
