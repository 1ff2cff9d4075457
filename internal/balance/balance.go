// Package balance splits the hourly load-minus-production balance into
// grid imports and exports.
package balance

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var ErrLengthMismatch = errors.New("load and production lengths differ")

// Flow is the energy crossing the meter in one hour. KWh is always >= 0.
type Flow struct {
	Hour int
	KWh  float64
}

// Result is the balance of one typical year.
// Balance[h] = load[h] - production[h]; positive hours are imported,
// negative hours exported (stored as positive magnitudes).
type Result struct {
	Balance  []float64
	Imported []Flow
	Exported []Flow
}

// Compute builds the balance of two aligned hourly series in kWh.
func Compute(load, production []float64) (Result, error) {
	if len(load) != len(production) {
		return Result{}, fmt.Errorf("%d load hours, %d production hours: %w", len(load), len(production), ErrLengthMismatch)
	}
	bal := make([]float64, len(load))
	floats.SubTo(bal, load, production)

	res := Result{Balance: bal}
	for h, b := range bal {
		switch {
		case b > 0:
			res.Imported = append(res.Imported, Flow{Hour: h, KWh: b})
		case b < 0:
			res.Exported = append(res.Exported, Flow{Hour: h, KWh: -b})
		}
	}
	return res, nil
}

// Total is the net annual balance.
func (r Result) Total() float64 { return floats.Sum(r.Balance) }

func (r Result) ImportedTotal() float64 { return sumFlows(r.Imported) }

func (r Result) ExportedTotal() float64 { return sumFlows(r.Exported) }

// ImportedAt returns a dense hourly view of imports, zero where nothing was imported.
func (r Result) ImportedAt() []float64 { return dense(r.Imported, len(r.Balance)) }

// ExportedAt returns a dense hourly view of exports.
func (r Result) ExportedAt() []float64 { return dense(r.Exported, len(r.Balance)) }

func sumFlows(fs []Flow) float64 {
	total := 0.0
	for _, f := range fs {
		total += f.KWh
	}
	return total
}

func dense(fs []Flow, n int) []float64 {
	out := make([]float64, n)
	for _, f := range fs {
		out[f.Hour] = f.KWh
	}
	return out
}
