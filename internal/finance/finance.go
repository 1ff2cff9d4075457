// Package finance projects the yearly cashflow of a PV installation and
// derives NPV and IRR from it.
package finance

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultYears        = 25
	DefaultOMPercent    = 0.02
	DefaultInflation    = 0.04
	DefaultDiscountRate = 0.02
	DefaultStartYear    = 1
)

var (
	// ErrUnsupported is returned for inputs the projection does not model.
	ErrUnsupported = errors.New("unsupported financial input")
	// ErrNoConvergence is returned when a cashflow has no internal rate of return.
	ErrNoConvergence = errors.New("irr did not converge")
)

// Inputs drive one projection.
// OMPercent is the yearly O&M cost as a fraction of the initial investment;
// it also serves as the O&M escalation rate. StartYear is the label of the
// first row and the exponent used to discount it.
type Inputs struct {
	InitialInvestment float64
	OMPercent         float64
	Years             int
	Inflation         float64
	DiscountRate      float64
	StartYear         int
	// IBI is a property-tax rebate. Any non-nil value is rejected.
	IBI *float64
}

// DefaultInputs returns the reference assumptions for an investment.
func DefaultInputs(initialInvestment float64) Inputs {
	return Inputs{
		InitialInvestment: initialInvestment,
		OMPercent:         DefaultOMPercent,
		Years:             DefaultYears,
		Inflation:         DefaultInflation,
		DiscountRate:      DefaultDiscountRate,
		StartYear:         DefaultStartYear,
	}
}

func (in Inputs) Validate() error {
	if in.IBI != nil {
		return fmt.Errorf("ibi: %w", ErrUnsupported)
	}
	if in.Years <= 0 {
		return errors.New("years must be > 0")
	}
	if in.InitialInvestment < 0 {
		return errors.New("initial investment must be >= 0")
	}
	if in.DiscountRate <= -1 {
		return errors.New("discount rate must be > -1")
	}
	return nil
}

// Row is one year of the cashflow table.
type Row struct {
	Year        int     `json:"year"`
	Initial     float64 `json:"initial_investment"`
	OM          float64 `json:"operation_maintenance"`
	Savings     float64 `json:"savings"`
	Cashflow    float64 `json:"cashflow"`
	Accumulated float64 `json:"accumulated_cashflow"`
}

// Projection is the full cashflow table with its summary metrics.
// IRR is NaN when IRRDefined is false.
type Projection struct {
	Rows       []Row
	NPV        float64
	IRR        float64
	IRRDefined bool
}

// Cashflows returns the Cashflow column.
func (p *Projection) Cashflows() []float64 {
	out := make([]float64, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.Cashflow
	}
	return out
}

// PaybackYear is the first year whose accumulated cashflow is non-negative.
func (p *Projection) PaybackYear() (int, bool) {
	for _, r := range p.Rows {
		if r.Accumulated >= 0 {
			return r.Year, true
		}
	}
	return 0, false
}

// Project builds the cashflow table for a first-year saving.
func Project(in Inputs, savings float64) (*Projection, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rows := make([]Row, in.Years)
	acc := 0.0
	for k := range rows {
		y := in.StartYear + k
		r := Row{
			Year:    y,
			Savings: savings * math.Pow(1+in.Inflation, float64(k)),
			OM:      in.InitialInvestment * in.OMPercent * math.Pow(1+in.OMPercent, float64(k)),
		}
		if k == 0 {
			r.Initial = in.InitialInvestment
		}
		r.Cashflow = -r.Initial - r.OM + r.Savings
		acc += r.Cashflow
		r.Accumulated = acc
		rows[k] = r
	}

	p := &Projection{Rows: rows}
	cfs := p.Cashflows()
	p.NPV = NPV(in.DiscountRate, cfs, in.StartYear)

	irr, err := IRR(cfs)
	switch {
	case err == nil:
		p.IRR, p.IRRDefined = irr, true
	case errors.Is(err, ErrNoConvergence):
		p.IRR = math.NaN()
	default:
		return nil, err
	}
	return p, nil
}

// NPV discounts cashflows at rate; cashflows[k] is discounted by
// (1+rate)^(startYear+k).
func NPV(rate float64, cashflows []float64, startYear int) float64 {
	total := 0.0
	for k, cf := range cashflows {
		total += cf / math.Pow(1+rate, float64(startYear+k))
	}
	return total
}

// InitialInvestment prices an installation. installationPerc is both added
// to the base and applied as a markup on it.
func InitialInvestment(panels int, pricePanel, priceInverter, additional, installationPerc float64) float64 {
	base := float64(panels)*pricePanel + priceInverter + installationPerc + additional
	return base + base*installationPerc
}
