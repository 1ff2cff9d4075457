// Package production converts plane-of-array irradiance into hourly AC energy
// through a performance-ratio chain.
package production

import (
	"errors"
	"fmt"
	"time"

	"pv-sizing/internal/model"
	"pv-sizing/internal/timeseries"
)

// Model is a PV array: Count identical panels behind one inverter.
type Model struct {
	Panel    Panel
	Count    int
	Inverter Inverter
	Fresnel  Fresnel
	Losses   Losses
}

// New returns a model with the default inverter, Fresnel table and losses.
func New(panel Panel, count int) Model {
	return Model{
		Panel:    panel,
		Count:    count,
		Inverter: DefaultInverter(),
		Fresnel:  DefaultFresnel(),
		Losses:   DefaultLosses(),
	}
}

func (m Model) Validate() error {
	if m.Count <= 0 {
		return errors.New("panel count must be > 0")
	}
	if err := m.Panel.Validate(); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	if err := m.Inverter.Validate(); err != nil {
		return fmt.Errorf("inverter: %w", err)
	}
	if err := m.Fresnel.Validate(); err != nil {
		return err
	}
	return m.Losses.Validate()
}

// PeakPowerKW is the installed DC capacity.
func (m Model) PeakPowerKW() float64 {
	return m.Panel.PeakPowerW * float64(m.Count) / 1000
}

// CellTemperature estimates the cell temperature from ambient temperature
// and irradiance with the NOCT model.
func CellTemperature(t2m, irr, tnoct float64) float64 {
	return t2m + irr*(tnoct-20)/800
}

// Hour evaluates the performance-ratio chain for one record.
func (m Model) Hour(r model.Irradiance) model.Production {
	irr := r.Irr()
	tCell := CellTemperature(r.T2m, irr, m.Panel.TNOCT)

	p := model.Production{
		Time:           r.Time,
		TCell:          tCell,
		PRTemp:         1 + m.Panel.Gamma/100*(tCell-25),
		PRFresnel:      m.Fresnel.Mean(),
		PRDC:           m.Losses.DC,
		PRInverter:     m.Inverter.EuropeanEfficiency() / 100,
		PRAvailability: m.Losses.Availability,
		PRAC:           m.Losses.AC,
	}
	p.PR = p.PRTemp * p.PRFresnel * p.PRDC * p.PRInverter * p.PRAvailability * p.PRAC
	p.Wh = p.PR * irr * m.Panel.PeakPowerW * float64(m.Count) / 1000
	return p
}

// Run evaluates every hour of series. It does not aggregate; the caller
// annualizes the result.
func (m Model) Run(series model.IrradianceSeries) ([]model.Production, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	out := make([]model.Production, len(series))
	for i, r := range series {
		out[i] = m.Hour(r)
	}
	return out, nil
}

// Column names of production tables.
const (
	ColumnWh  = "Wh"
	ColumnKWh = "kWh"
	ColumnMWh = "MWh"
	ColumnPR  = "PR"
	ColumnT   = "T_cell"
)

// Table lays out a production run as a time-indexed table for annualizing.
func Table(prods []model.Production) (timeseries.Table, error) {
	n := len(prods)
	times := make([]time.Time, n)
	tCell, pr := make([]float64, n), make([]float64, n)
	wh, kwh, mwh := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, p := range prods {
		times[i] = p.Time
		tCell[i] = p.TCell
		pr[i] = p.PR
		wh[i] = p.Wh
		kwh[i] = p.KWh()
		mwh[i] = p.MWh()
	}
	return timeseries.NewTable(times,
		[]string{ColumnT, ColumnPR, ColumnWh, ColumnKWh, ColumnMWh},
		tCell, pr, wh, kwh, mwh)
}
