// Package sizing runs the full pipeline: typical-year load and production,
// energy balance, tariff costs, cashflow projection and battery sizing.
package sizing

import (
	"errors"
	"fmt"

	"pv-sizing/internal/balance"
	"pv-sizing/internal/battery"
	"pv-sizing/internal/finance"
	"pv-sizing/internal/log"
	"pv-sizing/internal/model"
	"pv-sizing/internal/production"
	"pv-sizing/internal/tariff"
	"pv-sizing/internal/timeseries"

	"gonum.org/v1/gonum/floats"
)

// Irradiance table columns.
const (
	ColumnIrr = "Irr"
	ColumnT2m = "T2m"
	ColumnWS  = "WS10m"
)

// Inputs is one scenario.
type Inputs struct {
	Load       model.LoadSeries
	Irradiance model.IrradianceSeries
	Array      production.Model
	Pricing    tariff.Pricing
	Finance    finance.Inputs
	// Battery is sized when non-nil.
	Battery *model.BatteryBank
}

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run executes a scenario.
func (e *Engine) Run(in Inputs) (*Result, error) {
	if err := in.Load.Validate(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if err := in.Pricing.Validate(); err != nil {
		return nil, fmt.Errorf("tariff: %w", err)
	}
	if err := in.Finance.Validate(); err != nil {
		return nil, fmt.Errorf("finance: %w", err)
	}

	loadRaw, err := timeseries.NewTable(in.Load.Times(), []string{model.LoadColumn}, in.Load.Values())
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadYear, err := timeseries.Annualize(loadRaw)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	dailyLoad, err := timeseries.HourOfDayAverage(loadRaw)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	// Production is evaluated hour by hour on the raw series and only then
	// reduced to a typical year.
	prods, err := in.Array.Run(in.Irradiance)
	if err != nil {
		return nil, fmt.Errorf("production: %w", err)
	}
	prodRaw, err := production.Table(prods)
	if err != nil {
		return nil, fmt.Errorf("production: %w", err)
	}
	prodYear, err := timeseries.Annualize(prodRaw)
	if err != nil {
		return nil, fmt.Errorf("production: %w", err)
	}
	dailyProd, err := timeseries.HourOfDayAverage(prodRaw)
	if err != nil {
		return nil, fmt.Errorf("production: %w", err)
	}
	irrYear, err := timeseries.Annualize(irradianceTable(in.Irradiance))
	if err != nil {
		return nil, fmt.Errorf("irradiance: %w", err)
	}

	loadKWh, err := column(loadYear, model.LoadColumn)
	if err != nil {
		return nil, err
	}
	prodKWh, err := column(prodYear, production.ColumnKWh)
	if err != nil {
		return nil, err
	}
	dailyLoadKWh, err := dailyColumn(dailyLoad, model.LoadColumn)
	if err != nil {
		return nil, err
	}
	dailyProdKWh, err := dailyColumn(dailyProd, production.ColumnKWh)
	if err != nil {
		return nil, err
	}

	bal, err := balance.Compute(loadKWh, prodKWh)
	if err != nil {
		return nil, err
	}

	// Prices follow the typical year being priced, not the raw file.
	loadStart := loadYear.Times[0].Hour()
	costs, err := in.Pricing.Cost(loadKWh, loadStart, bal)
	if err != nil {
		return nil, fmt.Errorf("tariff: %w", err)
	}
	prices, err := in.Pricing.ImportPrices(len(loadKWh), loadStart)
	if err != nil {
		return nil, fmt.Errorf("tariff: %w", err)
	}

	proj, err := finance.Project(in.Finance, costs.Savings)
	if err != nil {
		return nil, fmt.Errorf("finance: %w", err)
	}

	dailyLoadWh, err := battery.DailyLoadWh(dailyLoadKWh)
	if err != nil {
		return nil, err
	}
	var batt *battery.Sizing
	if in.Battery != nil {
		s, err := battery.Size(dailyLoadWh, *in.Battery)
		if err != nil {
			return nil, fmt.Errorf("battery: %w", err)
		}
		batt = &s
	}

	res := &Result{
		Load:               loadYear,
		Production:         prodYear,
		Irradiance:         irrYear,
		DailyLoad:          dailyLoad,
		DailyProduction:    dailyProd,
		LoadKWh:            loadKWh,
		ProductionKWh:      prodKWh,
		DailyLoadKWh:       dailyLoadKWh,
		DailyProductionKWh: dailyProdKWh,
		Balance:            bal,
		Costs:              costs,
		Projection:         proj,
		PeakPowerKW:        in.Array.PeakPowerKW(),
		InitialInvestment:  in.Finance.InitialInvestment,
		DailyLoadWh:        dailyLoadWh,
		Battery:            batt,
	}
	if res.Ledger, err = buildLedger(res, prices, in.Pricing.SellPrice); err != nil {
		return nil, err
	}

	log.Debugw("sizing run complete",
		"panels", in.Array.Count,
		"production_kwh", floats.Sum(prodKWh),
		"savings", costs.Savings,
		"npv", proj.NPV)
	return res, nil
}

func buildLedger(res *Result, prices []float64, sell float64) ([]LedgerRow, error) {
	load, prod := res.LoadKWh, res.ProductionKWh
	tCell, err := column(res.Production, production.ColumnT)
	if err != nil {
		return nil, err
	}
	pr, err := column(res.Production, production.ColumnPR)
	if err != nil {
		return nil, err
	}
	irr, err := column(res.Irradiance, ColumnIrr)
	if err != nil {
		return nil, err
	}
	t2m, err := column(res.Irradiance, ColumnT2m)
	if err != nil {
		return nil, err
	}
	imported := res.Balance.ImportedAt()
	exported := res.Balance.ExportedAt()

	ledger := make([]LedgerRow, len(load))
	for h := range ledger {
		ledger[h] = LedgerRow{
			Index:         h,
			Time:          res.Load.Times[h],
			LoadKWh:       load[h],
			Irr:           irr[h],
			T2m:           t2m[h],
			TCell:         tCell[h],
			PR:            pr[h],
			ProductionKWh: prod[h],
			BalanceKWh:    res.Balance.Balance[h],
			ImportedKWh:   imported[h],
			ExportedKWh:   exported[h],
			BuyPrice:      prices[h],
			ImportCost:    imported[h] * prices[h],
			ExportCredit:  exported[h] * sell,
		}
	}
	return ledger, nil
}

// Summary reduces a result to its headline figures.
func (r *Result) Summary() Summary {
	s := Summary{
		PeakPowerKW:       r.PeakPowerKW,
		LoadKWh:           floats.Sum(r.LoadKWh),
		ProductionKWh:     floats.Sum(r.ProductionKWh),
		ImportedKWh:       r.Balance.ImportedTotal(),
		ExportedKWh:       r.Balance.ExportedTotal(),
		CostCurrent:       r.Costs.Current,
		CostWithPV:        r.Costs.WithPV,
		Compensation:      r.Costs.Compensation,
		Savings:           r.Costs.Savings,
		InitialInvestment: r.InitialInvestment,
		DailyLoadWh:       r.DailyLoadWh,
		Battery:           r.Battery,
	}
	s.SelfConsumedKWh = s.ProductionKWh - s.ExportedKWh
	if r.Projection != nil {
		s.NPV = r.Projection.NPV
		if r.Projection.IRRDefined {
			irr := r.Projection.IRR
			s.IRR = &irr
		}
		if y, ok := r.Projection.PaybackYear(); ok {
			s.PaybackYear = &y
		}
	}
	return s
}

func irradianceTable(s model.IrradianceSeries) timeseries.Table {
	irr := make([]float64, len(s))
	t2m := make([]float64, len(s))
	ws := make([]float64, len(s))
	for i, r := range s {
		irr[i] = r.Irr()
		t2m[i] = r.T2m
		ws[i] = r.WindSpeed
	}
	return timeseries.Table{
		Columns: []string{ColumnIrr, ColumnT2m, ColumnWS},
		Times:   s.Times(),
		Values:  [][]float64{irr, t2m, ws},
	}
}

var errMissingColumn = errors.New("missing column")

func column(t timeseries.Table, name string) ([]float64, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, errMissingColumn)
	}
	return col, nil
}

func dailyColumn(d timeseries.DailyProfile, name string) ([]float64, error) {
	col, ok := d.Column(name)
	if !ok {
		return nil, fmt.Errorf("daily %s: %w", name, errMissingColumn)
	}
	return col, nil
}

// DailyProfiles returns the hour-of-day mean load and production in kWh.
func (r *Result) DailyProfiles() (load, prod []float64) {
	return r.DailyLoadKWh, r.DailyProductionKWh
}
