package sizing

import (
	"time"

	"pv-sizing/internal/balance"
	"pv-sizing/internal/battery"
	"pv-sizing/internal/finance"
	"pv-sizing/internal/tariff"
	"pv-sizing/internal/timeseries"
)

// LedgerRow is one hour of the typical year.
type LedgerRow struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`

	LoadKWh float64 `json:"load_kwh"`

	Irr   float64 `json:"irr"`
	T2m   float64 `json:"t2m"`
	TCell float64 `json:"t_cell"`
	PR    float64 `json:"pr"`

	ProductionKWh float64 `json:"production_kwh"`
	BalanceKWh    float64 `json:"balance_kwh"`
	ImportedKWh   float64 `json:"imported_kwh"`
	ExportedKWh   float64 `json:"exported_kwh"`

	BuyPrice     float64 `json:"buy_price"`
	ImportCost   float64 `json:"import_cost"`
	ExportCredit float64 `json:"export_credit"`
}

// Result is everything a run produces.
type Result struct {
	Load       timeseries.Table
	Production timeseries.Table
	Irradiance timeseries.Table

	DailyLoad       timeseries.DailyProfile
	DailyProduction timeseries.DailyProfile

	// Typical-year hourly and hour-of-day columns in kWh.
	LoadKWh            []float64
	ProductionKWh      []float64
	DailyLoadKWh       []float64
	DailyProductionKWh []float64

	Balance    balance.Result
	Costs      tariff.Costs
	Projection *finance.Projection

	PeakPowerKW       float64
	InitialInvestment float64
	DailyLoadWh       float64
	Battery           *battery.Sizing

	Ledger []LedgerRow
}

// Summary is the headline view of a run.
type Summary struct {
	PeakPowerKW       float64         `json:"peak_power_kw"`
	LoadKWh           float64         `json:"load_kwh"`
	ProductionKWh     float64         `json:"production_kwh"`
	ImportedKWh       float64         `json:"imported_kwh"`
	ExportedKWh       float64         `json:"exported_kwh"`
	SelfConsumedKWh   float64         `json:"self_consumed_kwh"`
	CostCurrent       float64         `json:"cost_current"`
	CostWithPV        float64         `json:"cost_with_pv"`
	Compensation      float64         `json:"compensation"`
	Savings           float64         `json:"savings"`
	InitialInvestment float64         `json:"initial_investment"`
	NPV               float64         `json:"npv"`
	IRR               *float64        `json:"irr,omitempty"`
	PaybackYear       *int            `json:"payback_year,omitempty"`
	DailyLoadWh       float64         `json:"daily_load_wh"`
	Battery           *battery.Sizing `json:"battery,omitempty"`
}
