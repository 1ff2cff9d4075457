package models

import "pv-sizing/internal/config"

// ProjectionRequest is the body of POST /api/v1/projections.
// Data paths inside the scenario are relative to the server data directory.
type ProjectionRequest struct {
	Name     string            `json:"name,omitempty"`
	Scenario config.Config     `json:"scenario" binding:"required"`
	Options  ProjectionOptions `json:"options,omitempty"`
}

// ProjectionOptions contains optional response parameters
type ProjectionOptions struct {
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
	// Persist stores the result and returns its ID. Defaults to true.
	Persist *bool `json:"persist,omitempty"`
}

// CompareRequest runs one scenario under several variations.
type CompareRequest struct {
	Scenario   config.Config `json:"scenario" binding:"required"`
	Variations []Variation   `json:"variations" binding:"required,min=1"`
}

// Variation overrides parts of the base scenario. Zero values keep the base.
type Variation struct {
	Name   string               `json:"name" binding:"required"`
	Panels int                  `json:"panels,omitempty"`
	Tariff *config.TariffConfig `json:"tariff,omitempty"`
	// Battery replaces the base battery bank when set.
	Battery *config.BatteryConfig `json:"battery,omitempty"`
}

// SweepRequest evaluates the scenario over a panel-count range.
type SweepRequest struct {
	Scenario config.Config `json:"scenario" binding:"required"`
	Min      int           `json:"min" binding:"required,min=1,max=10000"`
	Max      int           `json:"max" binding:"required,min=1,max=10000"`
	Step     int           `json:"step,omitempty" binding:"min=0"`
}

// BatterySizingRequest sizes a bank from either a daily energy or the 24
// hour-of-day mean loads in kWh.
type BatterySizingRequest struct {
	DailyLoadWh float64               `json:"daily_load_wh,omitempty"`
	HourlyLoad  []float64             `json:"hourly_load_kwh,omitempty"`
	Bank        *config.BatteryConfig `json:"bank,omitempty"`
}
