package models

import (
	"time"

	"pv-sizing/internal/analysis"
	"pv-sizing/internal/battery"
	"pv-sizing/internal/config"
	"pv-sizing/internal/finance"
	"pv-sizing/internal/sizing"
	"pv-sizing/internal/store"
)

// ProjectionResponse represents the response from a projection run
type ProjectionResponse struct {
	ID        string             `json:"id,omitempty"`
	Status    string             `json:"status"`
	Name      string             `json:"name,omitempty"`
	CreatedAt *time.Time         `json:"created_at,omitempty"`
	Panels    int                `json:"panels"`
	Summary   sizing.Summary     `json:"summary"`
	Cashflow  []finance.Row      `json:"cashflow,omitempty"`
	Ledger    []sizing.LedgerRow `json:"ledger,omitempty"`
}

// FromRecord builds a response from a stored projection.
func FromRecord(r store.Record) ProjectionResponse {
	created := r.CreatedAt
	return ProjectionResponse{
		ID:        r.ID,
		Status:    "completed",
		Name:      r.Name,
		CreatedAt: &created,
		Panels:    r.Panels,
		Summary:   r.Summary,
		Cashflow:  r.Cashflow,
	}
}

// ProjectionListResponse is the body of GET /api/v1/projections.
type ProjectionListResponse struct {
	Projections []ProjectionResponse `json:"projections"`
}

// CashflowResponse is the body of GET /api/v1/projections/:id/cashflow.
type CashflowResponse struct {
	ID       string        `json:"id"`
	Cashflow []finance.Row `json:"cashflow"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name    string         `json:"name"`
	Panels  int            `json:"panels"`
	Summary sizing.Summary `json:"summary"`
}

// SweepResponse lists the sweep in panel order plus the best point.
type SweepResponse struct {
	Points []analysis.Point `json:"points"`
	Best   *analysis.Point  `json:"best,omitempty"`
}

// BatterySizingResponse is the body of POST /api/v1/battery/sizing.
type BatterySizingResponse struct {
	Bank   BankSpecs      `json:"bank"`
	Sizing battery.Sizing `json:"sizing"`
}

// BankSpecs echoes the bank parameters used.
type BankSpecs struct {
	InverterEfficiency    float64 `json:"inverter_efficiency"`
	BatteryVoltage        float64 `json:"battery_voltage"`
	NominalVoltage        float64 `json:"nominal_voltage"`
	AhRating              float64 `json:"ah_rating"`
	DaysOfAutonomy        float64 `json:"days_of_autonomy"`
	DepthOfDischarge      float64 `json:"depth_of_discharge"`
	AmbientTempMultiplier float64 `json:"ambient_temp_multiplier"`
}

// PanelListResponse is the body of GET /api/v1/panels.
type PanelListResponse struct {
	Panels []config.PanelPreset `json:"panels"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
