// Package battery sizes a battery bank from the typical daily load.
package battery

import (
	"errors"
	"fmt"
	"math"

	"pv-sizing/internal/model"

	"gonum.org/v1/gonum/floats"
)

// Sizing is the closed-form result for one bank.
type Sizing struct {
	DailyLoadWh    float64 `json:"daily_load_wh"`
	DailyAh        float64 `json:"daily_ah"`
	AdjustedAh     float64 `json:"adjusted_ah"`
	TotalAh        float64 `json:"total_ah"`
	Parallel       int     `json:"parallel"`
	Series         int     `json:"series"`
	TotalBatteries int     `json:"total_batteries"`
}

// DailyLoadWh converts the 24 hour-of-day mean loads in kWh to a daily
// energy in Wh.
func DailyLoadWh(hourOfDayKWh []float64) (float64, error) {
	if len(hourOfDayKWh) != 24 {
		return 0, fmt.Errorf("expected 24 hourly means, got %d", len(hourOfDayKWh))
	}
	return floats.Sum(hourOfDayKWh) * 1000, nil
}

// Size computes the number of batteries in parallel and series needed to
// cover dailyLoadWh for the bank's days of autonomy.
func Size(dailyLoadWh float64, bank model.BatteryBank) (Sizing, error) {
	if dailyLoadWh < 0 {
		return Sizing{}, errors.New("daily load must be >= 0")
	}
	if err := bank.Validate(); err != nil {
		return Sizing{}, fmt.Errorf("battery bank invalid: %w", err)
	}
	s := Sizing{DailyLoadWh: dailyLoadWh}
	s.DailyAh = dailyLoadWh / bank.InverterEfficiency / bank.BatteryVoltage
	s.AdjustedAh = s.DailyAh * bank.AmbientTempMultiplier
	s.TotalAh = s.AdjustedAh * bank.DaysOfAutonomy / bank.DepthOfDischarge
	s.Parallel = int(math.Ceil(s.TotalAh / bank.AhRating))
	s.Series = int(math.Ceil(bank.NominalVoltage / bank.BatteryVoltage))
	s.TotalBatteries = s.Parallel * s.Series
	return s, nil
}
