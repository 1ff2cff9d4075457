package model

import "errors"

// BatteryBank defines the electrical parameters used to size an off-grid
// or backup battery bank.
// Units:
// - InverterEfficiency, DepthOfDischarge: fraction 0..1
// - BatteryVoltage, NominalVoltage: V
// - AhRating: Ah per battery
// - DaysOfAutonomy: days
// - AmbientTempMultiplier: dimensionless capacity derating (>= 1 in the cold)
type BatteryBank struct {
	InverterEfficiency    float64
	BatteryVoltage        float64
	NominalVoltage        float64
	AhRating              float64
	DaysOfAutonomy        float64
	DepthOfDischarge      float64
	AmbientTempMultiplier float64
}

// DefaultBatteryBank returns a 48 V lead-acid bank with half a day of autonomy.
func DefaultBatteryBank() BatteryBank {
	return BatteryBank{
		InverterEfficiency:    0.85,
		BatteryVoltage:        48,
		NominalVoltage:        48,
		AhRating:              2400.0 / 48.0,
		DaysOfAutonomy:        0.5,
		DepthOfDischarge:      0.95,
		AmbientTempMultiplier: 1.163,
	}
}

func (b BatteryBank) Validate() error {
	if b.InverterEfficiency <= 0 || b.InverterEfficiency > 1 {
		return errors.New("InverterEfficiency must be in (0, 1]")
	}
	if b.BatteryVoltage <= 0 {
		return errors.New("BatteryVoltage must be > 0")
	}
	if b.NominalVoltage <= 0 {
		return errors.New("NominalVoltage must be > 0")
	}
	if b.AhRating <= 0 {
		return errors.New("AhRating must be > 0")
	}
	if b.DaysOfAutonomy <= 0 {
		return errors.New("DaysOfAutonomy must be > 0")
	}
	if b.DepthOfDischarge <= 0 || b.DepthOfDischarge > 1 {
		return errors.New("DepthOfDischarge must be in (0, 1]")
	}
	if b.AmbientTempMultiplier <= 0 {
		return errors.New("AmbientTempMultiplier must be > 0")
	}
	return nil
}
