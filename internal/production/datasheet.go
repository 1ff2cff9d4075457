package production

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Panel is the module datasheet.
// Units:
// - PeakPowerW: W at STC
// - TNOCT: °C, nominal operating cell temperature
// - Gamma: %/°C, power temperature coefficient (negative for silicon)
type Panel struct {
	Name       string
	PeakPowerW float64
	TNOCT      float64
	Gamma      float64
}

func (p Panel) Validate() error {
	if p.PeakPowerW <= 0 {
		return errors.New("PeakPowerW must be > 0")
	}
	if p.TNOCT <= 0 {
		return errors.New("TNOCT must be > 0")
	}
	return nil
}

// DefaultPanel is a 450 W monocrystalline module.
func DefaultPanel() Panel {
	return Panel{Name: "generic-450", PeakPowerW: 450, TNOCT: 42, Gamma: -0.36}
}

// europeanWeights are the load-point weights of the European efficiency
// at 5, 10, 20, 30, 50 and 100 % of rated power.
var europeanWeights = []float64{0.03, 0.06, 0.13, 0.10, 0.48, 0.20}

// Inverter holds the datasheet efficiency (in %) at each load point.
type Inverter struct {
	Name   string
	Eta5   float64
	Eta10  float64
	Eta20  float64
	Eta30  float64
	Eta50  float64
	Eta100 float64
}

// DefaultInverter returns the reference efficiency curve 60/80/89/91/92/93 %.
func DefaultInverter() Inverter {
	return Inverter{Name: "generic", Eta5: 60, Eta10: 80, Eta20: 89, Eta30: 91, Eta50: 92, Eta100: 93}
}

func (i Inverter) Validate() error {
	for _, eta := range i.curve() {
		if eta <= 0 || eta > 100 {
			return errors.New("inverter efficiencies must be in (0, 100]")
		}
	}
	return nil
}

func (i Inverter) curve() []float64 {
	return []float64{i.Eta5, i.Eta10, i.Eta20, i.Eta30, i.Eta50, i.Eta100}
}

// EuropeanEfficiency is the weighted efficiency in percent.
func (i Inverter) EuropeanEfficiency() float64 {
	return floats.Dot(europeanWeights, i.curve())
}

// Fresnel is the monthly optical (angle-of-incidence) efficiency, January first.
type Fresnel [12]float64

// DefaultFresnel is a fixed-tilt south-facing reference table.
func DefaultFresnel() Fresnel {
	return Fresnel{0.96, 0.965, 0.97, 0.975, 0.975, 0.975, 0.975, 0.975, 0.97, 0.965, 0.96, 0.955}
}

// Mean collapses the table to the single factor applied to every hour.
func (f Fresnel) Mean() float64 {
	return stat.Mean(f[:], nil)
}

func (f Fresnel) Validate() error {
	for _, v := range f {
		if v <= 0 || v > 1 {
			return errors.New("fresnel factors must be in (0, 1]")
		}
	}
	return nil
}

// Losses are the constant performance-ratio factors.
type Losses struct {
	DC           float64
	Availability float64
	AC           float64
}

func DefaultLosses() Losses {
	return Losses{DC: 0.992, Availability: 1.0, AC: 0.985}
}

func (l Losses) Validate() error {
	if l.DC <= 0 || l.DC > 1 || l.Availability <= 0 || l.Availability > 1 || l.AC <= 0 || l.AC > 1 {
		return errors.New("loss factors must be in (0, 1]")
	}
	return nil
}
