package model

import "time"

// Production is the model output for one hour.
// PR factors are dimensionless; Wh is the energy delivered on the AC side.
type Production struct {
	Time time.Time

	TCell float64

	PRTemp         float64
	PRFresnel      float64
	PRDC           float64
	PRInverter     float64
	PRAvailability float64
	PRAC           float64
	PR             float64

	Wh float64
}

func (p Production) KWh() float64 { return p.Wh / 1e3 }

func (p Production) MWh() float64 { return p.Wh / 1e6 }
