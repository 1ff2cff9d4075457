package model

import (
	"errors"
	"fmt"
	"time"
)

// LoadColumn is the canonical name of the hourly consumption column.
const LoadColumn = "AE_kWh"

var (
	// ErrUnordered is returned when timestamps are not strictly increasing.
	ErrUnordered = errors.New("timestamps must be strictly increasing")
	// ErrTooManyColumns is returned when a load source carries more than one value column.
	ErrTooManyColumns = errors.New("load series must have exactly one value column")
)

// Point is a single timestamped value.
type Point struct {
	Time  time.Time
	Value float64
}

// LoadSeries is hourly electrical consumption in kWh.
type LoadSeries struct {
	Name   string
	Points []Point
}

// NewLoadSeries builds a validated series. An empty name becomes AE_kWh.
func NewLoadSeries(name string, points []Point) (LoadSeries, error) {
	if name == "" {
		name = LoadColumn
	}
	s := LoadSeries{Name: name, Points: points}
	if err := s.Validate(); err != nil {
		return LoadSeries{}, err
	}
	return s, nil
}

func (s LoadSeries) Validate() error {
	if len(s.Points) == 0 {
		return errors.New("load series is empty")
	}
	for i := 1; i < len(s.Points); i++ {
		if !s.Points[i].Time.After(s.Points[i-1].Time) {
			return fmt.Errorf("load row %d (%s): %w", i, s.Points[i].Time.Format(time.DateTime), ErrUnordered)
		}
	}
	return nil
}

// Times returns the index of the series.
func (s LoadSeries) Times() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Time
	}
	return out
}

// Values returns the kWh column of the series.
func (s LoadSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Irradiance is one hour of plane-of-array weather data.
// Components are W/m², T2m is °C at 2 m, WindSpeed is m/s at 10 m.
type Irradiance struct {
	Time      time.Time
	Direct    float64 // Gb(i)
	Diffuse   float64 // Gd(i)
	Reflected float64 // Gr(i)
	T2m       float64
	WindSpeed float64
}

// Irr is the total irradiance on the module plane.
func (r Irradiance) Irr() float64 {
	return r.Direct + r.Diffuse + r.Reflected
}

// IrradianceSeries is an ordered run of hourly irradiance records.
type IrradianceSeries []Irradiance

func (s IrradianceSeries) Validate() error {
	if len(s) == 0 {
		return errors.New("irradiance series is empty")
	}
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return fmt.Errorf("irradiance row %d (%s): %w", i, s[i].Time.Format(time.DateTime), ErrUnordered)
		}
	}
	return nil
}

func (s IrradianceSeries) Times() []time.Time {
	out := make([]time.Time, len(s))
	for i, r := range s {
		out[i] = r.Time
	}
	return out
}
