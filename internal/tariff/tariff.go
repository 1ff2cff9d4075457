// Package tariff prices the typical-year balance under a flat or an hourly
// tariff.
//
// In hourly mode imports are priced per hour while exports are still
// compensated at the flat sell price.
package tariff

import (
	"errors"
	"fmt"

	"pv-sizing/internal/balance"

	"gonum.org/v1/gonum/floats"
)

const (
	DefaultBuyPrice  = 0.32 // €/kWh
	DefaultSellPrice = 0.06 // €/kWh
)

var (
	ErrCurveLength = errors.New("hourly tariff curve must have 24 prices")
	ErrUnsupported = errors.New("unsupported tariff mode")
)

type Mode string

const (
	ModeFlat   Mode = "flat"
	ModeHourly Mode = "hourly"
)

// Costs is the annual cost picture of one typical year.
type Costs struct {
	Current      float64 // grid cost without PV
	WithPV       float64 // grid cost of the remaining imports
	Compensation float64 // credit for exported energy
	Savings      float64 // Current - WithPV + Compensation
}

func newCosts(current, withPV, compensation float64) Costs {
	return Costs{
		Current:      current,
		WithPV:       withPV,
		Compensation: compensation,
		Savings:      current - withPV + compensation,
	}
}

// Flat prices every hour at buy and every exported kWh at sell.
func Flat(load []float64, bal balance.Result, buy, sell float64) Costs {
	return newCosts(
		buy*floats.Sum(load),
		buy*bal.ImportedTotal(),
		sell*bal.ExportedTotal(),
	)
}

// Hourly prices load and imports with prices, one per hour aligned with
// load. Exports are compensated at the flat sell price.
func Hourly(load []float64, bal balance.Result, prices []float64, sell float64) (Costs, error) {
	if len(prices) != len(load) || len(bal.Balance) != len(load) {
		return Costs{}, fmt.Errorf("%d prices, %d load hours, %d balance hours: %w",
			len(prices), len(load), len(bal.Balance), balance.ErrLengthMismatch)
	}
	return newCosts(
		floats.Dot(load, prices),
		floats.Dot(bal.ImportedAt(), prices),
		sell*bal.ExportedTotal(),
	), nil
}

// Curve is a 24-hour price curve whose first entry applies at StartHour.
type Curve struct {
	Prices    []float64
	StartHour int
}

// NewCurve validates the curve length and start hour.
func NewCurve(prices []float64, startHour int) (Curve, error) {
	c := Curve{Prices: prices, StartHour: startHour}
	if err := c.Validate(); err != nil {
		return Curve{}, err
	}
	return c, nil
}

func (c Curve) Validate() error {
	if len(c.Prices) != 24 {
		return fmt.Errorf("got %d: %w", len(c.Prices), ErrCurveLength)
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		return fmt.Errorf("curve start hour %d out of range", c.StartHour)
	}
	return nil
}

// Rotate shifts prices by (loadStart - curveStart) mod 24 so that
// out[(loadStart-curveStart) mod 24] == prices[0].
func Rotate(prices []float64, curveStart, loadStart int) ([]float64, error) {
	if len(prices) != 24 {
		return nil, fmt.Errorf("got %d: %w", len(prices), ErrCurveLength)
	}
	k := mod24(loadStart - curveStart)
	out := make([]float64, 24)
	for i, p := range prices {
		out[(i+k)%24] = p
	}
	return out, nil
}

// Tile repeats a curve positionally until it covers n hours.
func Tile(curve []float64, n int) []float64 {
	out := make([]float64, n)
	if len(curve) == 0 {
		return out
	}
	for i := range out {
		out[i] = curve[i%len(curve)]
	}
	return out
}

func mod24(x int) int {
	return ((x % 24) + 24) % 24
}

// Pricing selects the tariff applied by the pipeline.
type Pricing struct {
	Mode      Mode
	BuyPrice  float64
	SellPrice float64
	Curve     Curve
}

// DefaultPricing is the flat tariff.
func DefaultPricing() Pricing {
	return Pricing{Mode: ModeFlat, BuyPrice: DefaultBuyPrice, SellPrice: DefaultSellPrice}
}

func (p Pricing) Validate() error {
	if p.SellPrice < 0 {
		return errors.New("sell price must be >= 0")
	}
	switch p.Mode {
	case ModeFlat, "":
		if p.BuyPrice < 0 {
			return errors.New("buy price must be >= 0")
		}
		return nil
	case ModeHourly:
		return p.Curve.Validate()
	default:
		return fmt.Errorf("%q: %w", p.Mode, ErrUnsupported)
	}
}

// ImportPrices returns the buy price of each of n hours of a load series
// whose first hour-of-day is loadStart.
func (p Pricing) ImportPrices(n, loadStart int) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Mode == ModeHourly {
		rotated, err := Rotate(p.Curve.Prices, p.Curve.StartHour, loadStart)
		if err != nil {
			return nil, err
		}
		return Tile(rotated, n), nil
	}
	return Tile([]float64{p.BuyPrice}, n), nil
}

// Cost prices a typical year.
func (p Pricing) Cost(load []float64, loadStart int, bal balance.Result) (Costs, error) {
	if err := p.Validate(); err != nil {
		return Costs{}, err
	}
	if p.Mode != ModeHourly {
		return Flat(load, bal, p.BuyPrice, p.SellPrice), nil
	}
	prices, err := p.ImportPrices(len(load), loadStart)
	if err != nil {
		return Costs{}, err
	}
	return Hourly(load, bal, prices, p.SellPrice)
}
