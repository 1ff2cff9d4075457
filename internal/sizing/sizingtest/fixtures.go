// Package sizingtest builds deterministic synthetic scenarios for tests.
package sizingtest

import (
	"math"
	"time"

	"pv-sizing/internal/finance"
	"pv-sizing/internal/model"
	"pv-sizing/internal/production"
	"pv-sizing/internal/sizing"
	"pv-sizing/internal/tariff"
)

// Load returns an hourly household load for the given years with an evening peak.
func Load(years ...int) model.LoadSeries {
	var pts []model.Point
	for _, y := range years {
		start := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC)
		for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
			v := 0.25
			if h := ts.Hour(); h >= 18 && h <= 22 {
				v = 0.9
			} else if h >= 7 && h <= 9 {
				v = 0.5
			}
			pts = append(pts, model.Point{Time: ts, Value: v})
		}
	}
	return model.LoadSeries{Name: model.LoadColumn, Points: pts}
}

// Irradiance returns a clear-sky-like series stamped at HH:10 like PVGIS.
func Irradiance(years ...int) model.IrradianceSeries {
	var out model.IrradianceSeries
	for _, y := range years {
		start := time.Date(y, 1, 1, 0, 10, 0, 0, time.UTC)
		end := time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC)
		for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
			season := 0.6 + 0.4*math.Sin(math.Pi*float64(ts.YearDay())/365)
			var g float64
			if h := float64(ts.Hour()); h >= 6 && h <= 18 {
				g = 900 * season * math.Sin(math.Pi*(h-6)/12)
			}
			out = append(out, model.Irradiance{
				Time:      ts,
				Direct:    0.75 * g,
				Diffuse:   0.2 * g,
				Reflected: 0.05 * g,
				T2m:       8 + 14*season,
				WindSpeed: 2,
			})
		}
	}
	return out
}

// Inputs is the reference five-panel scenario over synthetic data.
func Inputs() sizing.Inputs {
	array := production.New(production.Panel{Name: "ref-450", PeakPowerW: 450, TNOCT: 42, Gamma: -0.36}, 5)
	inv := finance.InitialInvestment(5, 260, 1300, 500, 0.15)
	bank := model.DefaultBatteryBank()
	return sizing.Inputs{
		Load:       Load(2019),
		Irradiance: Irradiance(2019, 2020),
		Array:      array,
		Pricing:    tariff.DefaultPricing(),
		Finance:    finance.DefaultInputs(inv),
		Battery:    &bank,
	}
}
