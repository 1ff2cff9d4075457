package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pv-sizing/internal/data"
	"pv-sizing/internal/finance"
	"pv-sizing/internal/model"
	"pv-sizing/internal/tariff"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const scenarioYAML = `
panel_file: panels/mono-450.yaml
panel:
  peak_power_w: 455
panels: 5
load:
  path: load.csv
irradiance:
  source: file
  path: pvgis.csv
tariff:
  buy_price: 0.30
  sell_price: 0.05
finance:
  discount_rate: 0
  start_year: 0
battery:
  days_of_autonomy: 1
`

const panelYAML = `
panel:
  name: Mono 450
  peak_power_w: 450
  tnoct: 43
  gamma: -0.35
`

func TestLoad_MergesPanelFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "panels/mono-450.yaml", panelYAML)
	path := writeFile(t, dir, "scenario.yaml", scenarioYAML)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Mono 450", c.Panel.Name)
	assert.Equal(t, 455.0, c.Panel.PeakPowerW)
	assert.Equal(t, 43.0, c.Panel.TNOCT)
	assert.Equal(t, -0.35, c.Panel.Gamma)

	m, err := c.Array()
	require.NoError(t, err)
	assert.Equal(t, 5, m.Count)
	assert.InDelta(t, 2.275, m.PeakPowerKW(), 1e-12)

	fin := c.FinanceInputs()
	assert.Equal(t, 0.0, fin.DiscountRate)
	assert.Equal(t, 0, fin.StartYear)
	assert.Equal(t, finance.DefaultInflation, fin.Inflation)
	assert.InDelta(t, 3565.1725, fin.InitialInvestment, 1e-9)

	bank := c.Bank()
	require.NotNil(t, bank)
	assert.Equal(t, 1.0, bank.DaysOfAutonomy)
	assert.Equal(t, model.DefaultBatteryBank().AhRating, bank.AhRating)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"no panels":      "load: {path: a.csv}\nirradiance: {path: b.csv}\n",
		"no load":        "panels: 2\nirradiance: {path: b.csv}\n",
		"bad source":     "panels: 2\nload: {path: a.csv}\nirradiance: {source: meteonorm}\n",
		"bad tariff":     "panels: 2\nload: {path: a.csv}\nirradiance: {path: b.csv}\ntariff: {mode: dynamic}\n",
		"hourly no data": "panels: 2\nload: {path: a.csv}\nirradiance: {path: b.csv}\ntariff: {mode: hourly}\n",
		"ibi":            "panels: 2\nload: {path: a.csv}\nirradiance: {path: b.csv}\nfinance: {ibi: 0.5}\n",
		"bad fresnel":    "panels: 2\nload: {path: a.csv}\nirradiance: {path: b.csv}\nfresnel: [0.9, 0.9]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "scenario.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_IBIUnsupported(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scenario.yaml",
		"panels: 2\nload: {path: a.csv}\nirradiance: {path: b.csv}\nfinance: {ibi: 0.5}\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, finance.ErrUnsupported)
}

func TestArray_Defaults(t *testing.T) {
	c := &Config{Panels: 3}
	m, err := c.Array()
	require.NoError(t, err)
	assert.Equal(t, 450.0, m.Panel.PeakPowerW)
	assert.InDelta(t, 90.03, m.Inverter.EuropeanEfficiency(), 1e-9)

	c = &Config{Panels: 3, Panel: PanelConfig{PeakPowerW: 400, TNOCT: 45}}
	m, err = c.Array()
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Panel.Gamma)
}

func TestPricing_Windows(t *testing.T) {
	buy := 0.20
	c := &Config{Tariff: TariffConfig{
		Mode:     "hourly",
		BuyPrice: &buy,
		Windows:  []WindowConfig{{Name: "peak", Start: "18:00", End: "22:00", Price: 0.40}},
	}}
	p, err := c.Pricing()
	require.NoError(t, err)
	assert.Equal(t, tariff.ModeHourly, p.Mode)
	assert.Equal(t, 0, p.Curve.StartHour)
	assert.Equal(t, 0.20, p.Curve.Prices[17])
	assert.Equal(t, 0.40, p.Curve.Prices[18])
	assert.Equal(t, 0.40, p.Curve.Prices[21])
	assert.Equal(t, 0.20, p.Curve.Prices[22])
	assert.Equal(t, tariff.DefaultSellPrice, p.SellPrice)
}

func TestInitialInvestmentFor(t *testing.T) {
	c := &Config{}
	assert.InDelta(t, 3565.1725, c.InitialInvestmentFor(5), 1e-9)
	assert.InDelta(t, 3565.1725+2*260*1.15, c.InitialInvestmentFor(7), 1e-9)

	c.Investment.Total = 4000
	assert.Equal(t, 4000.0, c.InitialInvestmentFor(7))
}

func TestToInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "load.csv", "time,AE_kWh\n2019-01-01 00:00:00,0.4\n2019-01-01 01:00:00,0.3\n")
	writeFile(t, dir, "pvgis.csv", "time,Gb(i),Gd(i),Gr(i),H_sun,T2m,WS10m,Int\n20190101:0010,0,0,0,0,5,1,0\n")
	path := writeFile(t, dir, "scenario.yaml", "panels: 4\nload: {path: load.csv}\nirradiance: {path: pvgis.csv}\n")

	c, err := Load(path)
	require.NoError(t, err)
	in, err := c.ToInputs(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, in.Load.Points, 2)
	assert.Len(t, in.Irradiance, 1)
	assert.Equal(t, 4, in.Array.Count)
	assert.Nil(t, in.Battery)
	assert.Equal(t, tariff.ModeFlat, in.Pricing.Mode)
}

func TestToInputs_PVGISDisabled(t *testing.T) {
	c := &Config{
		Panels:     2,
		Load:       LoadConfig{Path: writeFile(t, t.TempDir(), "load.csv", "time,x\n2019-01-01 00:00:00,1\n")},
		Irradiance: IrradianceConfig{Source: data.SourcePVGIS, PVGIS: data.SeriesParams{Lat: 40, Lon: -3, StartYear: 2016, EndYear: 2016}},
	}
	_, err := c.ToInputs(context.Background(), nil)
	assert.ErrorIs(t, err, data.ErrUnsupportedSource)
}

func TestListPanelFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-panel.yaml", panelYAML)
	writeFile(t, dir, "a-panel.yaml", "panel:\n  peak_power_w: 400\n  tnoct: 45\n  gamma: -0.4\n")
	writeFile(t, dir, "notes.txt", "ignored")

	presets, err := ListPanelFiles(dir)
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "a-panel", presets[0].ID)
	assert.Equal(t, "a-panel", presets[0].Panel.Name)
	assert.Equal(t, "Mono 450", presets[1].Panel.Name)
}

func TestServer_AllowedOrigins(t *testing.T) {
	s := Server{CORSOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.AllowedOrigins())
}

func TestLoadServer_Env(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("PVGIS_CACHE_TTL", "2h")
	s, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "9090", s.Port)
	assert.Equal(t, "2h0m0s", s.PVGISCacheTTL.String())
	assert.True(t, s.EnablePVGIS)
}
