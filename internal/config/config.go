package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pv-sizing/internal/data"
	"pv-sizing/internal/finance"
	"pv-sizing/internal/model"
	"pv-sizing/internal/production"
	"pv-sizing/internal/sizing"
	"pv-sizing/internal/tariff"

	"gopkg.in/yaml.v3"
)

// Reference installation prices.
const (
	DefaultPanelPrice       = 260.0
	DefaultInverterPrice    = 1300.0
	DefaultAdditionalCost   = 500.0
	DefaultInstallationPerc = 0.15
)

// Config is one scenario (YAML on disk, JSON over the API).
type Config struct {
	// Optional: load panel parameters from a separate YAML (e.g. examples/panels/*.yaml).
	// If both PanelFile and Panel are provided, Panel overrides PanelFile.
	PanelFile  string           `yaml:"panel_file" json:"panel_file,omitempty"`
	Panel      PanelConfig      `yaml:"panel" json:"panel"`
	Panels     int              `yaml:"panels" json:"panels"`
	Inverter   *InverterConfig  `yaml:"inverter" json:"inverter,omitempty"`
	Fresnel    []float64        `yaml:"fresnel" json:"fresnel,omitempty"`
	Losses     *LossesConfig    `yaml:"losses" json:"losses,omitempty"`
	Load       LoadConfig       `yaml:"load" json:"load"`
	Irradiance IrradianceConfig `yaml:"irradiance" json:"irradiance"`
	Tariff     TariffConfig     `yaml:"tariff" json:"tariff"`
	Investment InvestmentConfig `yaml:"investment" json:"investment"`
	Finance    FinanceConfig    `yaml:"finance" json:"finance"`
	// Battery is sized only when present.
	Battery *BatteryConfig `yaml:"battery" json:"battery,omitempty"`

	// dir resolves relative data paths.
	dir string
}

type PanelConfig struct {
	Name       string  `yaml:"name" json:"name,omitempty"`
	PeakPowerW float64 `yaml:"peak_power_w" json:"peak_power_w,omitempty"`
	TNOCT      float64 `yaml:"tnoct" json:"tnoct,omitempty"`
	Gamma      float64 `yaml:"gamma" json:"gamma,omitempty"`
}

// InverterConfig holds efficiencies in percent at 5..100 % load.
type InverterConfig struct {
	Name   string  `yaml:"name" json:"name,omitempty"`
	Eta5   float64 `yaml:"eta_5" json:"eta_5"`
	Eta10  float64 `yaml:"eta_10" json:"eta_10"`
	Eta20  float64 `yaml:"eta_20" json:"eta_20"`
	Eta30  float64 `yaml:"eta_30" json:"eta_30"`
	Eta50  float64 `yaml:"eta_50" json:"eta_50"`
	Eta100 float64 `yaml:"eta_100" json:"eta_100"`
}

type LossesConfig struct {
	DC           float64 `yaml:"dc" json:"dc"`
	Availability float64 `yaml:"availability" json:"availability"`
	AC           float64 `yaml:"ac" json:"ac"`
}

type LoadConfig struct {
	Path   string `yaml:"path" json:"path"`
	Format string `yaml:"format" json:"format,omitempty"`
}

type IrradianceConfig struct {
	Source string            `yaml:"source" json:"source,omitempty"`
	Path   string            `yaml:"path" json:"path,omitempty"`
	PVGIS  data.SeriesParams `yaml:"pvgis" json:"pvgis"`
}

type TariffConfig struct {
	Mode      string         `yaml:"mode" json:"mode,omitempty"`
	BuyPrice  *float64       `yaml:"buy_price" json:"buy_price,omitempty"`
	SellPrice *float64       `yaml:"sell_price" json:"sell_price,omitempty"`
	CurveFile string         `yaml:"curve_file" json:"curve_file,omitempty"`
	Windows   []WindowConfig `yaml:"windows" json:"windows,omitempty"`
}

type WindowConfig struct {
	Name  string  `yaml:"name" json:"name,omitempty"`
	Start string  `yaml:"start" json:"start"`
	End   string  `yaml:"end" json:"end"`
	Price float64 `yaml:"price" json:"price"`
}

// InvestmentConfig prices the installation. A non-zero Total skips the
// itemized calculation.
type InvestmentConfig struct {
	Total            float64  `yaml:"total" json:"total,omitempty"`
	PanelPrice       float64  `yaml:"panel_price" json:"panel_price,omitempty"`
	InverterPrice    float64  `yaml:"inverter_price" json:"inverter_price,omitempty"`
	Additional       float64  `yaml:"additional" json:"additional,omitempty"`
	InstallationPerc *float64 `yaml:"installation_perc" json:"installation_perc,omitempty"`
}

// FinanceConfig uses pointers so that an explicit zero survives defaults.
type FinanceConfig struct {
	OMPercent    *float64 `yaml:"om_percent" json:"om_percent,omitempty"`
	Years        int      `yaml:"years" json:"years,omitempty"`
	Inflation    *float64 `yaml:"inflation" json:"inflation,omitempty"`
	DiscountRate *float64 `yaml:"discount_rate" json:"discount_rate,omitempty"`
	StartYear    *int     `yaml:"start_year" json:"start_year,omitempty"`
	IBI          *float64 `yaml:"ibi" json:"ibi,omitempty"`
}

type BatteryConfig struct {
	InverterEfficiency    float64 `yaml:"inverter_efficiency" json:"inverter_efficiency,omitempty"`
	BatteryVoltage        float64 `yaml:"battery_voltage" json:"battery_voltage,omitempty"`
	NominalVoltage        float64 `yaml:"nominal_voltage" json:"nominal_voltage,omitempty"`
	AhRating              float64 `yaml:"ah_rating" json:"ah_rating,omitempty"`
	DaysOfAutonomy        float64 `yaml:"days_of_autonomy" json:"days_of_autonomy,omitempty"`
	DepthOfDischarge      float64 `yaml:"depth_of_discharge" json:"depth_of_discharge,omitempty"`
	AmbientTempMultiplier float64 `yaml:"ambient_temp_multiplier" json:"ambient_temp_multiplier,omitempty"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	c.dir = filepath.Dir(path)
	if err := c.ResolvePanel(); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetBaseDir sets the directory relative data paths are resolved against.
func (c *Config) SetBaseDir(dir string) { c.dir = dir }

// ResolvePanel loads PanelFile, if set, and overlays the inline panel on it.
// Relative paths are tried against the base directory first, then the
// working directory.
func (c *Config) ResolvePanel() error {
	if c.PanelFile == "" {
		return nil
	}
	loaded, err := LoadPanelFile(c.resolve(c.PanelFile))
	if err != nil {
		return err
	}
	c.Panel = MergePanel(loaded, c.Panel)
	return nil
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	cand := filepath.Join(c.dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := c.Array(); err != nil {
		return fmt.Errorf("array config invalid: %w", err)
	}
	if c.Load.Path == "" {
		return errors.New("load.path is required")
	}
	switch c.Load.Format {
	case "", data.LoadFormatGeneric, data.LoadFormatDistributor:
	default:
		return fmt.Errorf("load.format %q is not supported", c.Load.Format)
	}
	switch c.Irradiance.Source {
	case "", data.SourceFile:
		if c.Irradiance.Path == "" {
			return errors.New("irradiance.path is required")
		}
	case data.SourcePVGIS:
		if err := c.Irradiance.PVGIS.Validate(); err != nil {
			return fmt.Errorf("irradiance.pvgis: %w", err)
		}
	default:
		return fmt.Errorf("irradiance.source %q: %w", c.Irradiance.Source, data.ErrUnsupportedSource)
	}
	switch tariff.Mode(c.Tariff.Mode) {
	case "", tariff.ModeFlat:
	case tariff.ModeHourly:
		if c.Tariff.CurveFile == "" && len(c.Tariff.Windows) == 0 {
			return errors.New("hourly tariff needs curve_file or windows")
		}
	default:
		return fmt.Errorf("tariff.mode %q: %w", c.Tariff.Mode, tariff.ErrUnsupported)
	}
	if err := c.FinanceInputs().Validate(); err != nil {
		return fmt.Errorf("finance config invalid: %w", err)
	}
	if bank := c.Bank(); bank != nil {
		if err := bank.Validate(); err != nil {
			return fmt.Errorf("battery config invalid: %w", err)
		}
	}
	return nil
}

// Array builds the production model. Missing parts take their defaults;
// a panel is used as given once any of its fields is set.
func (c *Config) Array() (production.Model, error) {
	panel := production.DefaultPanel()
	if c.Panel != (PanelConfig{}) {
		panel = c.Panel.ToModel()
	}
	m := production.New(panel, c.Panels)
	if c.Inverter != nil {
		m.Inverter = production.Inverter{
			Name: c.Inverter.Name,
			Eta5: c.Inverter.Eta5, Eta10: c.Inverter.Eta10, Eta20: c.Inverter.Eta20,
			Eta30: c.Inverter.Eta30, Eta50: c.Inverter.Eta50, Eta100: c.Inverter.Eta100,
		}
	}
	if len(c.Fresnel) > 0 {
		if len(c.Fresnel) != 12 {
			return production.Model{}, fmt.Errorf("fresnel needs 12 monthly values, got %d", len(c.Fresnel))
		}
		copy(m.Fresnel[:], c.Fresnel)
	}
	if c.Losses != nil {
		m.Losses = production.Losses{DC: c.Losses.DC, Availability: c.Losses.Availability, AC: c.Losses.AC}
	}
	if err := m.Validate(); err != nil {
		return production.Model{}, err
	}
	return m, nil
}

// Pricing builds the tariff. Hourly curves come from CurveFile or, failing
// that, from Windows over the buy price.
func (c *Config) Pricing() (tariff.Pricing, error) {
	p := tariff.DefaultPricing()
	if c.Tariff.BuyPrice != nil {
		p.BuyPrice = *c.Tariff.BuyPrice
	}
	if c.Tariff.SellPrice != nil {
		p.SellPrice = *c.Tariff.SellPrice
	}
	if c.Tariff.Mode != "" {
		p.Mode = tariff.Mode(c.Tariff.Mode)
	}
	if p.Mode == tariff.ModeHourly {
		var err error
		switch {
		case c.Tariff.CurveFile != "":
			p.Curve, err = data.LoadTariffFile(c.resolve(c.Tariff.CurveFile))
		default:
			windows := make([]tariff.Window, len(c.Tariff.Windows))
			for i, w := range c.Tariff.Windows {
				windows[i] = tariff.Window{Name: w.Name, Start: w.Start, End: w.End, Price: w.Price}
			}
			p.Curve, err = tariff.CurveFromWindows(windows, p.BuyPrice)
		}
		if err != nil {
			return tariff.Pricing{}, fmt.Errorf("tariff curve: %w", err)
		}
	}
	if err := p.Validate(); err != nil {
		return tariff.Pricing{}, err
	}
	return p, nil
}

// InitialInvestment is the explicit total or the itemized price of Panels
// panels.
func (c *Config) InitialInvestment() float64 {
	return c.InitialInvestmentFor(c.Panels)
}

// InitialInvestmentFor prices the installation for a given panel count.
func (c *Config) InitialInvestmentFor(panels int) float64 {
	inv := c.Investment
	if inv.Total > 0 {
		return inv.Total
	}
	pp, pinv, add, perc := DefaultPanelPrice, DefaultInverterPrice, DefaultAdditionalCost, DefaultInstallationPerc
	if inv.PanelPrice != 0 {
		pp = inv.PanelPrice
	}
	if inv.InverterPrice != 0 {
		pinv = inv.InverterPrice
	}
	if inv.Additional != 0 {
		add = inv.Additional
	}
	if inv.InstallationPerc != nil {
		perc = *inv.InstallationPerc
	}
	return finance.InitialInvestment(panels, pp, pinv, add, perc)
}

func (c *Config) FinanceInputs() finance.Inputs {
	in := finance.DefaultInputs(c.InitialInvestment())
	f := c.Finance
	if f.OMPercent != nil {
		in.OMPercent = *f.OMPercent
	}
	if f.Years != 0 {
		in.Years = f.Years
	}
	if f.Inflation != nil {
		in.Inflation = *f.Inflation
	}
	if f.DiscountRate != nil {
		in.DiscountRate = *f.DiscountRate
	}
	if f.StartYear != nil {
		in.StartYear = *f.StartYear
	}
	in.IBI = f.IBI
	return in
}

// Bank returns the battery bank to size, or nil when no battery is configured.
func (c *Config) Bank() *model.BatteryBank {
	if c.Battery == nil {
		return nil
	}
	b := MergeBattery(model.DefaultBatteryBank(), *c.Battery)
	return &b
}

// MergeBattery overlays non-zero fields from override onto base.
func MergeBattery(base model.BatteryBank, override BatteryConfig) model.BatteryBank {
	out := base
	if override.InverterEfficiency != 0 {
		out.InverterEfficiency = override.InverterEfficiency
	}
	if override.BatteryVoltage != 0 {
		out.BatteryVoltage = override.BatteryVoltage
	}
	if override.NominalVoltage != 0 {
		out.NominalVoltage = override.NominalVoltage
	}
	if override.AhRating != 0 {
		out.AhRating = override.AhRating
	}
	if override.DaysOfAutonomy != 0 {
		out.DaysOfAutonomy = override.DaysOfAutonomy
	}
	if override.DepthOfDischarge != 0 {
		out.DepthOfDischarge = override.DepthOfDischarge
	}
	if override.AmbientTempMultiplier != 0 {
		out.AmbientTempMultiplier = override.AmbientTempMultiplier
	}
	return out
}

// ToInputs reads the load, irradiance and tariff files and assembles the
// pipeline inputs. client may be nil when PVGIS downloads are disabled.
func (c *Config) ToInputs(ctx context.Context, client *data.PVGISClient) (sizing.Inputs, error) {
	array, err := c.Array()
	if err != nil {
		return sizing.Inputs{}, err
	}
	pricing, err := c.Pricing()
	if err != nil {
		return sizing.Inputs{}, err
	}
	load, err := data.LoadLoadFile(c.resolve(c.Load.Path), c.Load.Format)
	if err != nil {
		return sizing.Inputs{}, fmt.Errorf("load %s: %w", c.Load.Path, err)
	}
	irr, err := data.FetchIrradiance(ctx, data.IrradianceSource{
		Kind:  c.Irradiance.Source,
		Path:  c.resolve(c.Irradiance.Path),
		PVGIS: c.Irradiance.PVGIS,
	}, client)
	if err != nil {
		return sizing.Inputs{}, fmt.Errorf("irradiance: %w", err)
	}
	return sizing.Inputs{
		Load:       load,
		Irradiance: irr,
		Array:      array,
		Pricing:    pricing,
		Finance:    c.FinanceInputs(),
		Battery:    c.Bank(),
	}, nil
}
