package production

import (
	"testing"
	"time"

	"pv-sizing/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuropeanEfficiency_Default(t *testing.T) {
	// 0.03*60 + 0.06*80 + 0.13*89 + 0.10*91 + 0.48*92 + 0.20*93
	assert.InDelta(t, 90.03, DefaultInverter().EuropeanEfficiency(), 1e-9)
}

func TestFresnelMean(t *testing.T) {
	var f Fresnel
	for i := range f {
		f[i] = 0.9
	}
	f[0] = 0.78
	assert.InDelta(t, 0.89, f.Mean(), 1e-12)
}

func TestHour_ReferenceArray(t *testing.T) {
	m := New(Panel{PeakPowerW: 450, TNOCT: 42, Gamma: -0.36}, 5)
	require.NoError(t, m.Validate())

	t.Run("no irradiance", func(t *testing.T) {
		p := m.Hour(model.Irradiance{T2m: 12})
		assert.Equal(t, 0.0, p.Wh)
		assert.Equal(t, 12.0, p.TCell)
	})

	t.Run("hand computed", func(t *testing.T) {
		r := model.Irradiance{Direct: 600, Diffuse: 150, Reflected: 50, T2m: 25}
		p := m.Hour(r)
		assert.InDelta(t, 47.0, p.TCell, 1e-12)
		assert.InDelta(t, 1-0.0036*22, p.PRTemp, 1e-12)
		assert.InDelta(t, 0.9003, p.PRInverter, 1e-12)
		assert.Equal(t, 0.992, p.PRDC)
		assert.Equal(t, 1.0, p.PRAvailability)
		assert.Equal(t, 0.985, p.PRAC)

		pr := p.PRTemp * DefaultFresnel().Mean() * 0.992 * 0.9003 * 1.0 * 0.985
		assert.InDelta(t, pr, p.PR, 1e-12)
		assert.InDelta(t, pr*800*450*5/1000, p.Wh, 1e-9)
		assert.InDelta(t, p.Wh/1e3, p.KWh(), 1e-12)
		assert.InDelta(t, p.Wh/1e6, p.MWh(), 1e-15)
	})
}

func TestHour_ZeroGammaIsTemperatureIndependent(t *testing.T) {
	m := New(Panel{PeakPowerW: 400, TNOCT: 45, Gamma: 0}, 10)
	a := m.Hour(model.Irradiance{Direct: 900, T2m: -5})
	b := m.Hour(model.Irradiance{Direct: 100, T2m: 38})
	assert.Equal(t, 1.0, a.PRTemp)
	assert.Equal(t, 1.0, b.PRTemp)
	assert.InDelta(t, a.PR, b.PR, 1e-15)
}

func TestRun(t *testing.T) {
	start := time.Date(2016, 1, 1, 0, 10, 0, 0, time.UTC)
	series := model.IrradianceSeries{
		{Time: start, Direct: 0, T2m: 5},
		{Time: start.Add(time.Hour), Direct: 300, Diffuse: 100, T2m: 8},
	}
	m := New(DefaultPanel(), 4)
	prods, err := m.Run(series)
	require.NoError(t, err)
	require.Len(t, prods, 2)
	assert.Equal(t, start, prods[0].Time)
	assert.Greater(t, prods[1].Wh, 0.0)

	tbl, err := Table(prods)
	require.NoError(t, err)
	kwh, ok := tbl.Column(ColumnKWh)
	require.True(t, ok)
	assert.InDelta(t, prods[1].KWh(), kwh[1], 1e-12)
}

func TestRun_Invalid(t *testing.T) {
	_, err := New(DefaultPanel(), 0).Run(model.IrradianceSeries{{}})
	assert.Error(t, err)

	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = New(DefaultPanel(), 2).Run(model.IrradianceSeries{{Time: start}, {Time: start}})
	assert.ErrorIs(t, err, model.ErrUnordered)
}
