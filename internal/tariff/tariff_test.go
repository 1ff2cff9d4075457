package tariff

import (
	"testing"

	"pv-sizing/internal/balance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curve24() []float64 {
	c := make([]float64, 24)
	for i := range c {
		c[i] = float64(i) / 100
	}
	return c
}

func TestFlat_SavingsIdentity(t *testing.T) {
	load := []float64{2, 2, 2, 2}
	prod := []float64{0, 1, 3, 5}
	bal, err := balance.Compute(load, prod)
	require.NoError(t, err)

	c := Flat(load, bal, 0.32, 0.06)
	assert.InDelta(t, 0.32*8, c.Current, 1e-12)
	assert.InDelta(t, 0.32*3, c.WithPV, 1e-12)
	// exported magnitude 1 + 3
	assert.InDelta(t, 0.06*4, c.Compensation, 1e-12)
	assert.InDelta(t, c.Current-c.WithPV+c.Compensation, c.Savings, 1e-12)
	assert.GreaterOrEqual(t, c.Compensation, 0.0)
}

func TestRotate(t *testing.T) {
	cases := []struct {
		name             string
		curveStart, load int
	}{
		{"aligned", 0, 0},
		{"load later", 0, 5},
		{"load earlier", 7, 2},
		{"wrap", 23, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := curve24()
			out, err := Rotate(c, tc.curveStart, tc.load)
			require.NoError(t, err)
			pos := ((tc.load-tc.curveStart)%24 + 24) % 24
			assert.Equal(t, c[0], out[pos])
			assert.ElementsMatch(t, c, out)
		})
	}
}

func TestRotate_Length(t *testing.T) {
	_, err := Rotate(make([]float64, 23), 0, 0)
	assert.ErrorIs(t, err, ErrCurveLength)
	_, err = NewCurve(make([]float64, 25), 0)
	assert.ErrorIs(t, err, ErrCurveLength)
}

func TestTile(t *testing.T) {
	out := Tile([]float64{1, 2, 3}, 7)
	assert.Equal(t, []float64{1, 2, 3, 1, 2, 3, 1}, out)
	assert.Len(t, Tile(curve24(), 8760), 8760)
}

func TestHourly(t *testing.T) {
	load := make([]float64, 48)
	prod := make([]float64, 48)
	for h := range load {
		load[h] = 1
		if h%24 == 12 {
			prod[h] = 3
		}
	}
	bal, err := balance.Compute(load, prod)
	require.NoError(t, err)

	c, err := NewCurve(curve24(), 0)
	require.NoError(t, err)
	p := Pricing{Mode: ModeHourly, SellPrice: 0.05, Curve: c}

	costs, err := p.Cost(load, 0, bal)
	require.NoError(t, err)

	var daySum float64
	for _, v := range curve24() {
		daySum += v
	}
	assert.InDelta(t, 2*daySum, costs.Current, 1e-12)
	assert.InDelta(t, 2*(daySum-0.12), costs.WithPV, 1e-12)
	// exports stay at the flat sell price
	assert.InDelta(t, 0.05*4, costs.Compensation, 1e-12)
	assert.InDelta(t, costs.Current-costs.WithPV+costs.Compensation, costs.Savings, 1e-12)
}

func TestPricing_ImportPrices(t *testing.T) {
	c, err := NewCurve(curve24(), 0)
	require.NoError(t, err)
	p := Pricing{Mode: ModeHourly, Curve: c}
	prices, err := p.ImportPrices(30, 3)
	require.NoError(t, err)
	assert.Equal(t, c.Prices[0], prices[3])
	assert.Equal(t, prices[3], prices[27])

	flat, err := DefaultPricing().ImportPrices(5, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.32, 0.32, 0.32, 0.32, 0.32}, flat)
}

func TestPricing_UnknownMode(t *testing.T) {
	_, err := Pricing{Mode: "dynamic"}.Cost(nil, 0, balance.Result{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCurveFromWindows(t *testing.T) {
	c, err := CurveFromWindows([]Window{
		{Name: "peak", Start: "10:00", End: "14:00", Price: 0.30},
		{Name: "peak", Start: "18:00", End: "22:00", Price: 0.30},
		{Name: "valley", Start: "00:00", End: "08:00", Price: 0.10},
	}, 0.20)
	require.NoError(t, err)
	require.Len(t, c.Prices, 24)
	assert.Equal(t, 0.10, c.Prices[0])
	assert.Equal(t, 0.10, c.Prices[7])
	assert.Equal(t, 0.20, c.Prices[8])
	assert.Equal(t, 0.30, c.Prices[10])
	assert.Equal(t, 0.20, c.Prices[14])
	assert.Equal(t, 0.30, c.Prices[21])
	assert.Equal(t, 0.20, c.Prices[22])

	wrap, err := CurveFromWindows([]Window{{Start: "22:00", End: "06:00", Price: 0.05}}, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.05, wrap.Prices[23])
	assert.Equal(t, 0.05, wrap.Prices[5])
	assert.Equal(t, 0.2, wrap.Prices[6])

	_, err = CurveFromWindows([]Window{{Start: "25:00", End: "06:00"}}, 0.2)
	assert.Error(t, err)
}
