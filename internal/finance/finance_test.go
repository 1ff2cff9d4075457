package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialInvestment(t *testing.T) {
	assert.InDelta(t, 3565.1725, InitialInvestment(5, 260, 1300, 500, 0.15), 1e-9)
	assert.InDelta(t, 0.0, InitialInvestment(0, 260, 0, 0, 0), 1e-12)
}

func TestProject_Table(t *testing.T) {
	in := DefaultInputs(3565.1725)
	p, err := Project(in, 600)
	require.NoError(t, err)
	require.Len(t, p.Rows, 25)

	assert.Equal(t, 1, p.Rows[0].Year)
	assert.Equal(t, 25, p.Rows[24].Year)
	assert.Equal(t, 3565.1725, p.Rows[0].Initial)
	for _, r := range p.Rows[1:] {
		assert.Zero(t, r.Initial)
	}

	assert.InDelta(t, 600.0, p.Rows[0].Savings, 1e-12)
	assert.InDelta(t, 600*math.Pow(1.04, 24), p.Rows[24].Savings, 1e-9)
	assert.InDelta(t, 3565.1725*0.02, p.Rows[0].OM, 1e-12)
	assert.InDelta(t, 3565.1725*0.02*math.Pow(1.02, 24), p.Rows[24].OM, 1e-9)

	assert.InDelta(t, p.Rows[0].Cashflow, p.Rows[0].Accumulated, 1e-12)
	for y := 1; y < len(p.Rows); y++ {
		r := p.Rows[y]
		assert.InDelta(t, -r.Initial-r.OM+r.Savings, r.Cashflow, 1e-9)
		assert.InDelta(t, p.Rows[y-1].Accumulated+r.Cashflow, r.Accumulated, 1e-9)
	}

	require.True(t, p.IRRDefined)
	assert.InDelta(t, 0.0, NPV(p.IRR, p.Cashflows(), 0), 1e-6)
	assert.InDelta(t, NPV(0.02, p.Cashflows(), 1), p.NPV, 1e-9)

	year, ok := p.PaybackYear()
	require.True(t, ok)
	assert.Greater(t, year, 1)
}

func TestProject_StartYearZero(t *testing.T) {
	in := DefaultInputs(1000)
	in.StartYear = 0
	p0, err := Project(in, 150)
	require.NoError(t, err)
	assert.Equal(t, 0, p0.Rows[0].Year)

	p1, err := Project(DefaultInputs(1000), 150)
	require.NoError(t, err)
	assert.InDelta(t, p0.NPV/1.02, p1.NPV, 1e-9)
	assert.InDelta(t, p0.IRR, p1.IRR, 1e-12)
}

func TestProject_IBIUnsupported(t *testing.T) {
	ibi := 0.5
	in := DefaultInputs(1000)
	in.IBI = &ibi
	_, err := Project(in, 150)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestProject_NoIRR(t *testing.T) {
	in := DefaultInputs(0)
	in.OMPercent = 0
	p, err := Project(in, 100)
	require.NoError(t, err)
	assert.False(t, p.IRRDefined)
	assert.True(t, math.IsNaN(p.IRR))
	assert.Len(t, p.Rows, 25)
}

func TestIRR(t *testing.T) {
	cases := []struct {
		name string
		cfs  []float64
		want float64
	}{
		{"one period", []float64{-100, 110}, 0.10},
		{"two periods", []float64{-100, 60, 60}, 1/((-60+math.Sqrt(3600+24000))/120) - 1},
		{"break even", []float64{-100, 50, 50}, 0},
		{"trailing zero", []float64{-100, 0, 121, 0}, 0.10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IRR(tc.cfs)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestIRR_NoSignChange(t *testing.T) {
	_, err := IRR([]float64{100, 10, 10})
	assert.ErrorIs(t, err, ErrNoConvergence)
	_, err = IRR([]float64{-100, -10})
	assert.ErrorIs(t, err, ErrNoConvergence)
}

func TestNPV(t *testing.T) {
	cfs := []float64{-100, 50, 60}
	assert.InDelta(t, -100+50/1.1+60/1.21, NPV(0.1, cfs, 0), 1e-12)
	assert.InDelta(t, -100/1.1+50/1.21+60/1.331, NPV(0.1, cfs, 1), 1e-12)
}
