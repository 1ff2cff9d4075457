package analysis

import (
	"context"
	"testing"

	"pv-sizing/internal/finance"
	"pv-sizing/internal/sizing"
	"pv-sizing/internal/sizing/sizingtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(n int) float64 {
	return finance.InitialInvestment(n, 260, 1300, 500, 0.15)
}

func TestOptions_Counts(t *testing.T) {
	counts, err := Options{Min: 2, Max: 8, Step: 3}.Counts()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5, 8}, counts)

	counts, err = Options{Min: 4, Max: 4}.Counts()
	require.NoError(t, err)
	assert.Equal(t, []int{4}, counts)

	_, err = Options{Min: 0, Max: 4}.Counts()
	assert.Error(t, err)
	_, err = Options{Min: 5, Max: 4}.Counts()
	assert.Error(t, err)

	counts, err = Options{Min: 1, Max: MaxRuns}.Counts()
	require.NoError(t, err)
	assert.Len(t, counts, MaxRuns)
	_, err = Options{Min: 1, Max: 1000000000}.Counts()
	assert.ErrorIs(t, err, ErrTooManyRuns)
	_, err = Options{Min: 1, Max: 2 * MaxRuns, Step: 2}.Counts()
	assert.NoError(t, err)
}

func TestSweep(t *testing.T) {
	base := sizingtest.Inputs()
	points, err := Sweep(context.Background(), base, Options{Min: 2, Max: 6, Step: 2, Limit: 2}, price)
	require.NoError(t, err)
	require.Len(t, points, 3)

	for i, n := range []int{2, 4, 6} {
		p := points[i]
		assert.Equal(t, n, p.Panels)
		assert.InDelta(t, price(n), p.Summary.InitialInvestment, 1e-9)
		assert.InDelta(t, 0.45*float64(n), p.Summary.PeakPowerKW, 1e-12)
		assert.GreaterOrEqual(t, p.SelfConsumption, 0.0)
		assert.LessOrEqual(t, p.SelfConsumption, 1.0)
	}
	// More panels produce more and never self-consume a larger share.
	assert.Greater(t, points[2].Summary.ProductionKWh, points[0].Summary.ProductionKWh)
	assert.LessOrEqual(t, points[2].SelfConsumption, points[0].SelfConsumption+1e-12)
	assert.GreaterOrEqual(t, points[2].Coverage, points[0].Coverage-1e-12)

	// The single-run engine agrees with the sweep.
	in := base
	in.Array.Count = 4
	in.Finance.InitialInvestment = price(4)
	res, err := sizing.New().Run(in)
	require.NoError(t, err)
	assert.Equal(t, res.Summary(), points[1].Summary)
}

func TestSweep_Error(t *testing.T) {
	base := sizingtest.Inputs()
	base.Finance.Years = 0
	_, err := Sweep(context.Background(), base, Options{Min: 1, Max: 3}, price)
	assert.Error(t, err)

	_, err = Sweep(context.Background(), base, Options{Min: 1, Max: 3}, nil)
	assert.Error(t, err)
}

func TestRankByNPV(t *testing.T) {
	pts := []Point{
		{Panels: 2, Summary: sizing.Summary{NPV: 100}},
		{Panels: 4, Summary: sizing.Summary{NPV: 300}},
		{Panels: 6, Summary: sizing.Summary{NPV: 300}},
		{Panels: 8, Summary: sizing.Summary{NPV: -50}},
	}
	ranked := RankByNPV(pts)
	assert.Equal(t, []int{4, 6, 2, 8}, []int{ranked[0].Panels, ranked[1].Panels, ranked[2].Panels, ranked[3].Panels})
	assert.Equal(t, 2, pts[0].Panels, "input is not reordered")

	best, ok := Best(pts)
	assert.True(t, ok)
	assert.Equal(t, 4, best.Panels)
	_, ok = Best(nil)
	assert.False(t, ok)
}
