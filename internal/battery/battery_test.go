package battery

import (
	"testing"

	"pv-sizing/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize_DefaultBank(t *testing.T) {
	s, err := Size(10000, model.DefaultBatteryBank())
	require.NoError(t, err)

	daily := 10000 / 0.85 / 48
	assert.InDelta(t, daily, s.DailyAh, 1e-9)
	assert.InDelta(t, daily*1.163, s.AdjustedAh, 1e-9)
	assert.InDelta(t, daily*1.163*0.5/0.95, s.TotalAh, 1e-9)
	assert.Equal(t, 4, s.Parallel)
	assert.Equal(t, 1, s.Series)
	assert.Equal(t, 4, s.TotalBatteries)
}

func TestSize_SeriesStrings(t *testing.T) {
	bank := model.DefaultBatteryBank()
	bank.BatteryVoltage = 12
	bank.AhRating = 200
	s, err := Size(4800, bank)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Series)
	assert.Equal(t, s.Parallel*4, s.TotalBatteries)
}

func TestSize_Invalid(t *testing.T) {
	bank := model.DefaultBatteryBank()
	bank.DepthOfDischarge = 0
	_, err := Size(1000, bank)
	assert.Error(t, err)

	_, err = Size(-1, model.DefaultBatteryBank())
	assert.Error(t, err)
}

func TestDailyLoadWh(t *testing.T) {
	hours := make([]float64, 24)
	for i := range hours {
		hours[i] = 0.5
	}
	wh, err := DailyLoadWh(hours)
	require.NoError(t, err)
	assert.InDelta(t, 12000.0, wh, 1e-9)

	_, err = DailyLoadWh(hours[:23])
	assert.Error(t, err)
}
