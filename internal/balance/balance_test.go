package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	load := []float64{1, 2, 3, 0.5, 0}
	prod := []float64{0, 2, 1, 2.5, 0}

	res, err := Compute(load, prod)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 0, 2, -2, 0}, res.Balance)
	assert.Equal(t, []Flow{{Hour: 0, KWh: 1}, {Hour: 2, KWh: 2}}, res.Imported)
	assert.Equal(t, []Flow{{Hour: 3, KWh: 2}}, res.Exported)

	assert.InDelta(t, 3.0, res.ImportedTotal(), 1e-12)
	assert.InDelta(t, 2.0, res.ExportedTotal(), 1e-12)
	assert.InDelta(t, res.ImportedTotal()-res.ExportedTotal(), res.Total(), 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 2, 0}, res.ExportedAt())
	assert.Equal(t, []float64{1, 0, 2, 0, 0}, res.ImportedAt())
}

func TestCompute_Decomposition(t *testing.T) {
	n := 8760
	load := make([]float64, n)
	prod := make([]float64, n)
	for h := 0; h < n; h++ {
		load[h] = 0.4 + float64(h%24)/48
		if d := h % 24; d >= 8 && d <= 17 {
			prod[h] = 1.2
		}
	}
	res, err := Compute(load, prod)
	require.NoError(t, err)

	for _, f := range res.Imported {
		assert.Greater(t, res.Balance[f.Hour], 0.0)
	}
	for _, f := range res.Exported {
		assert.Less(t, res.Balance[f.Hour], 0.0)
		assert.Greater(t, f.KWh, 0.0)
	}
	assert.InDelta(t, res.Total(), res.ImportedTotal()-res.ExportedTotal(), 1e-6)
}

func TestCompute_LengthMismatch(t *testing.T) {
	_, err := Compute([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
