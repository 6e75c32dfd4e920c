package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/model"
)

const equalityThreshold = 1e-2

func TestEMA_KnownValues(t *testing.T) {
	out, err := EMA([]float64{10, 12, 11}, 20)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, 10.0, out[0])
	assert.InDelta(t, 10.19, out[1], equalityThreshold)
	assert.InDelta(t, 10.27, out[2], equalityThreshold)
}

func TestEMA_ShortSeriesStillComputes(t *testing.T) {
	values := []float64{5, 6, 7, 8, 9}
	out, err := EMA(values, 20)
	require.NoError(t, err)
	assert.Len(t, out, len(values))
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i], out[i-1], "rising input should give a rising EMA")
		assert.Less(t, out[i], values[i], "EMA lags a rising input")
	}
}

func TestEMA_Empty(t *testing.T) {
	out, err := EMA(nil, 20)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEMA_InvalidSpan(t *testing.T) {
	for _, span := range []int{0, -3} {
		_, err := EMA([]float64{1, 2}, span)
		assert.Error(t, err, "span %d", span)
	}
}

func TestEMA_SpanOneTracksInput(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5}
	out, err := EMA(values, 1)
	require.NoError(t, err)
	assert.Equal(t, values, out)
}

func TestCalculateEMA20(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := &model.PriceSeries{Symbol: "AAPL"}
	for i, c := range []float64{10, 12, 11} {
		series.Bars = append(series.Bars, model.OHLCV{Time: start.AddDate(0, 0, i), Close: c})
	}

	out, err := CalculateEMA20(series)
	require.NoError(t, err)
	assert.InDelta(t, 10.27, out[2], equalityThreshold)
}
