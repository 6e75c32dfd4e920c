package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/collector"
	"stockdash/internal/model"
)

var fixedNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func linearBars(start time.Time, n int, base, step float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: base + step*float64(i)}
	}
	return bars
}

func newTestForecaster(f collector.Fetcher) *TrendForecaster {
	tf := NewTrendForecaster(f, 30)
	tf.now = func() time.Time { return fixedNow }
	return tf
}

func TestTrendForecaster_ExtendsLine(t *testing.T) {
	// close = 100 + 2*day, last bar on 2024-05-10
	start := time.Date(2024, 4, 11, 0, 0, 0, 0, time.UTC)
	fetcher := &collector.MockFetcher{Bars: linearBars(start, 30, 100, 2)}

	spec, err := newTestForecaster(fetcher).Forecast(context.Background(), "AAPL", 3)
	require.NoError(t, err)

	require.Len(t, spec.Traces, 1)
	tr := spec.Traces[0]
	assert.Equal(t, []string{"2024-05-11", "2024-05-12", "2024-05-13"}, tr.X)
	require.Len(t, tr.Y, 3)
	assert.InDelta(t, 160, tr.Y[0], 1e-6)
	assert.InDelta(t, 162, tr.Y[1], 1e-6)
	assert.InDelta(t, 164, tr.Y[2], 1e-6)
	assert.Equal(t, "Predicted Close Price of next 3 days", spec.Title)

	tkr, rng := fetcher.LastSeriesRequest()
	assert.Equal(t, "AAPL", tkr)
	require.NotNil(t, rng)
	assert.Equal(t, "2024-04-10", rng.Start.Format(model.DateLayout))
	assert.Equal(t, "2024-05-10", rng.End.Format(model.DateLayout))
}

func TestTrendForecaster_SingleBarIsFlat(t *testing.T) {
	fetcher := &collector.MockFetcher{Bars: linearBars(fixedNow, 1, 42, 0)}

	spec, err := newTestForecaster(fetcher).Forecast(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{42, 42}, spec.Traces[0].Y)
}

func TestTrendForecaster_InvalidHorizon(t *testing.T) {
	fetcher := &collector.MockFetcher{}
	for _, h := range []int{0, -1, MaxHorizonDays + 1, MaxHorizonDays * 1000} {
		_, err := newTestForecaster(fetcher).Forecast(context.Background(), "AAPL", h)
		assert.ErrorIs(t, err, ErrInvalidHorizon)
	}
	_, series := fetcher.Calls()
	assert.Zero(t, series)
}

func TestTrendForecaster_MaxHorizon(t *testing.T) {
	fetcher := &collector.MockFetcher{Bars: linearBars(fixedNow, 1, 42, 0)}

	spec, err := newTestForecaster(fetcher).Forecast(context.Background(), "AAPL", MaxHorizonDays)
	require.NoError(t, err)
	assert.Len(t, spec.Traces[0].Y, MaxHorizonDays)
}

func TestTrendForecaster_FetchError(t *testing.T) {
	fetcher := &collector.MockFetcher{Err: errors.New("provider down")}

	_, err := newTestForecaster(fetcher).Forecast(context.Background(), "AAPL", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
}

func TestTrendForecaster_NoHistory(t *testing.T) {
	fetcher := &collector.MockFetcher{Bars: []model.OHLCV{}}

	_, err := newTestForecaster(fetcher).Forecast(context.Background(), "AAPL", 5)
	assert.ErrorIs(t, err, collector.ErrNoData)
}
