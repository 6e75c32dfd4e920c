// Package forecast holds the placeholder forward forecast shown on the dashboard.
// It is not a predictive model: it extends a least-squares line through recent closes.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"stockdash/internal/chart"
	"stockdash/internal/collector"
	"stockdash/internal/model"
)

// ErrInvalidHorizon is returned for a horizon outside 1..MaxHorizonDays.
var ErrInvalidHorizon = errors.New("forecast horizon out of range")

const (
	// DefaultLookbackDays is the history window the trend is fitted on.
	DefaultLookbackDays = 60
	// MaxHorizonDays bounds the number of projected points.
	MaxHorizonDays = 366
)

// Forecaster produces a chart of predicted values for the next horizonDays days.
type Forecaster interface {
	Forecast(ctx context.Context, ticker string, horizonDays int) (chart.Spec, error)
}

// TrendForecaster fits a straight line through recent closes and extends it forward.
type TrendForecaster struct {
	Fetcher      collector.Fetcher
	LookbackDays int
	now          func() time.Time
}

// NewTrendForecaster creates a TrendForecaster. lookbackDays <= 0 uses DefaultLookbackDays.
func NewTrendForecaster(fetcher collector.Fetcher, lookbackDays int) *TrendForecaster {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &TrendForecaster{Fetcher: fetcher, LookbackDays: lookbackDays, now: time.Now}
}

// Forecast returns one predicted close per calendar day after today.
func (f *TrendForecaster) Forecast(ctx context.Context, ticker string, horizonDays int) (chart.Spec, error) {
	if horizonDays <= 0 || horizonDays > MaxHorizonDays {
		return chart.Spec{}, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidHorizon, horizonDays, MaxHorizonDays)
	}
	today := f.now().UTC().Truncate(24 * time.Hour)
	rng := &model.DateRange{Start: today.AddDate(0, 0, -f.LookbackDays), End: today}

	series, err := f.Fetcher.FetchSeries(ctx, ticker, rng)
	if err != nil {
		return chart.Spec{}, fmt.Errorf("fetch history: %w", err)
	}
	if series.Len() == 0 {
		return chart.Spec{}, fmt.Errorf("fetch history for %s: %w", ticker, collector.ErrNoData)
	}

	origin := series.Bars[0].Time
	slope, intercept, err := fitLine(series, origin)
	if err != nil {
		return chart.Spec{}, fmt.Errorf("fit trend: %w", err)
	}

	x := make([]string, horizonDays)
	y := make([]float64, horizonDays)
	for i := 0; i < horizonDays; i++ {
		day := today.AddDate(0, 0, i+1)
		x[i] = day.Format(model.DateLayout)
		y[i] = intercept + slope*daysSince(origin, day)
	}

	return chart.Spec{
		Title:  fmt.Sprintf("Predicted Close Price of next %d days", horizonDays),
		TitleX: 0.5,
		XAxis:  "Date",
		YAxis:  "Close Price",
		Traces: []chart.Trace{{Name: "Predicted", Mode: chart.ModeLinesMarkers, X: x, Y: y}},
	}, nil
}

// fitLine returns slope and intercept of the least-squares line of close over days since origin.
func fitLine(series *model.PriceSeries, origin time.Time) (slope, intercept float64, err error) {
	if series.Len() == 1 {
		return 0, series.Bars[0].Close, nil
	}
	data := make(stats.Series, series.Len())
	for i, b := range series.Bars {
		data[i] = stats.Coordinate{X: daysSince(origin, b.Time), Y: b.Close}
	}
	fitted, err := stats.LinearRegression(data)
	if err != nil {
		return 0, 0, err
	}
	first, last := fitted[0], fitted[len(fitted)-1]
	if last.X == first.X {
		mean, err := stats.Mean(series.Closes())
		if err != nil {
			return 0, 0, err
		}
		return 0, mean, nil
	}
	slope = (last.Y - first.Y) / (last.X - first.X)
	intercept = first.Y - slope*first.X
	return slope, intercept, nil
}

func daysSince(origin, t time.Time) float64 {
	return t.Sub(origin).Hours() / 24
}
