package calculator

import (
	"errors"

	"stockdash/internal/model"
)

// EMA computes the span-based exponential moving average without bias adjustment:
// out[0] = values[0], out[i] = a*values[i] + (1-a)*out[i-1] with a = 2/(span+1).
// The result always has the same length as values.
func EMA(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// CalculateEMA20 returns the 20-period EMA of the series' close prices.
func CalculateEMA20(series *model.PriceSeries) ([]float64, error) {
	return EMA(series.Closes(), 20)
}
