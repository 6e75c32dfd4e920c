package collector

import (
	"context"
	"errors"

	"stockdash/internal/model"
)

var (
	// ErrEmptyTicker is returned when a fetch is attempted without a symbol.
	ErrEmptyTicker = errors.New("ticker is empty")
	// ErrNoData is returned when the provider answers without any bars.
	ErrNoData = errors.New("no data returned")
	// ErrMalformedResponse is returned when a provider response lacks an expected field.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchProfile(ctx context.Context, ticker string) (*model.CompanyProfile, error)
	// FetchSeries returns daily bars for rng, or the provider's default history when rng is nil.
	FetchSeries(ctx context.Context, ticker string, rng *model.DateRange) (*model.PriceSeries, error)
	Name() string
}
