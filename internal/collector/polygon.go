package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"stockdash/internal/model"
)

// polygonDefaultHistory is the window used when no date range is selected.
const polygonDefaultHistory = 2 * 365 * 24 * time.Hour

// PolygonFetcher implements Fetcher using the Polygon.io REST API.
type PolygonFetcher struct {
	Client *polygon.Client
	now    func() time.Time
}

// NewPolygonFetcher creates a Polygon fetcher. hc may be nil to use the library default client.
func NewPolygonFetcher(apiKey string, hc *http.Client) *PolygonFetcher {
	c := polygon.New(apiKey)
	if hc != nil {
		c = polygon.NewWithClient(apiKey, hc)
	}
	return &PolygonFetcher{Client: c, now: time.Now}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

// FetchSeries lists daily aggregates for the window; without one it covers the last two years.
func (f *PolygonFetcher) FetchSeries(ctx context.Context, ticker string, rng *model.DateRange) (*model.PriceSeries, error) {
	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	to := f.now()
	from := to.Add(-polygonDefaultHistory)
	if rng != nil {
		from, to = rng.Start, rng.End
	}

	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithOrder(models.Asc).WithAdjusted(true).WithLimit(50000)

	iter := f.Client.ListAggs(ctx, params)
	var bars []model.OHLCV
	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, model.OHLCV{
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("polygon list aggs: %w", err)
	}
	return &model.PriceSeries{Symbol: ticker, Bars: bars, FetchedAt: time.Now()}, nil
}

// FetchProfile reads the ticker details endpoint.
func (f *PolygonFetcher) FetchProfile(ctx context.Context, ticker string) (*model.CompanyProfile, error) {
	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	resp, err := f.Client.GetTickerDetails(ctx, &models.GetTickerDetailsParams{Ticker: ticker})
	if err != nil {
		return nil, fmt.Errorf("polygon ticker details: %w", err)
	}
	profile := &model.CompanyProfile{
		Symbol:      ticker,
		Name:        resp.Results.Name,
		LogoURL:     resp.Results.Branding.LogoURL,
		Description: resp.Results.Description,
	}
	if err := checkProfile(profile); err != nil {
		return nil, fmt.Errorf("polygon %s: %w", ticker, err)
	}
	return profile, nil
}
