package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stockdash/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Profile *model.CompanyProfile
	Bars    []model.OHLCV
	Err     error

	mu            sync.Mutex
	profileCalls  int
	seriesCalls   int
	lastRange     *model.DateRange
	lastSeriesTkr string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchProfile(_ context.Context, ticker string) (*model.CompanyProfile, error) {
	m.mu.Lock()
	m.profileCalls++
	m.mu.Unlock()

	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Profile != nil {
		p := *m.Profile
		return &p, nil
	}
	return &model.CompanyProfile{
		Symbol:      ticker,
		Name:        ticker + " Inc.",
		LogoURL:     fmt.Sprintf("https://logo.example.com/%s.png", ticker),
		Description: fmt.Sprintf("%s is a mock company used for development.", ticker),
	}, nil
}

func (m *MockFetcher) FetchSeries(_ context.Context, ticker string, rng *model.DateRange) (*model.PriceSeries, error) {
	m.mu.Lock()
	m.seriesCalls++
	m.lastRange = rng
	m.lastSeriesTkr = ticker
	m.mu.Unlock()

	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	if m.Err != nil {
		return nil, m.Err
	}
	bars := m.Bars
	if bars == nil {
		bars = generateMockBars(m.Price, rng)
	}
	return &model.PriceSeries{Symbol: ticker, Bars: bars, FetchedAt: time.Now()}, nil
}

// Calls returns how many profile and series fetches were made.
func (m *MockFetcher) Calls() (profile, series int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profileCalls, m.seriesCalls
}

// LastSeriesRequest returns the ticker and range of the most recent series fetch.
func (m *MockFetcher) LastSeriesRequest() (string, *model.DateRange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSeriesTkr, m.lastRange
}

// generateMockBars builds one bar per calendar day over rng, or the last 90 days when rng is nil.
func generateMockBars(basePrice float64, rng *model.DateRange) []model.OHLCV {
	if basePrice == 0 {
		basePrice = 100
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -90)
	if rng != nil {
		start, end = rng.Start, rng.End
	}
	count := int(end.Sub(start).Hours()/24) + 1
	if count < 0 {
		count = 0
	}
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
