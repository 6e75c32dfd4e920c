package collector

import (
	"context"
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics"

	"stockdash/internal/model"
)

// instrumentingMiddleware wraps a Fetcher and records request metrics.
type instrumentingMiddleware struct {
	reqCount    metrics.Counter
	reqDuration metrics.Histogram
	next        Fetcher
}

// NewInstrumentingMiddleware returns a Fetcher that counts and times provider calls.
// Both metrics must carry the label names "provider", "method" and "error".
func NewInstrumentingMiddleware(reqCount metrics.Counter, reqDuration metrics.Histogram, next Fetcher) Fetcher {
	return &instrumentingMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		next:        next,
	}
}

func (m *instrumentingMiddleware) Name() string { return m.next.Name() }

func (m *instrumentingMiddleware) FetchProfile(ctx context.Context, ticker string) (p *model.CompanyProfile, err error) {
	defer func(begin time.Time) { m.recordMetrics("FetchProfile", begin, err) }(time.Now())
	return m.next.FetchProfile(ctx, ticker)
}

func (m *instrumentingMiddleware) FetchSeries(ctx context.Context, ticker string, rng *model.DateRange) (s *model.PriceSeries, err error) {
	defer func(begin time.Time) { m.recordMetrics("FetchSeries", begin, err) }(time.Now())
	return m.next.FetchSeries(ctx, ticker, rng)
}

func (m *instrumentingMiddleware) recordMetrics(method string, begin time.Time, err error) {
	labels := []string{
		"provider", m.next.Name(),
		"method", method,
		"error", strconv.FormatBool(err != nil),
	}
	m.reqCount.With(labels...).Add(1)
	m.reqDuration.With(labels...).Observe(time.Since(begin).Seconds())
}
