package collector

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"stockdash/internal/model"
)

// loggingMiddleware wraps a Fetcher and logs every provider call.
type loggingMiddleware struct {
	logger log.FieldLogger
	next   Fetcher
}

// NewLoggingMiddleware returns a Fetcher that logs method, ticker, elapsed time and error.
func NewLoggingMiddleware(logger log.FieldLogger, next Fetcher) Fetcher {
	return &loggingMiddleware{logger: logger, next: next}
}

func (m *loggingMiddleware) Name() string { return m.next.Name() }

func (m *loggingMiddleware) FetchProfile(ctx context.Context, ticker string) (p *model.CompanyProfile, err error) {
	defer func(begin time.Time) {
		m.log("FetchProfile", ticker, begin, err).Debug("fetch")
	}(time.Now())
	return m.next.FetchProfile(ctx, ticker)
}

func (m *loggingMiddleware) FetchSeries(ctx context.Context, ticker string, rng *model.DateRange) (s *model.PriceSeries, err error) {
	defer func(begin time.Time) {
		entry := m.log("FetchSeries", ticker, begin, err)
		if rng != nil {
			entry = entry.WithFields(log.Fields{
				"start": rng.Start.Format(model.DateLayout),
				"end":   rng.End.Format(model.DateLayout),
			})
		}
		if s != nil {
			entry = entry.WithField("bars", len(s.Bars))
		}
		entry.Debug("fetch")
	}(time.Now())
	return m.next.FetchSeries(ctx, ticker, rng)
}

func (m *loggingMiddleware) log(method, ticker string, begin time.Time, err error) *log.Entry {
	entry := m.logger.WithFields(log.Fields{
		"provider": m.next.Name(),
		"method":   method,
		"ticker":   ticker,
		"elapsed":  time.Since(begin),
	})
	if err != nil {
		entry = entry.WithError(err)
		entry.Warn("provider call failed")
	}
	return entry
}
