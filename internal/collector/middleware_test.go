package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := NewLoggingMiddleware(logger, &MockFetcher{Price: 50})
	assert.Equal(t, "mock", f.Name())

	_, err := f.FetchSeries(context.Background(), "IBM", nil)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "FetchSeries", entry.Data["method"])
	assert.Equal(t, "IBM", entry.Data["ticker"])
	assert.Equal(t, "mock", entry.Data["provider"])
}

func TestLoggingMiddleware_Error(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	f := NewLoggingMiddleware(logger, &MockFetcher{Err: errors.New("provider down")})
	_, err := f.FetchProfile(context.Background(), "IBM")
	require.Error(t, err)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, "FetchProfile", e.Data["method"])
		}
	}
	assert.True(t, warned, "expected a warning for the failed call")
}

// labelCounter records the label values of every Add.
type labelCounter struct {
	labels []string
	seen   *[][]string
}

func (c labelCounter) With(lvs ...string) metrics.Counter {
	return labelCounter{labels: append(append([]string{}, c.labels...), lvs...), seen: c.seen}
}

func (c labelCounter) Add(float64) { *c.seen = append(*c.seen, c.labels) }

func TestInstrumentingMiddleware(t *testing.T) {
	var seen [][]string
	count := labelCounter{seen: &seen}

	f := NewInstrumentingMiddleware(count, discard.NewHistogram(), &MockFetcher{Price: 50})
	_, err := f.FetchSeries(context.Background(), "IBM", nil)
	require.NoError(t, err)
	_, err = f.FetchProfile(context.Background(), "IBM")
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, []string{"provider", "mock", "method", "FetchSeries", "error", "false"}, seen[0])
	assert.Equal(t, []string{"provider", "mock", "method", "FetchProfile", "error", "false"}, seen[1])
}
