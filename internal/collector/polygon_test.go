package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/model"
)

// rewriteTransport sends every request to the test server regardless of host.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newPolygonTestFetcher(t *testing.T, handler http.HandlerFunc) *PolygonFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	f := NewPolygonFetcher("test-key", &http.Client{Transport: rewriteTransport{target: target}, Timeout: 5 * time.Second})
	f.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func TestPolygonFetcher_FetchSeries(t *testing.T) {
	var gotPath string
	f := newPolygonTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ticker":"AAPL","status":"OK","queryCount":2,"resultsCount":2,"adjusted":true,
"results":[{"o":10,"c":10.2,"h":10.5,"l":9.5,"v":1000,"t":1704240000000},
           {"o":12.5,"c":12.8,"h":13,"l":12,"v":2000,"t":1704412800000}]}`))
	})

	rng := &model.DateRange{
		Start: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	series, err := f.FetchSeries(context.Background(), "AAPL", rng)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/v2/aggs/ticker/AAPL/range/1/day/"), gotPath)
	require.Len(t, series.Bars, 2)
	assert.Equal(t, "2024-01-03", series.Bars[0].Time.Format(model.DateLayout))
	assert.Equal(t, 10.2, series.Bars[0].Close)
	assert.Equal(t, 12.5, series.Bars[1].Open)
}

func TestPolygonFetcher_FetchProfile(t *testing.T) {
	f := newPolygonTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/reference/tickers/AAPL", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":{"ticker":"AAPL","name":"Apple Inc.",
"description":"Makes phones.","branding":{"logo_url":"https://api.polygon.io/v1/reference/company-branding/apple/logo.svg"}}}`))
	})

	p, err := f.FetchProfile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", p.Name)
	assert.Equal(t, "Makes phones.", p.Description)
	assert.Contains(t, p.LogoURL, "logo.svg")
}

func TestPolygonFetcher_FetchProfile_MissingBranding(t *testing.T) {
	f := newPolygonTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":{"ticker":"AAPL","name":"Apple Inc.","description":"Makes phones."}}`))
	})

	_, err := f.FetchProfile(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestPolygonFetcher_EmptyTicker(t *testing.T) {
	f := NewPolygonFetcher("test-key", nil)

	_, err := f.FetchSeries(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyTicker)
	_, err = f.FetchProfile(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyTicker)
}
