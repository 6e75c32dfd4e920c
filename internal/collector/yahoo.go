package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"stockdash/internal/model"
)

const (
	defaultYahooChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultYahooSummaryURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary"
	defaultLogoURL         = "https://logo.clearbit.com"
)

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	Client     *http.Client
	ChartURL   string
	SummaryURL string
	LogoURL    string
}

// NewHTTPClient builds the client shared by the HTTP providers, routed through proxyURL when set.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, timeout time.Duration) *YahooFetcher {
	return &YahooFetcher{
		Client:     NewHTTPClient(proxyURL, timeout),
		ChartURL:   defaultYahooChartURL,
		SummaryURL: defaultYahooSummaryURL,
		LogoURL:    defaultLogoURL,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// yahooSummary is the response structure from the quoteSummary API.
type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				LongBusinessSummary string `json:"longBusinessSummary"`
				Website             string `json:"website"`
			} `json:"assetProfile"`
			Price struct {
				ShortName string `json:"shortName"`
			} `json:"price"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func at(values []interface{}, i int) interface{} {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func (f *YahooFetcher) get(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	// Unknown symbols come back as 404 with an error payload; decode it for a readable message.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// FetchSeries returns daily bars for the window, or the full history when rng is nil.
func (f *YahooFetcher) FetchSeries(ctx context.Context, ticker string, rng *model.DateRange) (*model.PriceSeries, error) {
	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	q := url.Values{}
	q.Set("interval", "1d")
	if rng != nil {
		q.Set("period1", strconv.FormatInt(rng.Start.Unix(), 10))
		q.Set("period2", strconv.FormatInt(rng.End.Unix(), 10))
	} else {
		q.Set("range", "max")
	}
	u := fmt.Sprintf("%s/%s?%s", f.ChartURL, url.PathEscape(ticker), q.Encode())

	var chart yahooChart
	if err := f.get(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, ErrNoData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o := toFloat(at(quote.Open, i))
		h := toFloat(at(quote.High, i))
		l := toFloat(at(quote.Low, i))
		c := toFloat(at(quote.Close, i))
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(at(quote.Volume, i)),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return &model.PriceSeries{Symbol: ticker, Bars: bars, FetchedAt: time.Now()}, nil
}

// FetchProfile returns the company name, business summary and a logo derived from its website.
func (f *YahooFetcher) FetchProfile(ctx context.Context, ticker string) (*model.CompanyProfile, error) {
	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	u := fmt.Sprintf("%s/%s?modules=assetProfile,price", f.SummaryURL, url.PathEscape(ticker))

	var summary yahooSummary
	if err := f.get(ctx, u, &summary); err != nil {
		return nil, err
	}
	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, ErrNoData)
	}

	r := summary.QuoteSummary.Result[0]
	profile := &model.CompanyProfile{
		Symbol:      ticker,
		Name:        r.Price.ShortName,
		Description: r.AssetProfile.LongBusinessSummary,
		LogoURL:     f.logoFor(r.AssetProfile.Website),
	}
	if err := checkProfile(profile); err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	return profile, nil
}

func (f *YahooFetcher) logoFor(website string) string {
	if website == "" {
		return ""
	}
	u, err := url.Parse(website)
	if err != nil || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", f.LogoURL, strings.TrimPrefix(u.Host, "www."))
}

// checkProfile rejects profiles missing any of the three displayed fields.
func checkProfile(p *model.CompanyProfile) error {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.LogoURL == "" {
		missing = append(missing, "logo url")
	}
	if p.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}
	return nil
}
