package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"stockdash/internal/dashboard"
	"stockdash/internal/model"
)

// errBadForm marks request decoding failures; they are reported like input guard errors.
var errBadForm = errors.New("invalid form")

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(true)
	return d
}()

type profileForm struct {
	Ticker  string `schema:"ticker"`
	NClicks int    `schema:"n_clicks"`
}

type chartForm struct {
	Ticker    string `schema:"ticker"`
	StartDate string `schema:"start_date"`
	EndDate   string `schema:"end_date"`
	NClicks   int    `schema:"n_clicks"`
}

type forecastForm struct {
	Ticker  string `schema:"ticker"`
	Days    string `schema:"days"`
	NClicks int    `schema:"n_clicks"`
}

func decodeForm(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", errBadForm, err)
	}
	if err := decoder.Decode(dst, r.Form); err != nil {
		return fmt.Errorf("%w: %v", errBadForm, err)
	}
	return nil
}

func (f profileForm) input() dashboard.ProfileInput {
	return dashboard.ProfileInput{Clicks: f.NClicks, Ticker: f.Ticker}
}

func (f forecastForm) input() dashboard.ForecastInput {
	return dashboard.ForecastInput{Clicks: f.NClicks, Ticker: f.Ticker, Days: f.Days}
}

func (f chartForm) input(now time.Time) (dashboard.ChartInput, error) {
	rng, err := parseRange(f.StartDate, f.EndDate, now)
	if err != nil {
		return dashboard.ChartInput{}, err
	}
	return dashboard.ChartInput{Clicks: f.NClicks, Ticker: f.Ticker, Range: rng}, nil
}

// parseRange returns nil when no start date is selected. A start without an end runs to today.
func parseRange(start, end string, now time.Time) (*model.DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" {
		return nil, nil
	}
	s, err := time.Parse(model.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date %q is not YYYY-MM-DD", errBadForm, start)
	}
	e := now.UTC().Truncate(24 * time.Hour)
	if end != "" {
		if e, err = time.Parse(model.DateLayout, end); err != nil {
			return nil, fmt.Errorf("%w: end_date %q is not YYYY-MM-DD", errBadForm, end)
		}
	}
	if e.Before(s) {
		return nil, fmt.Errorf("%w: end_date %s is before start_date %s", errBadForm, end, start)
	}
	return &model.DateRange{Start: s, End: e}, nil
}
