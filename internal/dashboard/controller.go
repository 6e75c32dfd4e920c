// Package dashboard implements the four dashboard handlers: profile, price chart,
// indicator chart and forecast. Each handler reads the UI values captured at click
// time, guards its input, calls the fetcher or forecaster and returns one output set.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/kit/metrics"
	log "github.com/sirupsen/logrus"

	"stockdash/internal/chart"
	"stockdash/internal/collector"
	"stockdash/internal/forecast"
	"stockdash/internal/model"
	"stockdash/internal/recorder"
)

// PromptMessage is shown in the description slot until a ticker is submitted.
const PromptMessage = "Hey there! Please enter a legitimate stock code to get details"

// Handler names, used for logs, metrics and the journal.
const (
	HandlerProfile   = "profile"
	HandlerPrice     = "price"
	HandlerIndicator = "indicator"
	HandlerForecast  = "forecast"
)

var (
	// ErrEmptyTicker is returned by handlers that require a ticker.
	ErrEmptyTicker = errors.New("please enter a stock ticker")
	// ErrInvalidDays is returned when the forecast days field is not a positive integer.
	ErrInvalidDays = errors.New("number of days to forecast must be a whole number from 1 to 365")
)

// MaxForecastDays is the largest accepted days field. The forecaster is asked for one more point.
const MaxForecastDays = forecast.MaxHorizonDays - 1

// IsInputError reports whether err came from an input guard rather than a collaborator.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyTicker) ||
		errors.Is(err, ErrInvalidDays) ||
		errors.Is(err, forecast.ErrInvalidHorizon)
}

// ProfileInput is the state read when Submit is clicked.
type ProfileInput struct {
	Clicks int
	Ticker string
}

// ProfileOutput fills the description, logo and name slots. Message replaces the
// description when no profile was fetched.
type ProfileOutput struct {
	Description string
	LogoURL     string
	Name        string
	Message     string
}

// ChartInput is the state read when Stock Price or Indicator is clicked.
type ChartInput struct {
	Clicks int
	Ticker string
	Range  *model.DateRange
}

// ForecastInput is the state read when the forecast button is clicked.
type ForecastInput struct {
	Clicks int
	Ticker string
	Days   string
}

// ChartOutput fills one chart slot; a nil Chart leaves the slot blank.
type ChartOutput struct {
	Chart *chart.Spec
}

// Empty reports whether the slot stays blank.
func (o ChartOutput) Empty() bool { return o.Chart == nil }

// Controller binds the handlers to their collaborators.
type Controller struct {
	Fetcher    collector.Fetcher
	Forecaster forecast.Forecaster
	Recorder   recorder.Recorder
	Logger     log.FieldLogger
	// Invocations counts handler runs labelled by "handler" and "outcome". Optional.
	Invocations metrics.Counter
}

// NewController creates a Controller with a no-op journal and the standard logger.
func NewController(fetcher collector.Fetcher, forecaster forecast.Forecaster) *Controller {
	return &Controller{
		Fetcher:    fetcher,
		Forecaster: forecaster,
		Recorder:   recorder.NewNoopRecorder(),
		Logger:     log.StandardLogger(),
	}
}

// Profile fetches company metadata. Without a click or a ticker it only prompts.
func (c *Controller) Profile(ctx context.Context, in ProfileInput) (out ProfileOutput, err error) {
	ticker := model.NormalizeTicker(in.Ticker)
	outcome := recorder.OutcomeRendered
	defer c.finish(HandlerProfile, ticker, time.Now(), &outcome, &err)

	if in.Clicks == 0 || ticker == "" {
		outcome = recorder.OutcomeNoop
		return ProfileOutput{Message: PromptMessage}, nil
	}

	profile, err := c.Fetcher.FetchProfile(ctx, ticker)
	if err != nil {
		return ProfileOutput{}, fmt.Errorf("fetch profile for %s: %w", ticker, err)
	}
	return ProfileOutput{
		Description: profile.Description,
		LogoURL:     profile.LogoURL,
		Name:        profile.Name,
	}, nil
}

// PriceChart renders open and close prices for the selected range.
func (c *Controller) PriceChart(ctx context.Context, in ChartInput) (out ChartOutput, err error) {
	ticker := model.NormalizeTicker(in.Ticker)
	outcome := recorder.OutcomeRendered
	defer c.finish(HandlerPrice, ticker, time.Now(), &outcome, &err)

	if in.Clicks == 0 {
		outcome = recorder.OutcomeNoop
		return ChartOutput{}, nil
	}
	if ticker == "" {
		return ChartOutput{}, ErrEmptyTicker
	}

	series, err := c.Fetcher.FetchSeries(ctx, ticker, in.Range)
	if err != nil {
		return ChartOutput{}, fmt.Errorf("fetch prices for %s: %w", ticker, err)
	}
	spec := chart.BuildPriceChart(series)
	return ChartOutput{Chart: &spec}, nil
}

// Indicator renders the 20-period EMA. An empty ticker leaves the slot blank.
func (c *Controller) Indicator(ctx context.Context, in ChartInput) (out ChartOutput, err error) {
	ticker := model.NormalizeTicker(in.Ticker)
	outcome := recorder.OutcomeRendered
	defer c.finish(HandlerIndicator, ticker, time.Now(), &outcome, &err)

	if in.Clicks == 0 || ticker == "" {
		outcome = recorder.OutcomeNoop
		return ChartOutput{}, nil
	}

	series, err := c.Fetcher.FetchSeries(ctx, ticker, in.Range)
	if err != nil {
		return ChartOutput{}, fmt.Errorf("fetch prices for %s: %w", ticker, err)
	}
	spec := chart.BuildIndicatorChart(series)
	return ChartOutput{Chart: &spec}, nil
}

// Forecast parses the days field and asks the forecaster for days+1 points.
func (c *Controller) Forecast(ctx context.Context, in ForecastInput) (out ChartOutput, err error) {
	ticker := model.NormalizeTicker(in.Ticker)
	outcome := recorder.OutcomeRendered
	defer c.finish(HandlerForecast, ticker, time.Now(), &outcome, &err)

	if in.Clicks == 0 {
		outcome = recorder.OutcomeNoop
		return ChartOutput{}, nil
	}
	if ticker == "" {
		return ChartOutput{}, ErrEmptyTicker
	}
	days, err := ParseDays(in.Days)
	if err != nil {
		return ChartOutput{}, err
	}

	spec, err := c.Forecaster.Forecast(ctx, ticker, days+1)
	if err != nil {
		return ChartOutput{}, fmt.Errorf("forecast %s: %w", ticker, err)
	}
	return ChartOutput{Chart: &spec}, nil
}

// ParseDays reads the forecast days field as an integer in 1..MaxForecastDays.
func ParseDays(raw string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDays, raw)
	}
	if days <= 0 || days > MaxForecastDays {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDays, days)
	}
	return days, nil
}

// finish logs, counts and journals a handler run. Journal failures never change the result.
func (c *Controller) finish(handler, ticker string, begin time.Time, outcome *recorder.Outcome, err *error) {
	evt := &recorder.HandlerEvent{
		Handler: handler,
		Ticker:  ticker,
		Outcome: *outcome,
		Elapsed: time.Since(begin),
		At:      begin,
	}
	if *err != nil {
		evt.Outcome = recorder.OutcomeFailed
		if IsInputError(*err) {
			evt.Outcome = recorder.OutcomeRejected
		}
		evt.Error = (*err).Error()
	}

	entry := c.logger().WithFields(log.Fields{
		"handler": handler,
		"ticker":  ticker,
		"outcome": evt.Outcome,
		"elapsed": evt.Elapsed,
	})
	switch evt.Outcome {
	case recorder.OutcomeFailed:
		entry.WithError(*err).Error("handler failed")
	case recorder.OutcomeRejected:
		entry.WithError(*err).Info("handler rejected input")
	default:
		entry.Debug("handler done")
	}

	if c.Invocations != nil {
		c.Invocations.With("handler", handler, "outcome", string(evt.Outcome)).Add(1)
	}
	if c.Recorder != nil {
		if rerr := c.Recorder.RecordHandler(evt); rerr != nil {
			entry.WithError(rerr).Warn("record handler event")
		}
	}
}

func (c *Controller) logger() log.FieldLogger {
	if c.Logger == nil {
		return log.StandardLogger()
	}
	return c.Logger
}
