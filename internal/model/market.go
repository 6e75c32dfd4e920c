package model

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the UI and chart axes.
const DateLayout = "2006-01-02"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds daily bars for one ticker, oldest first.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the close prices in bar order.
func (s *PriceSeries) Closes() []float64 {
	if s == nil {
		return nil
	}
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Dates returns the bar dates formatted with DateLayout.
func (s *PriceSeries) Dates() []string {
	if s == nil {
		return nil
	}
	dates := make([]string, len(s.Bars))
	for i, b := range s.Bars {
		dates[i] = b.Time.Format(DateLayout)
	}
	return dates
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// DateRange is an optional fetch window. Start is inclusive, End is handed to the provider as is.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// CompanyProfile is the metadata shown in the dashboard header.
type CompanyProfile struct {
	Symbol      string
	Name        string
	LogoURL     string
	Description string
}

// NormalizeTicker trims whitespace and upper-cases the symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
