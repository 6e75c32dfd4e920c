// Package chart turns price series into declarative chart descriptions.
// A Spec is renderer-agnostic; its JSON field names line up with Plotly.js traces
// so the dashboard page can hand it to the browser untouched.
package chart

import (
	"stockdash/internal/calculator"
	"stockdash/internal/model"
)

// Trace render modes.
const (
	ModeLines        = "lines"
	ModeLinesMarkers = "lines+markers"
)

const (
	PriceChartTitle     = "Closing and Opening Price vs Date"
	IndicatorChartTitle = "Exponential Moving Average vs Date"
	IndicatorTraceName  = "EWA 20"
)

// Trace is one plotted series.
type Trace struct {
	Name string    `json:"name"`
	Mode string    `json:"mode"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
}

// Spec describes a chart: titles, axes and traces.
type Spec struct {
	Title  string  `json:"title"`
	TitleX float64 `json:"title_x"`
	XAxis  string  `json:"xaxis"`
	YAxis  string  `json:"yaxis"`
	Traces []Trace `json:"traces"`
}

// Empty reports whether the spec has no plotted points.
func (s Spec) Empty() bool {
	for _, t := range s.Traces {
		if len(t.Y) > 0 {
			return false
		}
	}
	return true
}

// BuildPriceChart plots close and open prices against date.
func BuildPriceChart(series *model.PriceSeries) Spec {
	dates := series.Dates()
	closes := make([]float64, 0, series.Len())
	opens := make([]float64, 0, series.Len())
	if series != nil {
		for _, b := range series.Bars {
			closes = append(closes, b.Close)
			opens = append(opens, b.Open)
		}
	}
	return Spec{
		Title:  PriceChartTitle,
		TitleX: 0.5,
		XAxis:  "Date",
		YAxis:  "value",
		Traces: []Trace{
			{Name: "Close", Mode: ModeLinesMarkers, X: nonNil(dates), Y: closes},
			{Name: "Open", Mode: ModeLinesMarkers, X: nonNil(dates), Y: opens},
		},
	}
}

// BuildIndicatorChart plots the 20-period EMA of close prices against date.
func BuildIndicatorChart(series *model.PriceSeries) Spec {
	// The span is a positive constant, so this cannot fail.
	ewa, _ := calculator.CalculateEMA20(series)
	return Spec{
		Title:  IndicatorChartTitle,
		XAxis:  "Date",
		YAxis:  IndicatorTraceName,
		Traces: []Trace{{Name: IndicatorTraceName, Mode: ModeLinesMarkers, X: nonNil(series.Dates()), Y: ewa}},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
