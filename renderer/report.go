package renderer

import (
	"fmt"

	"github.com/etnz/bourse"
	"github.com/etnz/bourse/analysis"
)

// Report is the data displayed by the report templates, already formatted.
type Report struct {
	Symbol     string      `json:"symbol"`
	Days       int         `json:"days"`
	From       string      `json:"from"`
	To         string      `json:"to"`
	Close      string      `json:"close"`
	Indicators []Indicator `json:"indicators"`
	Insights   string      `json:"insights"`
	Chart      string      `json:"chart"` // Chart image location, if any.
}

// Indicator is one row of the indicators table.
type Indicator struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Signal string `json:"signal"`
}

// NewReport creates the report of an analysis, chart is the location of the chart image, if any.
func NewReport(res *analysis.Result, chart string) *Report {
	sum := res.Summary
	span := res.Series.Span()
	r := &Report{
		Symbol:   res.Series.Symbol,
		Days:     res.Series.Len(),
		From:     span.From.String(),
		To:       span.To.String(),
		Close:    sum.Price(sum.Close),
		Insights: res.Insights,
		Chart:    chart,
	}

	average := func(name string, v float64) Indicator {
		ind := Indicator{Name: name, Value: sum.Price(v)}
		if bourse.Defined(v) {
			ind.Signal = sum.Trend(v)
		}
		return ind
	}
	rsi := Indicator{Name: fmt.Sprintf("RSI (%d)", bourse.RSIPeriod), Value: "n/a"}
	if bourse.Defined(sum.RSI) {
		rsi.Value = fmt.Sprintf("%.1f", sum.RSI)
		rsi.Signal = sum.Momentum()
	}
	r.Indicators = []Indicator{
		average("50-Day MA", sum.MA50),
		average("200-Day MA", sum.MA200),
		rsi,
		{Name: "Volume", Value: sum.FormattedVolume()},
	}
	return r
}
