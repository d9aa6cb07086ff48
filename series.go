package bourse

import (
	"iter"
	"math"

	"github.com/etnz/bourse/date"
)

// Observation is one trading day of a series.
//
// MA50, MA200 and RSI are derived by Analyze. Until they can be computed they
// hold NaN, use Defined to test them.
type Observation struct {
	Date   date.Date
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	MA50  float64
	MA200 float64
	RSI   float64
}

// Undefined is the value of a derived field that cannot be computed.
var Undefined = math.NaN()

// Defined reports whether a derived value has been computed.
func Defined(v float64) bool { return !math.IsNaN(v) }

// newObservation returns an observation with its derived fields undefined.
func newObservation(on date.Date) Observation {
	return Observation{Date: on, MA50: Undefined, MA200: Undefined, RSI: Undefined}
}

// Series is a canonical time series: observations strictly sorted by date, with unique dates.
type Series struct {
	Symbol       string        `json:"symbol,omitempty"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.Observations) }

// Last returns the most recent observation, and false if the series is empty.
func (s *Series) Last() (Observation, bool) {
	if len(s.Observations) == 0 {
		return Observation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

// Values returns an iterator over all observations in chronological order.
func (s *Series) Values() iter.Seq2[date.Date, Observation] {
	return func(yield func(date.Date, Observation) bool) {
		for _, o := range s.Observations {
			if !yield(o.Date, o) {
				return
			}
		}
	}
}

// Dates returns the series dates.
func (s *Series) Dates() []date.Date {
	dates := make([]date.Date, len(s.Observations))
	for i, o := range s.Observations {
		dates[i] = o.Date
	}
	return dates
}

// Closes returns the close prices.
func (s *Series) Closes() []float64 { return s.column(func(o Observation) float64 { return o.Close }) }

// Volumes returns the traded volumes.
func (s *Series) Volumes() []float64 { return s.column(func(o Observation) float64 { return o.Volume }) }

func (s *Series) column(f func(Observation) float64) []float64 {
	values := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		values[i] = f(o)
	}
	return values
}

// Span returns the range of dates covered by the series.
func (s *Series) Span() date.Range {
	if len(s.Observations) == 0 {
		return date.Range{}
	}
	return date.NewRange(s.Observations[0].Date, s.Observations[len(s.Observations)-1].Date)
}

// Between returns a new series with the observations inside r.
//
// Derived values are copied as is, call Analyze again to compute them on the
// shorter history.
func (s *Series) Between(r date.Range) *Series {
	sub := &Series{Symbol: s.Symbol}
	for _, o := range s.Observations {
		if r.Contains(o.Date) {
			sub.Observations = append(sub.Observations, o)
		}
	}
	return sub
}
