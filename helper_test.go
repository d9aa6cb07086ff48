package bourse

import (
	"fmt"
	"strings"

	"github.com/etnz/bourse/date"
)

// newSeries is a helper for test to create a series of consecutive days from close prices.
func newSeries(closes ...float64) *Series {
	s := &Series{Symbol: "TEST"}
	start := date.New(2024, 1, 1)
	for i, c := range closes {
		o := newObservation(start.Add(i))
		o.Symbol = "TEST"
		o.Open, o.High, o.Low, o.Close, o.Volume = c, c+1, c-1, c, 1000
		s.Observations = append(s.Observations, o)
	}
	return s
}

// ramp returns n close prices starting at from and increasing by step.
func ramp(from, step float64, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = from + step*float64(i)
	}
	return values
}

// frenchCSV is a helper for test to write a price file with the French conventions.
func frenchCSV(header string, rows ...string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(r)
		b.WriteString("\n")
	}
	return b.String()
}

const frenchHeader = "symbole;date;ouverture;haut;bas;cloture;volume"

// frenchRow formats a row for frenchHeader.
func frenchRow(day, open, high, low, close, volume string) string {
	return fmt.Sprintf("AIR;%s;%s;%s;%s;%s;%s", day, open, high, low, close, volume)
}
