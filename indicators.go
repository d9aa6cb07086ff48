package bourse

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
)

// Indicator windows.
const (
	ShortWindow = 50  // MA50 window
	LongWindow  = 200 // MA200 window
	RSIPeriod   = 14
)

// NeutralRSI is the RSI of a window with neither gains nor losses.
const NeutralRSI = 50

// AnalysisError reports an unexpected failure while computing indicators.
type AnalysisError struct{ Err error }

func (e *AnalysisError) Error() string { return fmt.Sprintf("analysis error: %v", e.Err) }

func (e *AnalysisError) Unwrap() error { return e.Err }

// Analyze computes MA50, MA200 and RSI for every observation of s, and returns s.
//
// Derived values are always recomputed from the close prices, so analyzing a
// series twice gives the same result.
func Analyze(s *Series) (_ *Series, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &AnalysisError{Err: fmt.Errorf("%v", r)}
		}
	}()

	closes := s.Closes()
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, &AnalysisError{Err: fmt.Errorf("invalid close %v on %s", c, s.Observations[i].Date)}
		}
	}

	ma50 := SMA(closes, ShortWindow)
	ma200 := SMA(closes, LongWindow)
	rsi := RSI(closes, RSIPeriod)
	for i := range s.Observations {
		o := &s.Observations[i]
		o.MA50, o.MA200, o.RSI = ma50[i], ma200[i], rsi[i]
	}
	return s, nil
}

// SMA returns the simple moving average of values over a trailing window of period values.
// The first period-1 values are undefined.
func SMA(values []float64, period int) []float64 {
	out := undefined(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sma := talib.Sma(values, period)
	copy(out[period-1:], sma[period-1:])
	return out
}

// RSI returns the relative strength index of closes, using simple averages of
// gains and losses over period deltas. The first period values are undefined.
//
// A window without losses is 100, without gains is 0, and a flat window is NeutralRSI.
func RSI(closes []float64, period int) []float64 {
	out := undefined(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	// gains[j] and losses[j] are the move from closes[j] to closes[j+1].
	n := len(closes) - 1
	gains := make([]float64, n)
	losses := make([]float64, n)
	for j := 0; j < n; j++ {
		switch delta := closes[j+1] - closes[j]; {
		case delta > 0:
			gains[j] = delta
		case delta < 0:
			losses[j] = -delta
		}
	}
	avgGain := SMA(gains, period)
	avgLoss := SMA(losses, period)

	// up and down count the moves in the window, a sliding sum may not come
	// back to exactly zero.
	var up, down int
	for j := 0; j < n; j++ {
		if gains[j] > 0 {
			up++
		}
		if losses[j] > 0 {
			down++
		}
		if j >= period {
			if gains[j-period] > 0 {
				up--
			}
			if losses[j-period] > 0 {
				down--
			}
		}
		if j < period-1 {
			continue
		}
		out[j+1] = rsiOf(avgGain[j], avgLoss[j], up, down)
	}
	return out
}

func rsiOf(gain, loss float64, up, down int) float64 {
	switch {
	case up == 0 && down == 0:
		return NeutralRSI
	case down == 0:
		return 100
	case up == 0:
		return 0
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}

func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = Undefined
	}
	return out
}
