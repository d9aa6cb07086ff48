package bourse

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/etnz/bourse/date"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// seriesOptions compares series, including undefined values.
var seriesOptions = cmp.Options{
	cmpopts.EquateNaNs(),
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
}

func TestAnalyze_MovingAverages(t *testing.T) {
	s := newSeries(ramp(100, 1, 60)...)
	if _, err := Analyze(s); err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}

	for i, o := range s.Observations {
		if i < ShortWindow-1 && Defined(o.MA50) {
			t.Errorf("MA50[%d] = %v, want undefined", i, o.MA50)
		}
		if Defined(o.MA200) {
			t.Errorf("MA200[%d] = %v, want undefined with only 60 observations", i, o.MA200)
		}
	}
	if got, want := s.Observations[49].MA50, 124.5; got != want {
		t.Errorf("MA50[49] = %v, want %v", got, want)
	}
	if got, want := s.Observations[59].MA50, 134.5; got != want {
		t.Errorf("MA50[59] = %v, want %v", got, want)
	}
}

func TestSMA(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	values := make([]float64, 300)
	for i := range values {
		values[i] = 50 + r.Float64()*100
	}

	for _, period := range []int{1, 14, 50, 200, 300} {
		got := SMA(values, period)
		for i := range values {
			if i < period-1 {
				if Defined(got[i]) {
					t.Errorf("SMA(%d)[%d] = %v, want undefined", period, i, got[i])
				}
				continue
			}
			sum := 0.0
			for _, v := range values[i-period+1 : i+1] {
				sum += v
			}
			if want := sum / float64(period); math.Abs(got[i]-want) > 1e-9 {
				t.Errorf("SMA(%d)[%d] = %v, want %v", period, i, got[i], want)
			}
		}
	}

	if got := SMA(values[:10], 50); len(got) != 10 || Defined(got[9]) {
		t.Errorf("SMA on a short series must be undefined, got %v", got)
	}
	if got := SMA(nil, 14); len(got) != 0 {
		t.Errorf("SMA(nil) = %v, want empty", got)
	}
}

func TestRSI(t *testing.T) {
	// 7 gains of 2 and 7 losses of 1 alternated: rs = 1/0.5
	closes := []float64{100}
	for i := 0; i < 7; i++ {
		closes = append(closes, closes[len(closes)-1]+2, closes[len(closes)-1]+1)
	}

	testCases := []struct {
		name   string
		closes []float64
		want   float64 // value expected from index RSIPeriod on.
	}{
		{"increasing saturates to 100", ramp(100, 1, 30), 100},
		{"decreasing is 0", ramp(100, -1, 30), 0},
		{"flat is neutral", ramp(100, 0, 30), NeutralRSI},
		{"mixed", closes, 100 - 100/3.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := RSI(tc.closes, RSIPeriod)
			if len(got) != len(tc.closes) {
				t.Fatalf("got %d values, want %d", len(got), len(tc.closes))
			}
			for i, v := range got {
				if i < RSIPeriod {
					if Defined(v) {
						t.Errorf("RSI[%d] = %v, want undefined", i, v)
					}
					continue
				}
				if math.Abs(v-tc.want) > 1e-9 {
					t.Errorf("RSI[%d] = %v, want %v", i, v, tc.want)
				}
			}
		})
	}
}

func TestRSI_SaturatesAfterLossesLeaveTheWindow(t *testing.T) {
	// A single loss of 0.1 followed by gains of 0.1: once the loss is out of
	// the 14 deltas window, the RSI is exactly 100 whatever the rounding of
	// the sliding averages.
	closes := []float64{10, 9.9}
	for i := 0; i < 30; i++ {
		closes = append(closes, closes[len(closes)-1]+0.1)
	}
	got := RSI(closes, RSIPeriod)
	for i := RSIPeriod + 1; i < len(got); i++ {
		if got[i] != 100 {
			t.Errorf("RSI[%d] = %v, want exactly 100", i, got[i])
		}
	}
	if got[RSIPeriod] >= 100 {
		t.Errorf("RSI[%d] = %v, want below 100 with a loss in the window", RSIPeriod, got[RSIPeriod])
	}
}

func TestRSI_NonDecreasing(t *testing.T) {
	// Non decreasing with some flat days still saturates while gains remain in the window.
	closes := []float64{100, 100, 101, 101, 102, 103, 103, 104, 105, 105, 106, 107, 107, 108, 109, 109, 110}
	got := RSI(closes, RSIPeriod)
	for i := RSIPeriod; i < len(got); i++ {
		if got[i] != 100 {
			t.Errorf("RSI[%d] = %v, want 100", i, got[i])
		}
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	closes := []float64{100}
	for i := 1; i < 260; i++ {
		closes = append(closes, closes[i-1]*(1+(r.Float64()-0.5)/20))
	}
	s := newSeries(closes...)

	if _, err := Analyze(s); err != nil {
		t.Fatalf("first Analyze() failed: %v", err)
	}
	first := &Series{Symbol: s.Symbol, Observations: append([]Observation(nil), s.Observations...)}

	if _, err := Analyze(s); err != nil {
		t.Fatalf("second Analyze() failed: %v", err)
	}
	if diff := cmp.Diff(first, s, seriesOptions); diff != "" {
		t.Errorf("Analyze() is not idempotent (-first +second):\n%s", diff)
	}

	last, _ := s.Last()
	if !Defined(last.MA50) || !Defined(last.MA200) || !Defined(last.RSI) {
		t.Errorf("last observation should have all indicators, got %+v", last)
	}
	if last.RSI < 0 || last.RSI > 100 {
		t.Errorf("RSI = %v out of [0,100]", last.RSI)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	s := newSeries(1, 2, math.NaN(), 4)
	_, err := Analyze(s)
	var aerr *AnalysisError
	if !errors.As(err, &aerr) {
		t.Fatalf("Analyze() error = %v, want an *AnalysisError", err)
	}

	empty := &Series{}
	if _, err := Analyze(empty); err != nil {
		t.Errorf("Analyze() on an empty series failed: %v", err)
	}
}
