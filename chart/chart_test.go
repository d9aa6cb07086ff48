package chart

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/etnz/bourse"
	"github.com/etnz/bourse/date"
	"gonum.org/v1/plot/vg"
)

func analyzed(t *testing.T, n int) *bourse.Series {
	t.Helper()
	s := &bourse.Series{Symbol: "AIR"}
	start := date.New(2024, 1, 1)
	for i := range n {
		c := 100 + 10*math.Sin(float64(i)/10)
		s.Observations = append(s.Observations, bourse.Observation{
			Date:   start.Add(i),
			Symbol: "AIR",
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: float64(1000 + 10*i),
		})
	}
	if _, err := bourse.Analyze(s); err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	return s
}

func TestRender(t *testing.T) {
	s := analyzed(t, 250)
	data, err := Options{Width: 7 * vg.Inch, Height: 5 * vg.Inch, DPI: 50}.Render(s)
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Render() did not return a PNG: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 350 || got.Y != 250 {
		t.Errorf("image size = %v, want 350x250", got)
	}
}

func TestRender_Short(t *testing.T) {
	// Two points: no average nor RSI is defined yet.
	s := analyzed(t, 2)
	data, err := Options{DPI: 40}.Render(s)
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if len(data) == 0 {
		t.Errorf("Render() returned an empty image")
	}
}

func TestRender_TooFewObservations(t *testing.T) {
	for _, n := range []int{0, 1} {
		_, err := Render(analyzed(t, n))
		var re *RenderError
		if !errors.As(err, &re) {
			t.Errorf("Render() of %d observations: got error %v, want a *RenderError", n, err)
		}
	}
	if _, err := Render(nil); err == nil {
		t.Errorf("Render(nil) expected an error")
	}
}

func TestSegments(t *testing.T) {
	nan := math.NaN()
	segs := segments([]float64{nan, 1, 2, nan, nan, 3, nan, 4, 5})
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	want := [][]float64{{1, 2}, {5}, {7, 8}}
	for i, seg := range segs {
		if len(seg) != len(want[i]) {
			t.Fatalf("segment %d has %d points, want %d", i, len(seg), len(want[i]))
		}
		for j, xy := range seg {
			if xy.X != want[i][j] {
				t.Errorf("segment %d point %d at x=%v, want %v", i, j, xy.X, want[i][j])
			}
		}
	}
	if got := segments([]float64{nan, nan}); len(got) != 0 {
		t.Errorf("segments of undefined values = %v, want none", got)
	}
}

func TestDateTicker(t *testing.T) {
	dates := make([]date.Date, 100)
	for i := range dates {
		dates[i] = date.New(2024, 1, 1).Add(i)
	}
	ticks := dateTicker(dates).Ticks(-1, 100)
	labeled := 0
	for _, tk := range ticks {
		if tk.Value < 0 || tk.Value > 99 {
			t.Errorf("tick outside of the series at %v", tk.Value)
		}
		if tk.Label != "" {
			labeled++
		}
	}
	if labeled == 0 || labeled > maxTicks+1 {
		t.Errorf("got %d labeled ticks, want between 1 and %d", labeled, maxTicks+1)
	}
	if ticks[0].Label != "2024-01-01" {
		t.Errorf("first tick label = %q, want 2024-01-01", ticks[0].Label)
	}
}
