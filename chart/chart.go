// Package chart renders an analyzed series as a three panel PNG figure.
//
// The panels share the same horizontal axis, one unit per observation, so
// that non trading days leave no gap:
//
//   - the closing price with its 50 and 200 day moving averages,
//   - the relative strength index with the 70 and 30 thresholds,
//   - the traded volume.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/etnz/bourse"
	"github.com/etnz/bourse/date"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Default figure size and resolution.
const (
	DefaultWidth  = 14 * vg.Inch
	DefaultHeight = 10 * vg.Inch
	DefaultDPI    = 100
)

var (
	blue   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	orange = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	green  = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	red    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	purple = color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}
	gray   = color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}
)

// RenderError reports a series that cannot be drawn.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render error: %v", e.Err) }

func (e *RenderError) Unwrap() error { return e.Err }

// Options controls the figure geometry. Zero fields take the default values.
type Options struct {
	Width, Height vg.Length
	DPI           int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	return o
}

// Render draws s with the default options and returns the PNG bytes.
func Render(s *bourse.Series) ([]byte, error) { return Options{}.Render(s) }

// Render draws s and returns the PNG bytes.
//
// The series must have been analyzed, undefined averages and RSI values are
// simply not drawn. At least two observations are required.
func (o Options) Render(s *bourse.Series) (_ []byte, err error) {
	if s == nil || s.Len() < 2 {
		n := 0
		if s != nil {
			n = s.Len()
		}
		return nil, &RenderError{Err: fmt.Errorf("need at least 2 observations to plot, got %d", n)}
	}
	// plot and vgimg report invalid geometry by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{Err: fmt.Errorf("%v", r)}
		}
	}()
	o = o.withDefaults()

	price, err := pricePlot(s)
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	rsi, err := rsiPlot(s)
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	volume, err := volumePlot(s, o.Width)
	if err != nil {
		return nil, &RenderError{Err: err}
	}

	ticker := dateTicker(s.Dates())
	xmin, xmax := -1.0, float64(s.Len())
	plots := [][]*plot.Plot{{price}, {rsi}, {volume}}
	for _, row := range plots {
		p := row[0]
		p.X.Min, p.X.Max = xmin, xmax
		p.X.Tick.Marker = ticker
	}

	img := vgimg.NewWith(
		vgimg.UseWH(o.Width, o.Height),
		vgimg.UseDPI(o.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadTop:    vg.Points(8),
		PadBottom: vg.Points(8),
		PadLeft:   vg.Points(8),
		PadRight:  vg.Points(16),
		PadY:      vg.Points(16),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i, row := range plots {
		row[0].Draw(canvases[i][0])
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, &RenderError{Err: fmt.Errorf("failed to encode png: %w", err)}
	}
	return buf.Bytes(), nil
}

func pricePlot(s *bourse.Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Price and Moving Averages"
	p.Y.Label.Text = "Price"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	closes := s.Closes()
	ma50 := make([]float64, s.Len())
	ma200 := make([]float64, s.Len())
	for i, o := range s.Observations {
		ma50[i], ma200[i] = o.MA50, o.MA200
	}

	for _, l := range []struct {
		name   string
		values []float64
		color  color.Color
	}{
		{"Closing Price", closes, blue},
		{"50-Day MA", ma50, orange},
		{"200-Day MA", ma200, green},
	} {
		if err := addLine(p, l.name, l.values, l.color); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func rsiPlot(s *bourse.Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Relative Strength Index (RSI)"
	p.Y.Label.Text = "RSI"
	p.Add(plotter.NewGrid())

	values := make([]float64, s.Len())
	for i, o := range s.Observations {
		values[i] = o.RSI
	}
	if err := addLine(p, "", values, purple); err != nil {
		return nil, err
	}
	for _, threshold := range []struct {
		level float64
		color color.Color
	}{
		{bourse.Overbought, red},
		{bourse.Oversold, green},
	} {
		level := threshold.level
		f := plotter.NewFunction(func(float64) float64 { return level })
		f.Color = threshold.color
		f.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(f)
	}
	p.Y.Min, p.Y.Max = 0, 100
	return p, nil
}

func volumePlot(s *bourse.Series, width vg.Length) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Trading Volume"
	p.Y.Label.Text = "Volume"

	// One bar per observation, leaving a thin gap between them.
	barWidth := width * 0.85 / vg.Length(s.Len()+2)
	if barWidth < vg.Points(0.5) {
		barWidth = vg.Points(0.5)
	}
	bars, err := plotter.NewBarChart(plotter.Values(s.Volumes()), barWidth)
	if err != nil {
		return nil, fmt.Errorf("invalid volumes: %w", err)
	}
	bars.Color = gray
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.Y.Min = 0
	return p, nil
}

// addLine adds values as one or more line segments, undefined values break the line.
func addLine(p *plot.Plot, name string, values []float64, c color.Color) error {
	first := true
	for _, seg := range segments(values) {
		l, err := plotter.NewLine(seg)
		if err != nil {
			return fmt.Errorf("invalid %s values: %w", name, err)
		}
		l.Color = c
		l.Width = vg.Points(1.5)
		p.Add(l)
		if first && name != "" {
			p.Legend.Add(name, l)
		}
		first = false
	}
	return nil
}

// segments splits values into runs of consecutive finite values, indexed by
// their position in values.
func segments(values []float64) []plotter.XYs {
	var segs []plotter.XYs
	var cur plotter.XYs
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(i), Y: v})
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// maxTicks is the number of labeled dates along the axis.
const maxTicks = 8

// dateTicker labels observation indexes with their dates.
func dateTicker(dates []date.Date) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		lo := max0(int(math.Ceil(min)))
		hi := int(math.Floor(max))
		if hi >= len(dates) {
			hi = len(dates) - 1
		}
		if hi < lo {
			return nil
		}
		step := (hi - lo + maxTicks) / maxTicks
		var ticks []plot.Tick
		for i := lo; i <= hi; i++ {
			t := plot.Tick{Value: float64(i)}
			if (i-lo)%step == 0 {
				t.Label = dates[i].Format("2006-01-02")
			} else if step > 10 && (i-lo)%(step/5) != 0 {
				continue
			}
			ticks = append(ticks, t)
		}
		return ticks
	})
}

func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}
