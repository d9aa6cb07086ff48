package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/bourse"
	"github.com/etnz/bourse/analysis"
	"github.com/etnz/bourse/date"
	"github.com/etnz/bourse/renderer"
	"github.com/google/subcommands"
)

// analyzeCmd holds the flags for the 'analyze' subcommand.
type analyzeCmd struct {
	output string
	series string
	from   string
	to     string
	ai     bool
}

func (*analyzeCmd) Name() string { return "analyze" }
func (*analyzeCmd) Synopsis() string {
	return "analyze a price file: indicators, chart and insights"
}
func (*analyzeCmd) Usage() string {
	return `bourse analyze [-o <chart.png>] [-json <series.jsonl>] [-from <date>] [-to <date>] [-ai] <file.csv>

  Loads the price file, computes the 50 and 200 days moving averages and the
  14 days RSI, draws the chart and prints the report.

  Indicators are always computed on the whole file, -from and -to only
  restrict the reported period. Use "-" to read the standard input.

Usage Examples:
# Writes the chart to chart.png and asks Gemini for insights.
$ bourse analyze -o chart.png -ai AIR.csv

`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Path of the PNG chart. Defaults to chart-<analysis id>.png")
	f.StringVar(&c.series, "json", "", "If set, also write the analyzed series to this file (JSONL format)")
	f.StringVar(&c.from, "from", "", "First day of the report (DD/MM/YYYY)")
	f.StringVar(&c.to, "to", "", "Last day of the report (DD/MM/YYYY)")
	f.BoolVar(&c.ai, "ai", false, "Ask Gemini for insights, requires an API key")
}

// period parses the -from and -to flags.
func (c *analyzeCmd) period() (r date.Range, err error) {
	if c.from != "" {
		if r.From, err = date.ParseDayFirst(c.from); err != nil {
			return r, fmt.Errorf("invalid -from: %w", err)
		}
	}
	if c.to != "" {
		if r.To, err = date.ParseDayFirst(c.to); err != nil {
			return r, fmt.Errorf("invalid -to: %w", err)
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, fmt.Errorf("invalid period %s", r)
	}
	return r, nil
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: analyze expects exactly one price file")
		return subcommands.ExitUsageError
	}
	period, err := c.period()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.ai && !cfg.HasInsights() {
		fmt.Fprintln(os.Stderr, "Error: -ai requires a Gemini API key, see 'bourse topic configuration'")
		return subcommands.ExitFailure
	}
	if !c.ai {
		cfg.Gemini.APIKey = ""
	}
	p, err := analysis.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	in, err := openInput(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening price file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	res, err := p.RunBetween(ctx, in, period)
	if err != nil {
		var formatErr *bourse.FormatError
		if errors.As(err, &formatErr) {
			fmt.Fprintf(os.Stderr, "Error in %q: %v\n", f.Arg(0), err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return subcommands.ExitFailure
	}

	chartPath := c.output
	if chartPath == "" {
		chartPath = fmt.Sprintf("chart-%s.png", res.ID)
	}
	if err := os.WriteFile(chartPath, res.Chart, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.series != "" {
		var b bytes.Buffer
		if err := bourse.EncodeSeries(&b, res.Series); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding series: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.series, b.Bytes(), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing series: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.RenderReport(renderer.NewReport(res, chartPath)))
	return subcommands.ExitSuccess
}
