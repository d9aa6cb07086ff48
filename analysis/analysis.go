// Package analysis runs the whole technical analysis of a price file: load,
// indicators, chart, summary and optional AI insights.
package analysis

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/etnz/bourse"
	"github.com/etnz/bourse/agent"
	"github.com/etnz/bourse/chart"
	"github.com/etnz/bourse/config"
	"github.com/etnz/bourse/date"
	"github.com/google/uuid"
)

// Insighter turns a summary prompt into a professional commentary.
type Insighter interface {
	Insights(ctx context.Context, prompt string) (string, error)
}

// Pipeline holds the settings shared by every run. It has no mutable state and
// can run concurrently.
type Pipeline struct {
	Currency string
	Chart    chart.Options
	// Insighter is optional, without it no insight is generated.
	Insighter Insighter
}

// New creates a pipeline from the configuration.
//
// The Gemini analyst is only created when an API key is configured.
func New(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	p := &Pipeline{Currency: cfg.Currency}
	if !cfg.HasInsights() {
		return p, nil
	}
	a, err := agent.New(ctx, agent.Config{
		APIKey:   cfg.Gemini.APIKey,
		Model:    cfg.Gemini.Model,
		BaseURL:  cfg.Gemini.BaseURL,
		CacheDir: cfg.Gemini.CacheDir,
	})
	if err != nil {
		return nil, err
	}
	p.Insighter = a
	return p, nil
}

// Result is the outcome of a successful run.
type Result struct {
	ID       uuid.UUID
	Series   *bourse.Series
	Chart    []byte // PNG
	Summary  bourse.Summary
	Insights string // markdown, empty without Insighter
}

// Run analyzes the price file read from r.
//
// It is the same as RunBetween with an open range.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Result, error) {
	return p.RunBetween(ctx, r, date.Range{})
}

// RunBetween analyzes the price file read from r and reports on the
// observations within rg only. Indicators are computed on the full history so
// that the first reported days already have their averages.
//
// It stops at the first failing stage and returns its error.
func (p *Pipeline) RunBetween(ctx context.Context, r io.Reader, rg date.Range) (*Result, error) {
	res := &Result{ID: uuid.New()}

	s, err := bourse.Load(r)
	if err != nil {
		return nil, err
	}
	if _, err := bourse.Analyze(s); err != nil {
		return nil, err
	}
	if rg != (date.Range{}) {
		s = s.Between(rg)
	}
	res.Series = s
	log.Printf("analysis %s: %d observations of %q over %s", res.ID, s.Len(), s.Symbol, s.Span())

	if res.Chart, err = p.Chart.Render(s); err != nil {
		return nil, err
	}

	if res.Summary, err = bourse.NewSummary(s); err != nil {
		return nil, fmt.Errorf("failed to summarize: %w", err)
	}
	if p.Currency != "" {
		res.Summary.Currency = p.Currency
	}

	if p.Insighter != nil {
		if res.Insights, err = p.Insighter.Insights(ctx, res.Summary.Prompt()); err != nil {
			return nil, err
		}
	}
	return res, nil
}
