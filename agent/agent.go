// Package agent asks Gemini for a professional reading of a technical analysis summary.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKey is returned by New when the configuration has no API key.
var ErrNoAPIKey = errors.New("missing Gemini API key")

// Config holds everything an Analyst needs, nothing is read from the environment.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini endpoint, mostly for tests.
	BaseURL    string
	HTTPClient *http.Client
	// CacheDir, if set, keeps the answers on disk for the day: the same
	// question is only sent once.
	CacheDir string
}

// Analyst is a financial analyst expert backed by a Gemini model.
type Analyst struct {
	Name      string
	ModelName string
	Config    *genai.GenerateContentConfig
	client    *genai.Client
}

// New creates an Analyst from an explicit configuration.
func New(ctx context.Context, cfg Config) (*Analyst, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	httpClient := cfg.HTTPClient
	if cfg.CacheDir != "" {
		httpClient = cachedClient(httpClient, cfg.CacheDir)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing Gemini's client: %w", err)
	}
	return &Analyst{
		Name:      "Analyst",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(`
You are a market analyst reviewing daily stock data for a private investor.
Answer in markdown, with short sections and bullet points.
Only rely on the figures you are given, and say so when they are not enough to conclude.
`, genai.RoleUser),
		},
		client: client,
	}, nil
}

// Insights sends prompt to the model and returns its text answer.
func (a *Analyst) Insights(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.ModelName, genai.Text(prompt), a.Config)
	if err != nil {
		return "", fmt.Errorf("AI analysis failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("AI analysis failed: no response from %s", a.Name)
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("AI analysis failed: empty response from %s", a.Name)
	}
	log.Printf("%s (%s) answered %d bytes", a.Name, a.ModelName, len(text))
	return text, nil
}
