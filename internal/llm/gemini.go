package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/TobiSchelling/blogsmith/internal/config"
	"github.com/TobiSchelling/blogsmith/internal/errs"
)

// GeminiProvider generates with the Gemini API.
type GeminiProvider struct {
	model       string
	temperature float64
	client      *genai.Client
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, model, apiKey string, temperature float64, timeout time.Duration) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiProvider{model: model, temperature: temperature, client: client}, nil
}

func (g *GeminiProvider) Name() string { return config.ProviderGemini }
func (g *GeminiProvider) Model() string { return g.model }

func (g *GeminiProvider) IsConfigured() bool { return g.client != nil }

// Generate sends a prompt to Gemini and returns the response text.
func (g *GeminiProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	temp := float32(g.temperature)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Temperature:     &temp,
	})
	if err != nil {
		return "", errs.Wrap(errs.Remote, err, "Gemini API error")
	}
	text := resp.Text()
	if text == "" {
		return "", errs.New(errs.Remote, "empty Gemini response")
	}
	return text, nil
}
