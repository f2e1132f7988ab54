package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TobiSchelling/blogsmith/internal/config"
	"github.com/TobiSchelling/blogsmith/internal/errs"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	model       string
	apiKey      string
	temperature float64
	URL         string
	client      *http.Client
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(model, apiKey string, temperature float64, timeout time.Duration) *AnthropicProvider {
	return &AnthropicProvider{
		model:       model,
		apiKey:      apiKey,
		temperature: temperature,
		URL:         anthropicURL,
		client:      &http.Client{Timeout: timeout},
	}
}

func (a *AnthropicProvider) Name() string { return config.ProviderClaude }
func (a *AnthropicProvider) Model() string { return a.model }

// IsConfigured checks if the API key is set.
func (a *AnthropicProvider) IsConfigured() bool {
	return a.apiKey != ""
}

// Generate sends a single user message and joins the text blocks of the reply.
func (a *AnthropicProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := map[string]any{
		"model":       a.model,
		"max_tokens":  maxTokens,
		"temperature": a.temperature,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.Remote, err, "Anthropic API error")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		kind := errs.Remote
		if resp.StatusCode == http.StatusUnauthorized {
			kind = errs.Auth
		}
		return "", &errs.AppError{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Anthropic API returned %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var parts []string
	for _, c := range result.Content {
		if c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	if len(parts) == 0 {
		return "", errs.New(errs.Remote, "no text in Anthropic response")
	}
	return strings.Join(parts, ""), nil
}
