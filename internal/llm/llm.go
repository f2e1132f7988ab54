package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/TobiSchelling/blogsmith/internal/config"
	"github.com/TobiSchelling/blogsmith/internal/errs"
)

// Provider is the interface for LLM providers.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	IsConfigured() bool
}

// OllamaProvider is a local Ollama LLM provider.
type OllamaProvider struct {
	model       string
	BaseURL     string
	temperature float64
	client      *http.Client
	log         *slog.Logger
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(model, baseURL string, temperature float64, timeout time.Duration, log *slog.Logger) *OllamaProvider {
	return &OllamaProvider{
		model:       model,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		temperature: temperature,
		client:      &http.Client{Timeout: timeout},
		log:         log,
	}
}

func (o *OllamaProvider) Name() string { return config.ProviderOllama }
func (o *OllamaProvider) Model() string { return o.model }

// IsConfigured checks if Ollama is running and the model is available.
func (o *OllamaProvider) IsConfigured() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}

	modelBase := strings.SplitN(o.model, ":", 2)[0]
	for _, m := range result.Models {
		if strings.Contains(m.Name, modelBase) {
			return true
		}
	}
	o.log.Warn("ollama model not found", "model", o.model)
	return false
}

// Generate sends a prompt to Ollama and returns the response.
func (o *OllamaProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"stream": false,
		"options": map[string]any{
			"num_predict": maxTokens,
			"temperature": o.temperature,
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.Remote, err, "ollama API error")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &errs.AppError{
			Kind:       errs.Remote,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("ollama API returned %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.Message.Content, nil
}

// OpenAIProvider generates with the OpenAI chat completions API.
type OpenAIProvider struct {
	model       string
	apiKey      string
	temperature float64
	client      openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(model, apiKey string, temperature float64, timeout time.Duration, opts ...option.RequestOption) *OpenAIProvider {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
	}, opts...)
	return &OpenAIProvider{
		model:       model,
		apiKey:      apiKey,
		temperature: temperature,
		client:      openai.NewClient(opts...),
	}
}

func (o *OpenAIProvider) Name() string { return config.ProviderOpenAI }
func (o *OpenAIProvider) Model() string { return o.model }

// IsConfigured checks if the API key is set.
func (o *OpenAIProvider) IsConfigured() bool {
	return o.apiKey != ""
}

// Generate sends a prompt to OpenAI and returns the response.
func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(o.temperature),
	})
	if err != nil {
		return "", errs.Wrap(errs.Remote, err, "OpenAI API error")
	}
	if len(resp.Choices) == 0 {
		return "", errs.New(errs.Remote, "no choices in OpenAI response")
	}
	return resp.Choices[0].Message.Content, nil
}

// CreateProvider returns the named provider. Hosted providers need their API
// key; a missing key is reported before any request is made.
func CreateProvider(ctx context.Context, cfg *config.Config, name string, creds config.Credentials, log *slog.Logger) (Provider, error) {
	l := cfg.LLM
	switch strings.ToLower(name) {
	case config.ProviderClaude:
		if creds.AnthropicKey == "" {
			return nil, config.MissingKey("Anthropic", cfg.Keys.AnthropicKeyEnv)
		}
		return NewAnthropicProvider(l.AnthropicModel, creds.AnthropicKey, l.Temperature, l.Timeout()), nil
	case config.ProviderOpenAI:
		if creds.OpenAIKey == "" {
			return nil, config.MissingKey("OpenAI", cfg.Keys.OpenAIKeyEnv)
		}
		return NewOpenAIProvider(l.OpenAIModel, creds.OpenAIKey, l.Temperature, l.Timeout()), nil
	case config.ProviderGemini:
		if creds.GeminiKey == "" {
			return nil, config.MissingKey("Gemini", cfg.Keys.GeminiKeyEnv)
		}
		return NewGeminiProvider(ctx, l.GeminiModel, creds.GeminiKey, l.Temperature, l.Timeout())
	case config.ProviderOllama:
		p := NewOllamaProvider(l.OllamaModel, l.OllamaURL, l.Temperature, l.Timeout(), log)
		if !p.IsConfigured() {
			return nil, errs.New(errs.ConfigMissing,
				"Ollama is not reachable at %s or model %q is not pulled", l.OllamaURL, l.OllamaModel)
		}
		return p, nil
	default:
		return nil, errs.New(errs.Invalid, "unknown LLM provider %q (choose claude, openai, gemini or ollama)", name)
	}
}
