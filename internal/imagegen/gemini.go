package imagegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// ErrNoImageModel means no Imagen model could be found for the API key.
var ErrNoImageModel = errors.New("no Imagen model available for this API key")

type geminiBackend struct {
	apiKey     string
	candidates []string
	log        *slog.Logger

	client *genai.Client
	model  string
}

func newGeminiBackend(apiKey string, candidates []string, log *slog.Logger) *geminiBackend {
	return &geminiBackend{apiKey: apiKey, candidates: candidates, log: log}
}

func (g *geminiBackend) Name() string { return "gemini" }

// Prepare creates the client and picks a model: the first listed model whose
// name contains "imagen", else the first configured candidate that resolves.
func (g *geminiBackend) Prepare(ctx context.Context) error {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	g.client = client

	model, err := g.discover(ctx)
	if err != nil {
		return err
	}
	g.model = model
	g.log.Debug("using imagen model", "model", model)
	return nil
}

func (g *geminiBackend) discover(ctx context.Context) (string, error) {
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			g.log.Debug("listing gemini models failed", "error", err)
			break
		}
		if strings.Contains(strings.ToLower(m.Name), "imagen") {
			return strings.TrimPrefix(m.Name, "models/"), nil
		}
	}

	for _, name := range g.candidates {
		if _, err := g.client.Models.Get(ctx, name, nil); err == nil {
			return name, nil
		}
	}
	return "", ErrNoImageModel
}

func (g *geminiBackend) Render(ctx context.Context, spec Spec, aspectRatio string) ([]byte, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.model, spec.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspectRatio,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("no image returned (prompt may have been filtered)")
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}
