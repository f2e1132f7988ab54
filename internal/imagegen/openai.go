package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIBackend struct {
	client openai.Client
	model  string
	http   *http.Client
}

func newOpenAIBackend(apiKey, model string, httpClient *http.Client, opts ...option.RequestOption) *openAIBackend {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &openAIBackend{
		client: openai.NewClient(opts...),
		model:  model,
		http:   httpClient,
	}
}

func (o *openAIBackend) Name() string { return "openai" }

func (o *openAIBackend) Prepare(ctx context.Context) error { return nil }

func (o *openAIBackend) Render(ctx context.Context, spec Spec, aspectRatio string) ([]byte, error) {
	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         spec.Prompt,
		Model:          openai.ImageModel(o.model),
		N:              openai.Int(1),
		Size:           openAISize(aspectRatio),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, fmt.Errorf("no image URL returned")
	}
	return o.download(ctx, resp.Data[0].URL)
}

func (o *openAIBackend) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// openAISize maps an aspect ratio to one of the three supported sizes.
func openAISize(aspectRatio string) openai.ImageGenerateParamsSize {
	switch aspectRatio {
	case "1:1":
		return openai.ImageGenerateParamsSize1024x1024
	case "9:16":
		return openai.ImageGenerateParamsSize1024x1792
	default:
		return openai.ImageGenerateParamsSize1792x1024
	}
}
