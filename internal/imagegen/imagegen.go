// Package imagegen turns image prompts into local image files using Gemini
// (Imagen) or OpenAI, with a hand-off prompts file when neither produces
// anything.
package imagegen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/TobiSchelling/blogsmith/internal/config"
	"github.com/TobiSchelling/blogsmith/internal/content"
	"github.com/TobiSchelling/blogsmith/internal/errs"
)

const perImageTimeout = 60 * time.Second

// PromptsFileName is the manual fallback written into the images directory.
const PromptsFileName = "prompts.txt"

// Spec is one image to generate.
type Spec struct {
	Position int
	Title    string
	Prompt   string
}

// Image is a generated file on disk.
type Image struct {
	Position int
	Path     string
	Provider string
}

// Backend renders a single image. Prepare runs once per batch and a failure
// there fails the whole attempt for that backend.
type Backend interface {
	Name() string
	Prepare(ctx context.Context) error
	Render(ctx context.Context, spec Spec, aspectRatio string) ([]byte, error)
}

// Failure records one image that a backend could not produce.
type Failure struct {
	Provider string
	Position int
	Err      error
}

// Attempt records how one backend fared over the batch.
type Attempt struct {
	Provider  string
	Generated int
	Err       error // set when Prepare failed
}

// Batch is the outcome of Generate.
type Batch struct {
	Images      []Image
	Attempts    []Attempt
	Failures    []Failure
	PromptsFile string // set when the manual fallback was written
}

// Missing returns the positions from specs that have no generated image.
func (b *Batch) Missing(specs []Spec) []int {
	have := make(map[int]bool, len(b.Images))
	for _, img := range b.Images {
		have[img.Position] = true
	}
	var missing []int
	for _, s := range specs {
		if !have[s.Position] {
			missing = append(missing, s.Position)
		}
	}
	return missing
}

// Request describes one batch.
type Request struct {
	Specs  []Spec
	Slug   string
	Dir    string // images directory for the slug
	Policy string // auto | gemini | openai | none
}

// Generator runs image batches against the configured backends.
type Generator struct {
	gemini      Backend
	openai      Backend
	keys        config.CredentialEnv
	aspectRatio string
	log         *slog.Logger
}

// New builds a Generator. Backends without a credential are left out.
func New(cfg *config.Config, creds config.Credentials, log *slog.Logger) *Generator {
	g := &Generator{
		keys:        cfg.Keys,
		aspectRatio: cfg.Images.AspectRatio,
		log:         log,
	}
	if creds.GeminiKey != "" {
		g.gemini = newGeminiBackend(creds.GeminiKey, cfg.Images.GeminiModels, log)
	}
	if creds.OpenAIKey != "" {
		g.openai = newOpenAIBackend(creds.OpenAIKey, cfg.Images.OpenAIModel, &http.Client{Timeout: perImageTimeout})
	}
	return g
}

// SpecsFromPrompts converts parsed image prompts into specs, keeping order
// and numbering.
func SpecsFromPrompts(prompts []content.ImagePrompt) []Spec {
	specs := make([]Spec, 0, len(prompts))
	for _, p := range prompts {
		specs = append(specs, Spec{Position: p.Number, Title: p.Title, Prompt: p.Prompt})
	}
	return specs
}

// Resolve returns the backends to try, in order, for a policy. Explicit
// policies without a credential fail before any network call.
func (g *Generator) Resolve(policy string) ([]Backend, error) {
	switch policy {
	case config.ImagesAuto, "":
		var chain []Backend
		if g.gemini != nil {
			chain = append(chain, g.gemini)
		}
		if g.openai != nil {
			chain = append(chain, g.openai)
		}
		return chain, nil
	case config.ImagesGemini:
		if g.gemini == nil {
			return nil, config.MissingKey("Gemini", g.keys.GeminiKeyEnv)
		}
		return []Backend{g.gemini}, nil
	case config.ImagesOpenAI:
		if g.openai == nil {
			return nil, config.MissingKey("OpenAI", g.keys.OpenAIKeyEnv)
		}
		return []Backend{g.openai}, nil
	case config.ImagesNone:
		return nil, nil
	default:
		return nil, errs.New(errs.Invalid, "unknown image provider %q (use auto, gemini, openai, or none)", policy)
	}
}

// Generate tries each resolved backend until one produces at least one image.
// Individual image failures are recorded and skipped. When nothing was
// produced the prompts file is written so the images can be made by hand.
func (g *Generator) Generate(ctx context.Context, req Request) (*Batch, error) {
	chain, err := g.Resolve(req.Policy)
	if err != nil {
		return nil, err
	}

	batch := &Batch{}
	if len(req.Specs) == 0 {
		return batch, nil
	}
	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating images directory: %w", err)
	}

	for _, backend := range chain {
		images := g.attempt(ctx, backend, req, batch)
		if len(images) > 0 {
			batch.Images = images
			return batch, nil
		}
		g.log.Warn("image provider produced nothing", "provider", backend.Name())
	}

	path, err := WritePromptsFile(req.Dir, req.Slug, req.Specs)
	if err != nil {
		return batch, err
	}
	batch.PromptsFile = path
	return batch, nil
}

func (g *Generator) attempt(ctx context.Context, b Backend, req Request, batch *Batch) []Image {
	att := Attempt{Provider: b.Name()}
	if err := b.Prepare(ctx); err != nil {
		g.log.Warn("image provider unavailable", "provider", b.Name(), "error", err)
		att.Err = err
		batch.Attempts = append(batch.Attempts, att)
		return nil
	}

	var images []Image
	for _, spec := range req.Specs {
		path, err := g.renderOne(ctx, b, spec, req.Dir)
		if err != nil {
			g.log.Warn("image generation failed", "provider", b.Name(), "position", spec.Position, "error", err)
			batch.Failures = append(batch.Failures, Failure{Provider: b.Name(), Position: spec.Position, Err: err})
			continue
		}
		g.log.Info("image generated", "provider", b.Name(), "position", spec.Position, "path", path)
		images = append(images, Image{Position: spec.Position, Path: path, Provider: b.Name()})
	}

	att.Generated = len(images)
	batch.Attempts = append(batch.Attempts, att)
	return images
}

func (g *Generator) renderOne(ctx context.Context, b Backend, spec Spec, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, perImageTimeout)
	defer cancel()

	data, err := b.Render(ctx, spec, g.aspectRatio)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	path := filepath.Join(dir, FileName(spec.Position, extensionFor(data)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return path, nil
}

// FileName returns the deterministic file name for an image position.
func FileName(position int, ext string) string {
	return fmt.Sprintf("image-%d%s", position, ext)
}

func extensionFor(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
