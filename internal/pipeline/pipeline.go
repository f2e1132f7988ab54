// Package pipeline runs a draft from topic to WordPress: compose renders the
// prompt, calls the LLM, parses and checks the result; deliver saves it,
// makes images and publishes.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/TobiSchelling/blogsmith/internal/config"
	"github.com/TobiSchelling/blogsmith/internal/content"
	"github.com/TobiSchelling/blogsmith/internal/database"
	"github.com/TobiSchelling/blogsmith/internal/fetch"
	"github.com/TobiSchelling/blogsmith/internal/imagegen"
	"github.com/TobiSchelling/blogsmith/internal/llm"
	"github.com/TobiSchelling/blogsmith/internal/output"
	"github.com/TobiSchelling/blogsmith/internal/publish"
	"github.com/TobiSchelling/blogsmith/internal/seo"
	"github.com/TobiSchelling/blogsmith/internal/templates"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// ReferenceFetcher fetches reference pages for the prompt notes.
type ReferenceFetcher interface {
	FetchAll(ctx context.Context, urls []string) *fetch.Result
}

// ImageGenerator produces images for a batch of specs.
type ImageGenerator interface {
	Generate(ctx context.Context, req imagegen.Request) (*imagegen.Batch, error)
}

// Publisher creates and repairs WordPress drafts.
type Publisher interface {
	Publish(ctx context.Context, doc *content.Document, slug string, opts publish.Options) (*publish.Summary, error)
	RecoverImages(ctx context.Context, slug string) (*publish.Recovery, error)
}

// Deps are the collaborators a Pipeline drives. Publisher is called lazily
// so runs that never publish do not need WordPress credentials. DB may be nil.
type Deps struct {
	Config     *config.Config
	Templates  templates.Loader
	References ReferenceFetcher
	Provider   func(ctx context.Context, name string) (llm.Provider, error)
	Images     ImageGenerator
	Publisher  func() (Publisher, error)
	DB         *database.DB
	Log        *slog.Logger
}

// Pipeline orchestrates drafting and delivery.
type Pipeline struct {
	Deps
	outputDir string
}

// New creates a new pipeline.
func New(deps Deps) *Pipeline {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Pipeline{Deps: deps, outputDir: deps.Config.OutputDir()}
}

// Request describes the draft to write.
type Request struct {
	Topic       string
	Tone        string
	Provider    string
	ArticleType string
	CoreMessage string
	Notes       string
	Keyword     string
	References  []string
}

// Draft is a composed article awaiting delivery.
type Draft struct {
	Request
	Slug  string
	Model string
	Raw   string
	Doc   *content.Document
	SEO   []seo.Result
}

// HasHardFailures reports whether any SEO check failed outright.
func (d *Draft) HasHardFailures() bool {
	return seo.HasHardFailures(d.SEO)
}

// Compose renders the template, generates the article and checks it. Steps
// are returned even when an error stops the run.
func (p *Pipeline) Compose(ctx context.Context, req Request) (*Draft, []StepResult, error) {
	var steps []StepResult
	cfg := p.Config

	if req.Tone == "" {
		req.Tone = cfg.Content.DefaultTone
	}
	if req.ArticleType == "" {
		req.ArticleType = cfg.Content.DefaultArticleType
	}
	if req.Provider == "" {
		req.Provider = cfg.LLM.DefaultProvider
	}

	// Step 1: Template
	tmpl, err := p.Templates.Load(req.Tone)
	if err != nil {
		steps = append(steps, StepResult{Name: "Template", Err: err})
		return nil, steps, err
	}
	steps = append(steps, StepResult{Name: "Template", Summary: "loaded " + req.Tone})

	// Step 2: References
	notes := req.Notes
	if len(req.References) > 0 && p.References != nil {
		res := p.References.FetchAll(ctx, req.References)
		if extra := res.Notes(); extra != "" {
			notes = strings.TrimSpace(notes + "\n\n" + extra)
		}
		step := StepResult{
			Name:    "References",
			Summary: fmt.Sprintf("%d fetched, %d failed", len(res.References), len(res.Failed)),
		}
		if len(res.Failed) > 0 {
			step.Err = fmt.Errorf("could not read: %s", strings.Join(res.Failed, ", "))
		}
		steps = append(steps, step)
	}

	prompt, keyword := templates.Render(tmpl, templates.Params{
		Topic:       req.Topic,
		ArticleType: req.ArticleType,
		CoreMessage: req.CoreMessage,
		Notes:       notes,
		Keyword:     req.Keyword,
	})
	req.Keyword = keyword

	// Step 3: Generate
	provider, err := p.Provider(ctx, req.Provider)
	if err != nil {
		steps = append(steps, StepResult{Name: "Generate", Err: err})
		return nil, steps, err
	}
	p.Log.Info("generating draft", "provider", provider.Name(), "model", provider.Model(), "keyword", keyword)
	raw, err := provider.Generate(ctx, prompt, cfg.LLM.MaxTokens)
	if err != nil {
		err = fmt.Errorf("generating with %s: %w", provider.Name(), err)
		steps = append(steps, StepResult{Name: "Generate", Err: err})
		return nil, steps, err
	}
	req.Provider = provider.Name()
	steps = append(steps, StepResult{
		Name:    "Generate",
		Summary: fmt.Sprintf("%s words from %s (%s)", seo.Thousands(len(strings.Fields(raw))), provider.Name(), provider.Model()),
	})

	// Step 4: Parse
	doc := content.Parse(raw)
	steps = append(steps, StepResult{
		Name: "Parse",
		Summary: fmt.Sprintf("%d metadata fields, %d headings, %d image prompts, %d HTML sections",
			len(doc.Metadata), len(doc.Headings), len(doc.ImagePrompts), len(doc.HTMLSections)),
	})

	// Step 5: SEO
	results := seo.Run(doc, keyword)
	tally := seo.Summarize(results)
	steps = append(steps, StepResult{
		Name:    "SEO",
		Summary: fmt.Sprintf("%d/%d passed, %d warnings, %d failures", tally.Passed, tally.Total, tally.Warnings, tally.Failures),
	})

	return &Draft{
		Request: req,
		Slug:    output.ResolveSlug(doc, keyword),
		Model:   provider.Model(),
		Raw:     raw,
		Doc:     doc,
		SEO:     results,
	}, steps, nil
}

// DeliverOptions control what Deliver does after saving.
type DeliverOptions struct {
	SkipImages  bool
	NoPublish   bool
	ImagePolicy string // overrides images.provider when set
}

// Delivery is the outcome of Deliver. Publish is set only when the draft
// reached WordPress; PublishErr holds the failure otherwise.
type Delivery struct {
	Path       string
	RunID      string
	Images     *imagegen.Batch
	Publish    *publish.Summary
	PublishErr error
	Steps      []StepResult
}

// Deliver saves the draft, journals it, generates and embeds images, and
// publishes it when WordPress is configured. Only a failed save is returned
// as an error; later steps degrade and report through Steps.
func (p *Pipeline) Deliver(ctx context.Context, d *Draft, opts DeliverOptions) (*Delivery, error) {
	out := &Delivery{}

	// Step 1: Save
	path, err := output.Save(p.outputDir, d.Slug, d.Raw)
	if err != nil {
		out.Steps = append(out.Steps, StepResult{Name: "Save", Err: err})
		return out, err
	}
	out.Path = path
	out.Steps = append(out.Steps, StepResult{Name: "Save", Summary: path})

	// Step 2: Journal
	out.RunID = p.journalRun(d, path)

	// Step 3: Images
	if opts.SkipImages {
		out.Steps = append(out.Steps, StepResult{Name: "Images", Summary: "skipped"})
	} else {
		batch, step := p.images(ctx, path, d.Doc, d.Slug, opts.ImagePolicy)
		out.Images = batch
		out.Steps = append(out.Steps, step)
	}

	// Step 4: Publish
	wp := p.Config.WordPress
	switch {
	case opts.NoPublish:
		out.Steps = append(out.Steps, StepResult{Name: "Publish", Summary: "skipped"})
	case !wp.AutoPublishDraft:
		out.Steps = append(out.Steps, StepResult{Name: "Publish", Summary: "auto publish disabled"})
	case !wp.Configured():
		out.Steps = append(out.Steps, StepResult{Name: "Publish", Summary: "WordPress not configured"})
	default:
		summary, err := p.publish(ctx, d.Doc, d.Slug, out.RunID, publish.Options{SkipImages: opts.SkipImages})
		if err != nil {
			out.PublishErr = err
		} else {
			out.Publish = summary
		}
		out.Steps = append(out.Steps, publishStep(summary, err))
	}

	return out, nil
}

func publishStep(summary *publish.Summary, err error) StepResult {
	if err != nil {
		return StepResult{Name: "Publish", Summary: "saved locally only", Err: err}
	}
	return StepResult{
		Name:    "Publish",
		Summary: fmt.Sprintf("draft %d created, images %s", summary.PostID, summary.ImagesStatus),
	}
}

// GenerateImages makes images for a saved draft and embeds them in it.
func (p *Pipeline) GenerateImages(ctx context.Context, path, policy string) (*imagegen.Batch, StepResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, StepResult{}, fmt.Errorf("reading draft: %w", err)
	}
	doc := content.Parse(string(data))
	batch, step := p.images(ctx, path, doc, output.SlugFromPath(path), policy)
	return batch, step, step.Err
}

// PublishFile publishes a saved draft.
func (p *Pipeline) PublishFile(ctx context.Context, path string, skipImages bool) (*publish.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}
	slug := output.SlugFromPath(path)
	runID := ""
	if p.DB != nil {
		if run, err := p.DB.GetLatestRunBySlug(slug); err == nil && run != nil {
			runID = run.ID
		}
	}
	return p.publish(ctx, content.Parse(string(data)), slug, runID, publish.Options{SkipImages: skipImages})
}

// RecoverImages uploads local images into an existing WordPress draft.
func (p *Pipeline) RecoverImages(ctx context.Context, slug string) (*publish.Recovery, error) {
	pub, err := p.Publisher()
	if err != nil {
		return nil, err
	}
	rec, err := pub.RecoverImages(ctx, slug)
	if err != nil {
		return rec, err
	}
	p.journalPublication(database.Publication{
		Slug:         slug,
		PostID:       rec.PostID,
		EditURL:      rec.EditURL,
		ImagesStatus: fmt.Sprintf("%d uploaded", rec.Uploaded),
		Kind:         database.KindUploadImages,
	})
	return rec, nil
}

func (p *Pipeline) publish(ctx context.Context, doc *content.Document, slug, runID string, opts publish.Options) (*publish.Summary, error) {
	pub, err := p.Publisher()
	if err != nil {
		return nil, err
	}
	summary, err := pub.Publish(ctx, doc, slug, opts)
	if err != nil {
		return summary, err
	}
	entry := database.Publication{
		Slug:          slug,
		PostID:        summary.PostID,
		EditURL:       summary.EditURL,
		ImagesStatus:  summary.ImagesStatus,
		InternalLinks: summary.InternalLinksCount,
		RankMathSet:   summary.RankMathSet,
		Kind:          database.KindPublish,
	}
	if runID != "" {
		entry.RunID = &runID
	}
	p.journalPublication(entry)
	return summary, nil
}

// images runs one image batch for the draft at path and embeds the results.
func (p *Pipeline) images(ctx context.Context, path string, doc *content.Document, slug, policy string) (*imagegen.Batch, StepResult) {
	step := StepResult{Name: "Images"}
	specs := imagegen.SpecsFromPrompts(doc.ImagePrompts)
	if len(specs) == 0 {
		step.Summary = "no image prompts in draft"
		return nil, step
	}
	if policy == "" {
		policy = p.Config.Images.Provider
	}

	batch, err := p.Images.Generate(ctx, imagegen.Request{
		Specs:  specs,
		Slug:   slug,
		Dir:    output.ImagesDir(p.outputDir, slug),
		Policy: policy,
	})
	if err != nil {
		step.Err = err
		step.Summary = "no images generated"
		return batch, step
	}

	step.Summary = ImageStatus(batch, specs)
	if len(batch.Images) == 0 {
		return batch, step
	}

	paths := make([]string, len(batch.Images))
	for i, img := range batch.Images {
		paths[i] = img.Path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		step.Err = fmt.Errorf("reading draft for embedding: %w", err)
		return batch, step
	}
	embedded := imagegen.EmbedInMarkdown(string(data), slug, paths)
	if embedded != string(data) {
		if err := os.WriteFile(path, []byte(embedded), 0o644); err != nil {
			step.Err = fmt.Errorf("embedding images: %w", err)
		}
	}
	return batch, step
}

// ImageStatus is the one-line summary of a batch against its specs.
func ImageStatus(batch *imagegen.Batch, specs []imagegen.Spec) string {
	missing := batch.Missing(specs)
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d generated", len(batch.Images), len(specs))
	if len(batch.Images) > 0 {
		fmt.Fprintf(&b, " with %s", batch.Images[0].Provider)
	}
	if len(missing) > 0 {
		nums := make([]string, len(missing))
		for i, n := range missing {
			nums[i] = fmt.Sprint(n)
		}
		fmt.Fprintf(&b, "; missing: %s", strings.Join(nums, ", "))
	}
	if batch.PromptsFile != "" {
		fmt.Fprintf(&b, "; prompts written to %s", batch.PromptsFile)
	}
	return b.String()
}

// Record journals a draft that was not saved and returns the run ID.
func (p *Pipeline) Record(d *Draft) string {
	return p.journalRun(d, "")
}

func (p *Pipeline) journalRun(d *Draft, path string) string {
	if p.DB == nil {
		return ""
	}
	tally := seo.Summarize(d.SEO)
	id, err := p.DB.InsertRun(database.Run{
		Topic:       d.Topic,
		Keyword:     d.Keyword,
		Slug:        d.Slug,
		Tone:        d.Tone,
		ArticleType: d.ArticleType,
		Provider:    d.Provider,
		Model:       d.Model,
		FilePath:    path,
		WordCount:   seo.WordCount(d.Doc.Body),
		SEOPassed:   tally.Passed,
		SEOWarnings: tally.Warnings,
		SEOFailures: tally.Failures,
	})
	if err != nil {
		p.Log.Warn("could not journal run", "error", err)
		return ""
	}
	return id
}

func (p *Pipeline) journalPublication(entry database.Publication) {
	if p.DB == nil {
		return
	}
	if _, err := p.DB.InsertPublication(entry); err != nil {
		p.Log.Warn("could not journal publication", "slug", entry.Slug, "error", err)
	}
}
