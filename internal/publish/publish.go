// Package publish turns a parsed draft into a WordPress draft post: related
// links, uploaded images, Rank Math fields and a featured image. Each stage
// reports an Event; only authentication and draft creation are fatal.
package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TobiSchelling/blogsmith/internal/content"
	"github.com/TobiSchelling/blogsmith/internal/errs"
	"github.com/TobiSchelling/blogsmith/internal/output"
	"github.com/TobiSchelling/blogsmith/internal/wordpress"
)

// CMS is the subset of the WordPress client the publisher drives.
type CMS interface {
	ValidateCredentials(ctx context.Context) error
	RecentPosts(ctx context.Context, count int) ([]wordpress.Post, error)
	FeedPosts(ctx context.Context, count int) ([]wordpress.Post, error)
	UploadMedia(ctx context.Context, path, slug string, position int, alt string) (wordpress.Media, error)
	CreateDraft(ctx context.Context, title, content, slug string) (wordpress.Draft, error)
	SetRankMathMeta(ctx context.Context, postID int, meta wordpress.SEOMeta) bool
	SetFeaturedImage(ctx context.Context, postID, mediaID int) error
	FindDraftBySlug(ctx context.Context, slug string) (wordpress.Post, error)
	UpdateContent(ctx context.Context, postID int, content string) error
	EditURL(postID int) string
}

// Stage names one step of a publish.
type Stage string

const (
	StageAuthenticate Stage = "authenticate"
	StageRelated      Stage = "related-posts"
	StageAssemble     Stage = "assemble-html"
	StageLinks        Stage = "internal-links"
	StageImages       Stage = "upload-images"
	StagePlaceholders Stage = "placeholders"
	StageDraft        Stage = "create-draft"
	StageSEOMeta      Stage = "seo-meta"
	StageFeatured     Stage = "featured-image"
	StageFindDraft    Stage = "find-draft"
	StageUpdate       Stage = "update-content"
)

// Status is the outcome of a stage.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Event is a progress report for one stage.
type Event struct {
	Stage   Stage
	Status  Status
	Message string
	Err     error
}

// Settings configures a Publisher.
type Settings struct {
	OutputDir      string
	RecentPosts    int
	RelatedPosts   int
	RelatedHeading string
	FeedFallback   bool
	Notify         func(Event) // called as each event is recorded; may be nil
}

// Options are per-publish switches.
type Options struct {
	SkipImages bool
}

// Summary is the result of a successful publish.
type Summary struct {
	Slug               string
	PostID             int
	EditURL            string
	ImagesUploaded     int
	ImagesStatus       string
	InternalLinksCount int
	RankMathSet        bool
	Meta               wordpress.SEOMeta
	Events             []Event
}

// Publisher runs publishes against one CMS.
type Publisher struct {
	cms      CMS
	settings Settings
	log      *slog.Logger
}

// New returns a Publisher.
func New(cms CMS, settings Settings, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{cms: cms, settings: settings, log: log}
}

type recorder struct {
	events []Event
	notify func(Event)
	log    *slog.Logger
}

func (r *recorder) add(stage Stage, status Status, err error, format string, args ...any) {
	ev := Event{Stage: stage, Status: status, Message: fmt.Sprintf(format, args...), Err: err}
	r.events = append(r.events, ev)
	if status == StatusWarning || status == StatusFailed {
		r.log.Warn(ev.Message, "stage", string(stage), "error", err)
	} else {
		r.log.Debug(ev.Message, "stage", string(stage))
	}
	if r.notify != nil {
		r.notify(ev)
	}
}

// PendingStatus is the images status when nothing was uploaded.
func PendingStatus(slug string) string {
	return fmt.Sprintf("pending (run blogsmith upload-images %s)", slug)
}

// Publish creates a WordPress draft for doc. The returned error is non-nil
// only when authentication or draft creation fails; the Summary is still
// returned with the events recorded so far.
func (p *Publisher) Publish(ctx context.Context, doc *content.Document, slug string, opts Options) (*Summary, error) {
	rec := &recorder{notify: p.settings.Notify, log: p.log}
	keyword := doc.Field(content.FieldKeyword)
	title := doc.Field(content.FieldTitle)
	if title == "" {
		title = keyword
	}
	summary := &Summary{
		Slug: slug,
		Meta: wordpress.SEOMeta{
			Title:        doc.Field(content.FieldTitle),
			Description:  doc.Field(content.FieldMetaDescription),
			FocusKeyword: keyword,
		},
	}
	finish := func(err error) (*Summary, error) {
		summary.Events = rec.events
		return summary, err
	}

	// 1. Authenticate.
	if err := p.cms.ValidateCredentials(ctx); err != nil {
		rec.add(StageAuthenticate, StatusFailed, err, "WordPress authentication failed")
		return finish(fmt.Errorf("authenticating with WordPress: %w", err))
	}
	rec.add(StageAuthenticate, StatusOK, nil, "connected")

	// 2. Related posts.
	related := p.related(ctx, rec, title, keyword)
	summary.InternalLinksCount = len(related)

	// 3. Assemble.
	html := doc.CombinedHTML()
	if html == "" {
		html = doc.Raw
		rec.add(StageAssemble, StatusWarning, nil, "no HTML sections found, using raw content")
	} else {
		rec.add(StageAssemble, StatusOK, nil, "assembled %d HTML sections", len(doc.HTMLSections))
	}

	// 4. Internal links.
	if links := BuildLinksHTML(p.settings.RelatedHeading, related); links != "" {
		html = InsertLinks(html, links)
		rec.add(StageLinks, StatusOK, nil, "inserted %d internal links", len(related))
	} else {
		rec.add(StageLinks, StatusSkipped, nil, "no related posts to link")
	}

	// 5-6. Images.
	var uploaded []uploadedImage
	if opts.SkipImages {
		rec.add(StageImages, StatusSkipped, nil, "image upload skipped")
	} else {
		uploaded = p.uploadImages(ctx, rec, slug, ParseAltTexts(html))
	}
	if len(uploaded) > 0 {
		html = ReplacePlaceholders(html, embeds(uploaded))
		rec.add(StagePlaceholders, StatusOK, nil, "replaced placeholders for %d images", len(uploaded))
		summary.ImagesUploaded = len(uploaded)
		summary.ImagesStatus = fmt.Sprintf("%d uploaded", len(uploaded))
	} else {
		summary.ImagesStatus = PendingStatus(slug)
	}

	// 7. Draft.
	draft, err := p.cms.CreateDraft(ctx, title, html, slug)
	if err != nil {
		rec.add(StageDraft, StatusFailed, err, "draft creation failed")
		return finish(fmt.Errorf("creating draft: %w", err))
	}
	summary.PostID = draft.ID
	summary.EditURL = draft.EditURL
	rec.add(StageDraft, StatusOK, nil, "draft %d created", draft.ID)

	// 8. SEO meta.
	summary.RankMathSet = p.cms.SetRankMathMeta(ctx, draft.ID, summary.Meta)
	if summary.RankMathSet {
		rec.add(StageSEOMeta, StatusOK, nil, "Rank Math fields set")
	} else {
		rec.add(StageSEOMeta, StatusWarning, nil, "could not set Rank Math fields automatically")
	}

	// 9. Featured image.
	if len(uploaded) > 0 {
		p.setFeatured(ctx, rec, draft.ID, uploaded[0].media.ID)
	}

	return finish(nil)
}

func (p *Publisher) related(ctx context.Context, rec *recorder, title, keyword string) []wordpress.Post {
	posts, err := p.cms.RecentPosts(ctx, p.settings.RecentPosts)
	if err != nil && p.settings.FeedFallback {
		p.log.Info("post listing failed, trying site feed", "error", err)
		posts, err = p.cms.FeedPosts(ctx, p.settings.RecentPosts)
	}
	if err != nil {
		rec.add(StageRelated, StatusWarning, err, "could not fetch posts for internal links")
		return nil
	}
	related := PickRelated(posts, title, keyword, p.settings.RelatedPosts)
	rec.add(StageRelated, StatusOK, nil, "found %d related posts for internal linking", len(related))
	return related
}

type uploadedImage struct {
	position int
	media    wordpress.Media
}

func embeds(images []uploadedImage) []Embed {
	out := make([]Embed, len(images))
	for i, img := range images {
		out[i] = Embed{Position: img.position, URL: img.media.URL, Alt: img.media.Alt}
	}
	return out
}

// uploadImages uploads every local image for slug, continuing past
// individual failures.
func (p *Publisher) uploadImages(ctx context.Context, rec *recorder, slug string, alts map[int]string) []uploadedImage {
	dir := output.ImagesDir(p.settings.OutputDir, slug)
	images, err := output.FindImages(dir)
	if err != nil {
		rec.add(StageImages, StatusWarning, err, "could not read %s", dir)
		return nil
	}
	if len(images) == 0 {
		rec.add(StageImages, StatusWarning, nil, "no images found in %s", dir)
		return nil
	}

	var uploaded []uploadedImage
	for _, img := range images {
		alt := alts[img.Position]
		if alt == "" {
			alt = DefaultAlt(slug, img.Position)
		}
		media, err := p.cms.UploadMedia(ctx, img.Path, slug, img.Position, alt)
		if err != nil {
			rec.add(StageImages, StatusWarning, err, "failed to upload image %d", img.Position)
			continue
		}
		uploaded = append(uploaded, uploadedImage{position: img.Position, media: media})
		rec.add(StageImages, StatusOK, nil, "uploaded image %d", img.Position)
	}
	return uploaded
}

func (p *Publisher) setFeatured(ctx context.Context, rec *recorder, postID, mediaID int) bool {
	if err := p.cms.SetFeaturedImage(ctx, postID, mediaID); err != nil {
		rec.add(StageFeatured, StatusWarning, err, "could not set featured image")
		return false
	}
	rec.add(StageFeatured, StatusOK, nil, "featured image set")
	return true
}

// Recovery is the result of RecoverImages.
type Recovery struct {
	PostID      int
	Title       string
	EditURL     string
	Uploaded    int
	FeaturedSet bool
	Events      []Event
}

// RecoverImages uploads local images for an existing draft, swaps its
// placeholders for them and patches the post content.
func (p *Publisher) RecoverImages(ctx context.Context, slug string) (*Recovery, error) {
	rec := &recorder{notify: p.settings.Notify, log: p.log}
	result := &Recovery{}
	finish := func(err error) (*Recovery, error) {
		result.Events = rec.events
		return result, err
	}

	dir := output.ImagesDir(p.settings.OutputDir, slug)
	images, err := output.FindImages(dir)
	if err != nil {
		return finish(err)
	}
	if len(images) == 0 {
		return finish(errs.New(errs.NotFound, "no images found in %s. Place your images there and try again", dir))
	}

	post, err := p.cms.FindDraftBySlug(ctx, slug)
	if err != nil {
		rec.add(StageFindDraft, StatusFailed, err, "no draft found with slug %q", slug)
		return finish(err)
	}
	result.PostID = post.ID
	result.Title = post.Title
	result.EditURL = p.cms.EditURL(post.ID)
	rec.add(StageFindDraft, StatusOK, nil, "found draft %q (ID: %d)", post.Title, post.ID)

	uploaded := p.uploadImages(ctx, rec, slug, ParseAltTexts(post.Content))
	if len(uploaded) == 0 {
		return finish(errs.New(errs.Remote, "no images were uploaded successfully"))
	}
	result.Uploaded = len(uploaded)

	html := ReplacePlaceholders(post.Content, embeds(uploaded))
	if err := p.cms.UpdateContent(ctx, post.ID, html); err != nil {
		rec.add(StageUpdate, StatusFailed, err, "failed to update post content")
		return finish(fmt.Errorf("updating draft: %w", err))
	}
	rec.add(StageUpdate, StatusOK, nil, "post content updated with %d images", len(uploaded))

	result.FeaturedSet = p.setFeatured(ctx, rec, post.ID, uploaded[0].media.ID)
	return finish(nil)
}
