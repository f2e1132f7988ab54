package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/TobiSchelling/blogsmith/internal/errs"
)

// Post is a WordPress post as the publisher sees it. Title is plain text.
type Post struct {
	ID      int
	Title   string
	Link    string
	Slug    string
	Content string // rendered HTML, only filled for drafts
}

// Draft is a newly created draft post.
type Draft struct {
	ID      int
	EditURL string
}

type rendered struct {
	Rendered string `json:"rendered"`
}

type apiPost struct {
	ID      int      `json:"id"`
	Link    string   `json:"link"`
	Slug    string   `json:"slug"`
	Title   rendered `json:"title"`
	Content rendered `json:"content"`
}

func (p apiPost) toPost() Post {
	return Post{
		ID:      p.ID,
		Title:   PlainText(p.Title.Rendered),
		Link:    p.Link,
		Slug:    p.Slug,
		Content: p.Content.Rendered,
	}
}

// RecentPosts lists up to count published posts, newest first.
func (c *Client) RecentPosts(ctx context.Context, count int) ([]Post, error) {
	q := url.Values{
		"per_page": {strconv.Itoa(count)},
		"status":   {"publish"},
		"orderby":  {"date"},
		"order":    {"desc"},
	}
	resp, err := c.do(ctx, readTimeout, http.MethodGet, apiPrefix+"/posts", q, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, resp.err("failed to fetch posts (%d)", resp.status)
	}

	var raw []apiPost
	if err := resp.decode(&raw); err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(raw))
	for _, p := range raw {
		post := p.toPost()
		post.Content = ""
		posts = append(posts, post)
	}
	return posts, nil
}

// FindDraftBySlug returns the draft with the given slug.
func (c *Client) FindDraftBySlug(ctx context.Context, slug string) (Post, error) {
	q := url.Values{"slug": {slug}, "status": {"draft"}}
	resp, err := c.do(ctx, readTimeout, http.MethodGet, apiPrefix+"/posts", q, nil, nil)
	if err != nil {
		return Post{}, err
	}
	if resp.status != http.StatusOK {
		return Post{}, resp.err("looking up draft %q (%d)", slug, resp.status)
	}

	var raw []apiPost
	if err := resp.decode(&raw); err != nil {
		return Post{}, err
	}
	if len(raw) == 0 {
		return Post{}, errs.New(errs.NotFound,
			"no draft found with slug '%s'. Make sure the draft exists on WordPress before uploading images", slug)
	}
	return raw[0].toPost(), nil
}

// CreateDraft creates a draft post.
func (c *Client) CreateDraft(ctx context.Context, title, content, slug string) (Draft, error) {
	resp, err := c.doJSON(ctx, writeTimeout, http.MethodPost, apiPrefix+"/posts", map[string]any{
		"title":   title,
		"content": content,
		"status":  "draft",
		"slug":    slug,
	})
	if err != nil {
		return Draft{}, err
	}
	if !resp.ok() {
		return Draft{}, resp.err("draft creation failed (%d)", resp.status)
	}

	var created apiPost
	if err := resp.decode(&created); err != nil {
		return Draft{}, err
	}
	return Draft{ID: created.ID, EditURL: c.EditURL(created.ID)}, nil
}

// UpdateContent replaces the HTML content of a post.
func (c *Client) UpdateContent(ctx context.Context, postID int, content string) error {
	resp, err := c.doJSON(ctx, writeTimeout, http.MethodPost, postPath(postID), map[string]any{
		"content": content,
	})
	if err != nil {
		return err
	}
	if !resp.ok() {
		return resp.err("failed to update post %d (%d)", postID, resp.status)
	}
	return nil
}

// SetFeaturedImage sets the post thumbnail.
func (c *Client) SetFeaturedImage(ctx context.Context, postID, mediaID int) error {
	resp, err := c.doJSON(ctx, readTimeout, http.MethodPost, postPath(postID), map[string]any{
		"featured_media": mediaID,
	})
	if err != nil {
		return err
	}
	if !resp.ok() {
		return resp.err("failed to set featured image (%d)", resp.status)
	}
	return nil
}

func postPath(id int) string {
	return fmt.Sprintf("%s/posts/%d", apiPrefix, id)
}

// PlainText strips markup from a rendered WordPress field and decodes
// entities, so "Tips &#8211; <em>Part 1</em>" becomes "Tips – Part 1".
func PlainText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
