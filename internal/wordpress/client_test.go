package wordpress

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/blogsmith/internal/errs"
	"github.com/TobiSchelling/blogsmith/internal/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", "editor", "app pass", logger.Discard())
	require.NoError(t, err)
	return c
}

func readJSON(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
	return m
}

func TestNewClientMissingSettings(t *testing.T) {
	_, err := NewClient("", "u", "p", nil)
	assert.True(t, errs.IsKind(err, errs.ConfigMissing))

	_, err = NewClient("https://blog.example", "u", "", nil)
	assert.True(t, errs.IsKind(err, errs.ConfigMissing))
	assert.Contains(t, err.Error(), "blogsmith init")
}

func TestEditURL(t *testing.T) {
	c, err := NewClient("https://blog.example/", "u", "p", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://blog.example/wp-admin/post.php?post=42&action=edit", c.EditURL(42))
}

func TestValidateCredentials(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "editor", user)
			assert.Equal(t, "app pass", pass)
			assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
			assert.Equal(t, "1", r.URL.Query().Get("per_page"))
			w.Write([]byte(`[]`))
		}))
		assert.NoError(t, c.ValidateCredentials(context.Background()))
	})

	t.Run("unauthorized", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		err := c.ValidateCredentials(context.Background())
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.Auth))
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		err := c.ValidateCredentials(context.Background())
		assert.True(t, errs.IsKind(err, errs.Remote))
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestRecentPosts(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "20", q.Get("per_page"))
		assert.Equal(t, "publish", q.Get("status"))
		assert.Equal(t, "date", q.Get("orderby"))
		assert.Equal(t, "desc", q.Get("order"))
		w.Write([]byte(`[
			{"id": 7, "link": "https://blog.example/vending-tips/", "slug": "vending-tips",
			 "title": {"rendered": "Vending Tips &#8211; <em>Part 1</em>"}}
		]`))
	}))

	posts, err := c.RecentPosts(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, Post{ID: 7, Title: "Vending Tips – Part 1", Link: "https://blog.example/vending-tips/", Slug: "vending-tips"}, posts[0])
}

func TestFindDraftBySlug(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("slug") == "missing" {
			w.Write([]byte(`[]`))
			return
		}
		assert.Equal(t, "draft", r.URL.Query().Get("status"))
		w.Write([]byte(`[{"id": 9, "slug": "roi-guide", "title": {"rendered": "ROI"}, "content": {"rendered": "<p>hi</p>"}}]`))
	}))

	post, err := c.FindDraftBySlug(context.Background(), "roi-guide")
	require.NoError(t, err)
	assert.Equal(t, 9, post.ID)
	assert.Equal(t, "<p>hi</p>", post.Content)

	_, err = c.FindDraftBySlug(context.Background(), "missing")
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestCreateDraft(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body := readJSON(t, r)
		assert.Equal(t, "My Title", body["title"])
		assert.Equal(t, "<p>x</p>", body["content"])
		assert.Equal(t, "draft", body["status"])
		assert.Equal(t, "my-title", body["slug"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 55}`))
	}))

	draft, err := c.CreateDraft(context.Background(), "My Title", "<p>x</p>", "my-title")
	require.NoError(t, err)
	assert.Equal(t, 55, draft.ID)
	assert.Equal(t, c.BaseURL()+"/wp-admin/post.php?post=55&action=edit", draft.EditURL)
}

func TestCreateDraftFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	_, err := c.CreateDraft(context.Background(), "t", "c", "s")
	require.Error(t, err)
	var app *errs.AppError
	require.ErrorAs(t, err, &app)
	assert.Equal(t, http.StatusBadRequest, app.StatusCode)
}

func TestUploadMedia(t *testing.T) {
	var tagged map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wp/v2/media":
			assert.Equal(t, `attachment; filename="image-2.png"`, r.Header.Get("Content-Disposition"))
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			data, _ := io.ReadAll(r.Body)
			assert.Equal(t, "PNGDATA", string(data))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 301, "source_url": "https://blog.example/wp-content/uploads/image-2.png"}`))
		case "/wp-json/wp/v2/media/301":
			tagged = readJSON(t, r)
			w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	path := filepath.Join(t.TempDir(), "image-2.png")
	require.NoError(t, os.WriteFile(path, []byte("PNGDATA"), 0o644))

	media, err := c.UploadMedia(context.Background(), path, "roi-guide", 2, "a chart")
	require.NoError(t, err)
	assert.Equal(t, Media{ID: 301, URL: "https://blog.example/wp-content/uploads/image-2.png", Alt: "a chart"}, media)
	assert.Equal(t, map[string]any{"alt_text": "a chart", "title": "roi-guide-image-2"}, tagged)
}

func TestUploadMediaTagFailureIsIgnored(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/media" {
			w.Write([]byte(`{"id": 1, "source_url": "u"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	path := filepath.Join(t.TempDir(), "image-1.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	media, err := c.UploadMedia(context.Background(), path, "s", 1, "alt")
	require.NoError(t, err)
	assert.Equal(t, 1, media.ID)
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "image/png", MimeType("a.PNG"))
	assert.Equal(t, "image/webp", MimeType("a.webp"))
	assert.Equal(t, "image/jpeg", MimeType("a.bmp"))
}

func TestSetRankMathMeta(t *testing.T) {
	t.Run("plugin endpoint", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/wp-json/rankmath/v1/updateMeta", r.URL.Path)
			body := readJSON(t, r)
			assert.Equal(t, float64(12), body["objectID"])
			assert.Equal(t, "post", body["objectType"])
			meta := body["meta"].(map[string]any)
			assert.Equal(t, "kw", meta["rank_math_focus_keyword"])
			w.Write([]byte(`{}`))
		}))
		assert.True(t, c.SetRankMathMeta(context.Background(), 12, SEOMeta{Title: "t", Description: "d", FocusKeyword: "kw"}))
	})

	t.Run("falls back to post meta", func(t *testing.T) {
		var paths []string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.URL.Path == "/wp-json/rankmath/v1/updateMeta" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write([]byte(`{}`))
		}))
		assert.True(t, c.SetRankMathMeta(context.Background(), 12, SEOMeta{}))
		assert.Equal(t, []string{"/wp-json/rankmath/v1/updateMeta", "/wp-json/wp/v2/posts/12"}, paths)
	})

	t.Run("both rejected", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		assert.False(t, c.SetRankMathMeta(context.Background(), 12, SEOMeta{}))
	})
}

func TestSetFeaturedImageAndUpdateContent(t *testing.T) {
	var bodies []map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/posts/5", r.URL.Path)
		bodies = append(bodies, readJSON(t, r))
		w.Write([]byte(`{}`))
	}))
	require.NoError(t, c.SetFeaturedImage(context.Background(), 5, 301))
	require.NoError(t, c.UpdateContent(context.Background(), 5, "<p>new</p>"))
	assert.Equal(t, []map[string]any{
		{"featured_media": float64(301)},
		{"content": "<p>new</p>"},
	}, bodies)
}

func TestFeedPosts(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed", r.URL.Path)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>Blog</title>
<item><title>Route Planning &amp; Restocking</title><link>https://blog.example/route-planning/</link></item>
<item><title>Second</title><link>https://blog.example/?p=4</link></item>
<item><title>Third</title><link>https://blog.example/third/</link></item>
</channel></rss>`))
	}))

	posts, err := c.FeedPosts(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, Post{Title: "Route Planning & Restocking", Link: "https://blog.example/route-planning/", Slug: "route-planning"}, posts[0])
	assert.Equal(t, "", posts[1].Slug)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "A & B", PlainText("A &amp; B"))
	assert.Equal(t, "Hello world", PlainText("<strong>Hello</strong>   world"))
	assert.Equal(t, "", PlainText(""))
}
