// Package wordpress is a small client for the WordPress REST API covering
// what a draft publish needs: posts, media, and Rank Math fields.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TobiSchelling/blogsmith/internal/errs"
)

// Per-operation timeouts.
const (
	readTimeout  = 15 * time.Second
	writeTimeout = 30 * time.Second
	mediaTimeout = 60 * time.Second
)

const apiPrefix = "/wp-json/wp/v2"

// Client talks to one WordPress site with an Application Password.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	log      *slog.Logger
}

// NewClient returns a client for the site at baseURL. Missing settings are
// reported as a configuration error before any request is made.
func NewClient(baseURL, username, password string, log *slog.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errs.New(errs.ConfigMissing, "WordPress URL not configured. Set wordpress.url or run 'blogsmith init'")
	}
	if username == "" || password == "" {
		return nil, errs.New(errs.ConfigMissing,
			"WordPress credentials not configured. Set wordpress.username and the Application Password variable, or run 'blogsmith init'")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		http:     &http.Client{},
		log:      log,
	}, nil
}

// BaseURL returns the site URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// EditURL returns the admin edit page for a post.
func (c *Client) EditURL(postID int) string {
	return fmt.Sprintf("%s/wp-admin/post.php?post=%d&action=edit", c.baseURL, postID)
}

// ValidateCredentials fetches a single post to prove the credentials work.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	q := url.Values{"per_page": {"1"}}
	resp, err := c.do(ctx, readTimeout, http.MethodGet, apiPrefix+"/posts", q, nil, nil)
	if err != nil {
		return err
	}
	switch resp.status {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return &errs.AppError{
			Kind:       errs.Auth,
			StatusCode: resp.status,
			Message: "WordPress authentication failed (401). Check wordpress.username and the Application Password " +
				"(Users > Profile > Application Passwords)",
		}
	default:
		return resp.err("WordPress API returned status %d", resp.status)
	}
}

type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status == http.StatusOK || r.status == http.StatusCreated
}

// err builds a Remote error carrying the status and a snippet of the body.
func (r *response) err(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if snippet := r.snippet(); snippet != "" {
		msg += ": " + snippet
	}
	kind := errs.Remote
	if r.status == http.StatusUnauthorized || r.status == http.StatusForbidden {
		kind = errs.Auth
	}
	return &errs.AppError{Kind: kind, StatusCode: r.status, Message: msg}
}

func (r *response) snippet() string {
	s := strings.TrimSpace(string(r.body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func (r *response) decode(v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return errs.Wrap(errs.Remote, err, "decoding WordPress response")
	}
	return nil
}

// do performs one authenticated request bounded by timeout. A nil error means
// a response arrived; callers decide which statuses are acceptable.
func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, query url.Values, body io.Reader, header http.Header) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.Remote, err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.Remote, err, "reading %s %s", method, path)
	}
	c.log.Debug("wordpress request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))
	return &response{status: resp.StatusCode, body: data}, nil
}

// doJSON sends payload as a JSON body.
func (c *Client) doJSON(ctx context.Context, timeout time.Duration, method, path string, payload any) (*response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	header := http.Header{"Content-Type": {"application/json"}}
	return c.do(ctx, timeout, method, path, nil, bytes.NewReader(data), header)
}
