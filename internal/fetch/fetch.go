// Package fetch pulls readable text from reference pages so it can be handed
// to the LLM as extra notes.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	defaultTimeout = 15 * time.Second
	// MaxChars caps the text kept per reference page.
	MaxChars = 4000
	minChars = 100
)

// Reference is the extracted text of one page.
type Reference struct {
	URL   string
	Title string
	Text  string
}

// Result holds the results of a reference fetch run.
type Result struct {
	References []Reference
	Failed     []string
}

// ReferenceFetcher fetches pages via HTTP + readability extraction.
type ReferenceFetcher struct {
	client   *http.Client
	maxChars int
	log      *slog.Logger
}

// NewReferenceFetcher creates a new reference fetcher.
func NewReferenceFetcher(timeout time.Duration, log *slog.Logger) *ReferenceFetcher {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &ReferenceFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		maxChars: MaxChars,
		log:      log,
	}
}

// FetchAll fetches every URL in order. Pages that fail or have no extractable
// text are logged and listed in Failed.
func (f *ReferenceFetcher) FetchAll(ctx context.Context, urls []string) *Result {
	result := &Result{}
	for _, u := range urls {
		ref, err := f.Fetch(ctx, u)
		if err != nil {
			f.log.Warn("skipping reference", "url", u, "error", err)
			result.Failed = append(result.Failed, u)
			continue
		}
		result.References = append(result.References, ref)
		f.log.Debug("fetched reference", "url", u, "chars", len(ref.Text))
	}
	return result
}

// Fetch extracts the readable text of one page.
func (f *ReferenceFetcher) Fetch(ctx context.Context, pageURL string) (Reference, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return Reference{}, fmt.Errorf("invalid reference URL %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Reference{}, err
	}
	req.Header.Set("User-Agent", "blogsmith/1.0 (reference reader)")

	resp, err := f.client.Do(req)
	if err != nil {
		return Reference{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Reference{}, &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reference{}, err
	}

	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return Reference{}, fmt.Errorf("extracting content: %w", err)
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if len(text) < minChars {
		return Reference{}, fmt.Errorf("no extractable content")
	}
	return Reference{URL: pageURL, Title: strings.TrimSpace(article.Title), Text: truncate(text, f.maxChars)}, nil
}

// truncate cuts s to at most n bytes on a word boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + " ..."
}

// Notes formats references as a "Reference material" block for the prompt.
func (r *Result) Notes() string {
	if len(r.References) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Reference material:\n")
	for _, ref := range r.References {
		title := ref.Title
		if title == "" {
			title = ref.URL
		}
		fmt.Fprintf(&b, "\n### %s\nSource: %s\n%s\n", title, ref.URL, ref.Text)
	}
	return b.String()
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.code, http.StatusText(e.code))
}
