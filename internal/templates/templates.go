// Package templates loads tone prompt templates and fills in their
// {{PLACEHOLDER}} variables.
package templates

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/TobiSchelling/blogsmith/internal/errs"
)

//go:embed defaults/*.txt
var defaults embed.FS

// ArticleTypes lists the article types the templates are written for.
var ArticleTypes = []string{
	"research analysis",
	"operational guide",
	"strategic framework",
	"lesser-known facts",
	"industry comparison",
}

const placeholderText = "# Paste your template prompt here"

// Loader reads templates from a user directory, falling back to the
// embedded defaults.
type Loader struct {
	Dir string
}

// Load returns the template for tone.
func (l Loader) Load(tone string) (string, error) {
	tone = strings.ToLower(strings.TrimSpace(tone))
	if tone == "" || strings.ContainsAny(tone, `/\`) {
		return "", errs.New(errs.Invalid, "invalid tone %q", tone)
	}

	if l.Dir != "" {
		path := filepath.Join(l.Dir, tone+".txt")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			text := string(data)
			if strings.TrimSpace(text) == placeholderText {
				return "", errs.New(errs.Invalid,
					"template '%s.txt' is a placeholder. Paste your prompt template into %s", tone, path)
			}
			return text, nil
		case !os.IsNotExist(err):
			return "", fmt.Errorf("reading template: %w", err)
		}
	}

	data, err := defaults.ReadFile("defaults/" + tone + ".txt")
	if err != nil {
		return "", errs.New(errs.NotFound, "template not found: %s. Available templates: %s",
			tone, strings.Join(l.Available(), ", "))
	}
	return string(data), nil
}

// Available lists every tone found in the user directory or the defaults.
func (l Loader) Available() []string {
	seen := make(map[string]bool)
	if entries, err := defaults.ReadDir("defaults"); err == nil {
		for _, e := range entries {
			seen[strings.TrimSuffix(e.Name(), ".txt")] = true
		}
	}
	if l.Dir != "" {
		if matches, err := filepath.Glob(filepath.Join(l.Dir, "*.txt")); err == nil {
			for _, m := range matches {
				seen[strings.TrimSuffix(filepath.Base(m), ".txt")] = true
			}
		}
	}
	tones := make([]string, 0, len(seen))
	for t := range seen {
		tones = append(tones, t)
	}
	sort.Strings(tones)
	return tones
}

// Default returns the embedded template for tone, for writing out on init.
func Default(tone string) ([]byte, error) {
	return defaults.ReadFile("defaults/" + tone + ".txt")
}

// Params are the values substituted into a template.
type Params struct {
	Topic       string
	ArticleType string
	CoreMessage string
	Notes       string
	Keyword     string
}

// Render fills the template and returns it with the focus keyword used,
// which is derived from the topic when none was given.
func Render(template string, p Params) (string, string) {
	core := p.CoreMessage
	if core == "" {
		core = "Practical insights to help operators succeed with " + p.Topic
	}
	keyword := strings.TrimSpace(p.Keyword)
	if keyword == "" {
		keyword = GenerateKeyword(p.Topic)
	}
	notes := ""
	if strings.TrimSpace(p.Notes) != "" {
		notes = "## EXTRA NOTES\n" + p.Notes
	}

	r := strings.NewReplacer(
		"{{TOPIC}}", p.Topic,
		"{{ARTICLE_TYPE}}", p.ArticleType,
		"{{CORE_MESSAGE}}", core,
		"{{FOCUS_KEYWORD}}", keyword,
		"{{EXTRA_NOTES}}", notes,
	)
	return r.Replace(template), keyword
}

var keywordStopwords = map[string]bool{
	"for": true, "the": true, "a": true, "an": true, "and": true,
	"or": true, "of": true, "in": true, "on": true, "to": true,
	"with": true, "is": true, "are": true, "how": true,
}

var keywordPunctRe = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)

// GenerateKeyword condenses a topic into a keyword phrase of at most five
// words. A topic made only of stopwords is returned lowercased.
func GenerateKeyword(topic string) string {
	lower := strings.ToLower(strings.TrimSpace(topic))
	var kept []string
	for _, w := range strings.Fields(keywordPunctRe.ReplaceAllString(lower, "")) {
		if !keywordStopwords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) > 5 {
		kept = kept[:5]
	}
	if len(kept) == 0 {
		return lower
	}
	return strings.Join(kept, " ")
}
