// Package content parses the loosely structured text an LLM returns for a
// blog draft. Every extraction is best-effort: missing structure yields empty
// values and nothing in this package returns an error.
package content

import (
	"regexp"
	"strings"
)

// Metadata field names.
const (
	FieldTitle           = "title"
	FieldKeyword         = "keyword"
	FieldMetaDescription = "meta_description"
	FieldSlug            = "slug"
	FieldArticleType     = "article_type"
)

// ImagePrompt is one "## Image N: Title" block with its fenced prompt text.
type ImagePrompt struct {
	Number int
	Title  string
	Prompt string
}

// Document is a parsed draft. All views are derived once in Parse and the
// value is not modified afterwards.
type Document struct {
	Raw          string
	Metadata     map[string]string
	Body         string
	Headings     []string
	ImagePrompts []ImagePrompt
	HTMLSections map[int]string
}

// Parse derives every view of raw.
func Parse(raw string) *Document {
	body := ExtractBody(raw)
	return &Document{
		Raw:          raw,
		Metadata:     ParseMetadata(raw),
		Body:         body,
		Headings:     ExtractHeadings(raw, body),
		ImagePrompts: ParseImagePrompts(raw),
		HTMLSections: ExtractHTMLSections(raw),
	}
}

// Field returns a metadata value or "" when absent.
func (d *Document) Field(name string) string {
	return d.Metadata[name]
}

// CombinedHTML joins the parsed HTML sections in index order.
// It returns "" when no section was found.
func (d *Document) CombinedHTML() string {
	var parts []string
	for i := 1; i <= htmlSectionCount; i++ {
		if s, ok := d.HTMLSections[i]; ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

var metadataPatterns = []struct {
	field string
	re    *regexp.Regexp
}{
	{FieldTitle, regexp.MustCompile(`\*\*SEO Title \(H1\):\*\*\s*(.+)`)},
	{FieldKeyword, regexp.MustCompile(`\*\*Focus Keyword:\*\*\s*(.+)`)},
	{FieldMetaDescription, regexp.MustCompile(`\*\*Meta Description:\*\*\s*(.+)`)},
	{FieldSlug, regexp.MustCompile(`\*\*URL Slug:\*\*\s*(.+)`)},
	{FieldArticleType, regexp.MustCompile(`\*\*Article Type:\*\*\s*(.+)`)},
}

// ParseMetadata reads the bolded "**Label:** value" lines. Absent labels are
// left out of the map.
func ParseMetadata(raw string) map[string]string {
	meta := make(map[string]string)
	for _, p := range metadataPatterns {
		m := p.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		value := trimEmphasis(m[1])
		if p.field == FieldSlug {
			value = strings.NewReplacer("`", "", "*", "").Replace(value)
			value = strings.TrimSpace(value)
		}
		if value != "" {
			meta[p.field] = value
		}
	}
	return meta
}

func trimEmphasis(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_`"))
}
