package publish

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/TobiSchelling/blogsmith/internal/wordpress"
)

// SourcesHeading is the exact heading internal links are inserted before.
const SourcesHeading = "<h2>Sources</h2>"

// BuildLinksHTML renders the related-posts block. It returns "" for no posts.
func BuildLinksHTML(heading string, posts []wordpress.Post) string {
	if len(posts) == 0 {
		return ""
	}
	items := make([]string, len(posts))
	for i, p := range posts {
		items[i] = fmt.Sprintf(`  <li><a href="%s">%s</a></li>`, html.EscapeString(p.Link), html.EscapeString(p.Title))
	}
	return fmt.Sprintf("<h2>%s</h2>\n<p>If you found this helpful, here are a few other posts worth checking out:</p>\n<ul>\n%s\n</ul>",
		html.EscapeString(heading), strings.Join(items, "\n"))
}

// InsertLinks places links before the first SourcesHeading, or appends it.
// Only that literal heading is recognized.
func InsertLinks(content, links string) string {
	if links == "" {
		return content
	}
	if i := strings.Index(content, SourcesHeading); i >= 0 {
		return content[:i] + links + "\n\n" + content[i:]
	}
	return content + "\n\n" + links
}

// placeholderRe matches "<!-- [IMAGE n: ...] -->" and an optional
// "<!-- Alt text: ... -->" comment right after it. The alt may be double
// quoted, single quoted or bare; quotes of the other kind belong to the text.
var placeholderRe = regexp.MustCompile(
	`(?i)<!--\s*\[?\s*IMAGE\s*(\d+)\b[^>]*-->` +
		`(?:\s*<!--\s*Alt\s*text:\s*(?:"([^"<>]*)"|'([^'<>]*)'|([^<>]*?))\s*-->)?`)

// altText picks the captured alt out of a placeholderRe match.
func altText(m []string) string {
	switch {
	case m[2] != "":
		return strings.TrimSpace(m[2])
	case m[3] != "":
		return strings.TrimSpace(m[3])
	}
	return strings.TrimSpace(strings.Trim(m[4], `"' `))
}

// ParseAltTexts maps image numbers to the alt text given in their
// placeholder comments. The first non-empty alt per number wins.
func ParseAltTexts(content string) map[int]string {
	alts := make(map[int]string)
	for _, m := range placeholderRe.FindAllStringSubmatch(content, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if alts[n] != "" {
			continue
		}
		alts[n] = altText(m)
	}
	return alts
}

// Embed is an uploaded image destined for placeholder n.
type Embed struct {
	Position int
	URL      string
	Alt      string
}

// ImageTag renders the img element used in place of a placeholder.
func ImageTag(e Embed) string {
	return fmt.Sprintf(`<img src="%s" alt="%s" style="width:100%%; height:auto;" />`,
		html.EscapeString(e.URL), html.EscapeString(e.Alt))
}

// ReplacePlaceholders swaps the first placeholder of each embedded number
// (with its alt comment) for an img tag. Placeholders without an embed stay.
func ReplacePlaceholders(content string, embeds []Embed) string {
	if len(embeds) == 0 {
		return content
	}
	byPos := make(map[int]Embed, len(embeds))
	for _, e := range embeds {
		if _, ok := byPos[e.Position]; !ok {
			byPos[e.Position] = e
		}
	}

	var b strings.Builder
	last := 0
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(content, -1) {
		n, err := strconv.Atoi(content[m[2]:m[3]])
		if err != nil {
			continue
		}
		e, ok := byPos[n]
		if !ok {
			continue
		}
		delete(byPos, n)
		b.WriteString(content[last:m[0]])
		b.WriteString(ImageTag(e))
		last = m[1]
	}
	b.WriteString(content[last:])
	return b.String()
}

// DefaultAlt is used when a placeholder carries no alt text.
func DefaultAlt(slug string, position int) string {
	return fmt.Sprintf("%s image %d", strings.ReplaceAll(slug, "-", " "), position)
}
