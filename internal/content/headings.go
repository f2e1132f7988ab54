package content

import (
	"regexp"
	"strings"
)

var (
	markdownHeadingRe = regexp.MustCompile(`(?m)^#{2,3}\s+(.+)$`)
	htmlHeadingRe     = regexp.MustCompile(`(?i)<h[23][^>]*>(.*?)</h[23]>`)
)

// ExtractHeadings returns the markdown H2/H3 lines of body followed by the
// HTML <h2>/<h3> headings found anywhere in raw, each group in document order.
func ExtractHeadings(raw, body string) []string {
	var headings []string
	for _, m := range markdownHeadingRe.FindAllStringSubmatch(body, -1) {
		headings = append(headings, strings.TrimSpace(m[1]))
	}
	for _, m := range htmlHeadingRe.FindAllStringSubmatch(raw, -1) {
		headings = append(headings, strings.TrimSpace(m[1]))
	}
	return headings
}
