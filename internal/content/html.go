package content

import (
	"fmt"
	"regexp"
	"strings"
)

const htmlSectionCount = 3

var (
	htmlSectionHeaderRes = func() []*regexp.Regexp {
		res := make([]*regexp.Regexp, htmlSectionCount+1)
		for i := 1; i <= htmlSectionCount; i++ {
			res[i] = regexp.MustCompile(fmt.Sprintf(`(?i)#\s*HTML FORMAT:?\s*SECTION\s*%d\s*OF\s*3\s*\n`, i))
		}
		return res
	}()
	htmlSectionEndRe = regexp.MustCompile(`(?i)\n#\s*HTML FORMAT|\n#\s*SEO CHECKLIST|\n---\s*\n#`)
	leadingFenceRe   = regexp.MustCompile("^```(?:html?)?\\s*\\n?")
	trailingFenceRe  = regexp.MustCompile("\\n?```\\s*$")
)

// ExtractHTMLSections returns the "HTML FORMAT: SECTION i OF 3" blocks keyed
// by i, each stripped of one surrounding code fence. Missing or empty
// sections are absent from the map.
func ExtractHTMLSections(raw string) map[int]string {
	sections := make(map[int]string)
	for i := 1; i <= htmlSectionCount; i++ {
		loc := htmlSectionHeaderRes[i].FindStringIndex(raw)
		if loc == nil {
			continue
		}
		rest := raw[loc[1]:]
		if end := htmlSectionEndRe.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
		html := strings.TrimSpace(rest)
		html = leadingFenceRe.ReplaceAllString(html, "")
		html = trailingFenceRe.ReplaceAllString(html, "")
		html = strings.TrimSpace(html)
		if html != "" {
			sections[i] = html
		}
	}
	return sections
}
