package imagegen

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	positionRe   = regexp.MustCompile(`image-(\d+)`)
	htmlFormatRe = regexp.MustCompile(`(?i)\n#\s*HTML FORMAT`)
)

// PositionFromPath returns the N of an image-N file name.
func PositionFromPath(path string) (int, bool) {
	m := positionRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// EmbedInMarkdown replaces the first <!-- IMAGE N --> placeholder for each
// image with a markdown image pointing at images/<slug>/<file>. Only the
// markdown part is searched; placeholders inside the HTML FORMAT sections are
// kept for publishing. Images already referenced are skipped, so repeated
// calls with the same images leave the text unchanged.
func EmbedInMarkdown(markdown, slug string, paths []string) string {
	for _, path := range paths {
		n, ok := PositionFromPath(path)
		if !ok {
			continue
		}
		rel := "images/" + slug + "/" + filepath.Base(path)
		if strings.Contains(markdown, "]("+rel+")") {
			continue
		}

		placeholder := regexp.MustCompile(fmt.Sprintf(`<!--\s*IMAGE\s*%d\b[^>]*-->`, n))
		loc := placeholder.FindStringIndex(markdown[:markdownEnd(markdown)])
		if loc == nil {
			continue
		}
		embed := fmt.Sprintf("![Image %d](%s)", n, rel)
		markdown = markdown[:loc[0]] + embed + markdown[loc[1]:]
	}
	return markdown
}

// markdownEnd returns the offset where the HTML FORMAT sections begin.
func markdownEnd(text string) int {
	if loc := htmlFormatRe.FindStringIndex(text); loc != nil {
		return loc[0]
	}
	return len(text)
}
