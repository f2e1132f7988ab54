package content

import (
	"regexp"
	"strings"
)

var (
	bodyHeaderRe     = regexp.MustCompile(`(?i)#\s*VISUAL FORMAT:?\s*FULL BLOG POST\s*\n`)
	bodyTerminatorRe = regexp.MustCompile(`(?i)\n---\n|\n#\s*HTML FORMAT`)

	separatorRe       = regexp.MustCompile(`---\s*\n`)
	htmlFormatStartRe = regexp.MustCompile(`\n#\s*HTML FORMAT`)
)

// ExtractBody returns the article body using three tiers:
//  1. the text under the "VISUAL FORMAT: FULL BLOG POST" header, up to the
//     next "---" separator line or "HTML FORMAT" header;
//  2. the second "---"-delimited section that runs up to an "HTML FORMAT" header;
//  3. the whole input unchanged.
func ExtractBody(raw string) string {
	if body, ok := namedBody(raw); ok {
		return body
	}
	if body, ok := secondSeparatedSection(raw); ok {
		return body
	}
	return raw
}

func namedBody(raw string) (string, bool) {
	loc := bodyHeaderRe.FindStringIndex(raw)
	if loc == nil {
		return "", false
	}
	rest := raw[loc[1]:]
	end := bodyTerminatorRe.FindStringIndex(rest)
	if end == nil {
		return "", false
	}
	return strings.TrimSpace(rest[:end[0]]), true
}

// secondSeparatedSection walks non-overlapping "---" sections, each ending
// where the next "HTML FORMAT" header begins, and returns the second one.
func secondSeparatedSection(raw string) (string, bool) {
	var sections []string
	pos := 0
	for pos <= len(raw) && len(sections) < 2 {
		sep := separatorRe.FindStringIndex(raw[pos:])
		if sep == nil {
			break
		}
		start := pos + sep[1]
		end := htmlFormatStartRe.FindStringIndex(raw[start:])
		if end == nil {
			break
		}
		sections = append(sections, raw[start:start+end[0]])
		pos = start + end[0]
	}
	if len(sections) < 2 {
		return "", false
	}
	return strings.TrimSpace(sections[1]), true
}
