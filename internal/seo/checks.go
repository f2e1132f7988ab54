package seo

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	titleWindow         = 60
	firstParagraphWords = 150
)

func checkTitle(title, keyword string) Result {
	kw := strings.ToLower(keyword)
	lower := strings.ToLower(title)

	if strings.Contains(firstRunes(lower, titleWindow), kw) {
		return pass("Focus keyword in title (within first 60 chars)")
	}
	if strings.Contains(lower, kw) {
		return warn("Focus keyword in title", "keyword found but not within first 60 characters")
	}
	return fail("Focus keyword in title", "keyword not found in title")
}

func checkMetaKeyword(meta, keyword string) Result {
	if strings.Contains(strings.ToLower(meta), strings.ToLower(keyword)) {
		return pass("Focus keyword in meta description (exact match)")
	}
	return fail("Focus keyword in meta description", "exact-match keyword not found")
}

func checkMetaLength(meta string) Result {
	n := len([]rune(meta))
	name := fmt.Sprintf("Meta description length: %d characters", n)

	switch {
	case n >= 150 && n <= 160:
		return pass(name)
	case (n >= 140 && n < 150) || (n > 160 && n <= 170):
		return warn(name, "target is 150-160 characters")
	default:
		return fail(name, "target is 150-160 characters")
	}
}

func checkFirstParagraph(body, keyword string) Result {
	words := strings.Fields(body)
	if len(words) > firstParagraphWords {
		words = words[:firstParagraphWords]
	}
	opening := strings.ToLower(strings.Join(words, " "))

	if strings.Contains(opening, strings.ToLower(keyword)) {
		return pass("Focus keyword in first paragraph")
	}
	return fail("Focus keyword in first paragraph", "keyword not found in first 150 words")
}

func checkSlug(slug, keyword string) Result {
	kw := strings.ToLower(keyword)
	lowerSlug := strings.ToLower(slug)

	if strings.Contains(lowerSlug, strings.ReplaceAll(kw, " ", "-")) {
		return pass("Focus keyword in URL slug")
	}

	kwWords := wordSet(kw)
	slugWords := wordSet(strings.ReplaceAll(lowerSlug, "-", " "))
	if float64(overlap(kwWords, slugWords)) >= float64(len(kwWords))*0.6 {
		return Result{Name: "Focus keyword in URL slug", Passed: true, Detail: "close variation found"}
	}
	return fail("Focus keyword in URL slug", "keyword or close variation not found in slug")
}

func checkSubheadings(headings []string, keyword string) Result {
	kw := strings.ToLower(keyword)
	kwWords := wordSet(kw)
	threshold := max(1, len(kwWords)/2)

	matches := 0
	for _, h := range headings {
		lower := strings.ToLower(h)
		if strings.Contains(lower, kw) {
			matches++
			continue
		}
		if overlap(kwWords, wordSet(lower)) >= threshold {
			matches++
		}
	}

	switch matches {
	case 0:
		return fail("Keyword in subheadings: not found in any H2/H3 tags", "add keyword to at least 2 subheadings")
	case 1:
		return warn(fmt.Sprintf("Keyword in subheadings: found in 1 of %d H2/H3 tags", len(headings)),
			"target is 2+ subheadings")
	default:
		return pass(fmt.Sprintf("Keyword in subheadings: found in %d of %d H2/H3 tags", matches, len(headings)))
	}
}

var (
	altAttrRe         = regexp.MustCompile(`(?i)alt=["']([^"']*)["']`)
	imageSectionRe    = regexp.MustCompile(`(?is)##\s*Image\s*\d.*?\n`)
	imageSectionEndRe = regexp.MustCompile(`(?i)##\s*Image|\n---`)
)

func checkImageAltText(raw, keyword string) Result {
	kw := strings.ToLower(keyword)

	for _, m := range altAttrRe.FindAllStringSubmatch(raw, -1) {
		if strings.Contains(strings.ToLower(m[1]), kw) {
			return pass("Image alt text: exact match found")
		}
	}
	for _, section := range imageSections(raw) {
		if strings.Contains(strings.ToLower(section), kw) {
			return pass("Image alt text: keyword found in image prompts")
		}
	}
	return warn("Image alt text: keyword not found", "add exact-match keyword to at least one image alt text")
}

// imageSections returns the text after each "## Image N" marker line up to
// the next marker, a "---" separator, or the end of input.
func imageSections(raw string) []string {
	var sections []string
	pos := 0
	for pos < len(raw) {
		loc := imageSectionRe.FindStringIndex(raw[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[1]
		end := len(raw)
		if e := imageSectionEndRe.FindStringIndex(raw[start:]); e != nil {
			end = start + e[0]
		}
		sections = append(sections, raw[start:end])
		pos = end
	}
	return sections
}

var (
	markupCharsRe = regexp.MustCompile("[#*_`\\[\\]()]")
	htmlCommentRe = regexp.MustCompile(`<!--.*?-->`)
)

// WordCount counts body words after removing markdown markup characters and
// single-line HTML comments.
func WordCount(body string) int {
	clean := markupCharsRe.ReplaceAllString(body, "")
	clean = htmlCommentRe.ReplaceAllString(clean, "")
	return len(strings.Fields(clean))
}

func checkWordCount(body string) Result {
	n := WordCount(body)
	name := fmt.Sprintf("Word count: %s words", Thousands(n))

	switch {
	case n >= 1200 && n <= 2000:
		return pass(name)
	case (n >= 1000 && n < 1200) || (n > 2000 && n <= 2200):
		return warn(name, "target: 1,200-2,000 words")
	default:
		return fail(name, "target: 1,200-2,000 words")
	}
}

var (
	sourcesHeaderRe = regexp.MustCompile(`(?i)(?:^|\n)#{1,3}\s*(?:Sources|References|Bibliography)\s*\n`)
	sourcesEndRe    = regexp.MustCompile(`\n#{1,2}\s|\n---`)
	htmlSourcesRe   = regexp.MustCompile(`(?is)(?:Sources|References)</h[23]>(.*?)(?:</div>|</section>|\z)`)
	markdownLinkRe  = regexp.MustCompile(`\[.*?\]\(https?://.*?\)`)
	hrefLinkRe      = regexp.MustCompile(`href=["']https?://.*?["']`)
)

func checkSources(raw string) Result {
	section, found := sourcesSection(raw)
	if !found {
		return warn("Sources section", "no Sources section detected")
	}

	links := len(markdownLinkRe.FindAllString(section, -1)) + len(hrefLinkRe.FindAllString(section, -1))
	name := fmt.Sprintf("Sources section: %d links found", links)
	if links >= 3 {
		return pass(name)
	}
	return warn(name, "target is at least 3 source links")
}

// sourcesSection returns the body of the first markdown Sources, References,
// or Bibliography heading, falling back to an HTML Sources heading.
func sourcesSection(raw string) (string, bool) {
	if loc := sourcesHeaderRe.FindStringIndex(raw); loc != nil {
		rest := raw[loc[1]:]
		if end := sourcesEndRe.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
		return rest, true
	}
	if m := htmlSourcesRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	return "", false
}

var internalLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`related\s*articles`),
	regexp.MustCompile(`further\s*reading`),
	regexp.MustCompile(`internal\s*links`),
	regexp.MustCompile(`read\s*more`),
	regexp.MustCompile(`you\s*might\s*also\s*like`),
	regexp.MustCompile(`related\s*posts`),
}

func checkInternalLinks(raw string) Result {
	lower := strings.ToLower(raw)
	for _, re := range internalLinkPatterns {
		if re.MatchString(lower) {
			return pass("Internal link section: detected")
		}
	}
	return warn("Internal link section: not detected", "related posts are added automatically when publishing")
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// Thousands formats n with comma separators.
func Thousands(n int) string {
	if n < 0 {
		return "-" + Thousands(-n)
	}
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
