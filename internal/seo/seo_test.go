package seo

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/blogsmith/internal/content"
)

func draft(title, meta, slug, body string) *content.Document {
	raw := "**SEO Title (H1):** " + title + "\n" +
		"**Meta Description:** " + meta + "\n" +
		"**URL Slug:** " + slug + "\n\n---\n\n" +
		"# VISUAL FORMAT: FULL BLOG POST\n\n" + body + "\n\n---\n"
	return content.Parse(raw)
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func find(t *testing.T, results []Result, prefix string) Result {
	t.Helper()
	for _, r := range results {
		if strings.HasPrefix(r.Name, prefix) {
			return r
		}
	}
	t.Fatalf("no result with prefix %q", prefix)
	return Result{}
}

func TestRunAlwaysReturnsTwelveResults(t *testing.T) {
	docs := []*content.Document{
		content.Parse(""),
		content.Parse("   \n"),
		draft("Title", "Meta", "slug", "Body text"),
	}
	for _, doc := range docs {
		results := Run(doc, "vending machine ROI")
		require.Len(t, results, CheckCount)

		prefixes := []string{
			"Focus keyword in title", "Focus keyword in meta description", "Meta description length",
			"Focus keyword in first paragraph", "Focus keyword in URL slug", "Keyword density",
			"Exact match ratio", "Keyword in subheadings", "Image alt text", "Word count",
			"Sources section", "Internal link section",
		}
		for i, p := range prefixes {
			assert.True(t, strings.HasPrefix(results[i].Name, p), "result %d: %q", i, results[i].Name)
		}
	}
}

func TestResultStatesAreConsistent(t *testing.T) {
	for _, r := range Run(content.Parse(""), "anything") {
		assert.False(t, r.Passed && r.Warning, "%s is both passed and warning", r.Name)
	}
}

func TestMetaDescriptionScenario(t *testing.T) {
	base := "Find out how vending machine ROI is calculated, which costs matter most, and how operators"
	meta := base + strings.Repeat("x", 155-len(base))
	require.Len(t, meta, 155)

	results := Run(draft("Guide", meta, "guide", words(10)), "vending machine ROI")

	length := find(t, results, "Meta description length")
	assert.True(t, length.Passed)
	assert.Equal(t, "Meta description length: 155 characters", length.Name)
	assert.True(t, find(t, results, "Focus keyword in meta description").Passed)
}

func TestMetaLengthBands(t *testing.T) {
	tests := []struct {
		n       int
		passed  bool
		warning bool
	}{
		{150, true, false},
		{160, true, false},
		{140, false, true},
		{149, false, true},
		{161, false, true},
		{170, false, true},
		{139, false, false},
		{171, false, false},
		{0, false, false},
	}
	for _, tt := range tests {
		r := checkMetaLength(strings.Repeat("m", tt.n))
		assert.Equal(t, tt.passed, r.Passed, "n=%d", tt.n)
		assert.Equal(t, tt.warning, r.Warning, "n=%d", tt.n)
	}
}

func TestWordCountScenarios(t *testing.T) {
	tests := []struct {
		n       int
		passed  bool
		warning bool
		name    string
	}{
		{1500, true, false, "Word count: 1,500 words"},
		{1100, false, true, "Word count: 1,100 words"},
		{500, false, false, "Word count: 500 words"},
		{2100, false, true, "Word count: 2,100 words"},
		{2300, false, false, "Word count: 2,300 words"},
	}
	for _, tt := range tests {
		r := find(t, Run(draft("T", "M", "s", words(tt.n)), "kw"), "Word count")
		assert.Equal(t, tt.name, r.Name)
		assert.Equal(t, tt.passed, r.Passed, "n=%d", tt.n)
		assert.Equal(t, tt.warning, r.Warning, "n=%d", tt.n)
	}
}

func TestWordCountStripsMarkup(t *testing.T) {
	body := "## Heading\n\n**bold** _it_ [link](https://x.com)\n<!-- IMAGE 1: hero -->\n# ##"
	// "Heading", "bold", "it", "linkhttps://x.com"
	assert.Equal(t, 4, WordCount(body))
}

func TestSlugScenario(t *testing.T) {
	r := checkSlug("smart-vending-roi-guide", "smart vending ROI")
	assert.True(t, r.Passed)
	assert.Empty(t, r.Detail)

	variation := checkSlug("roi-of-smart-vending", "smart vending ROI")
	assert.True(t, variation.Passed)
	assert.Equal(t, "close variation found", variation.Detail)

	miss := checkSlug("office-coffee-tips", "smart vending ROI")
	assert.True(t, miss.Failed())
}

func TestZeroInstancesScenario(t *testing.T) {
	body := "## Office Coffee\n\n" + words(300)
	results := Run(draft("Coffee", "Coffee service", "coffee", body), "vending machine ROI")

	density := find(t, results, "Keyword density")
	assert.True(t, density.Failed())
	assert.Equal(t, "too low", density.Detail)

	ratio := find(t, results, "Exact match ratio")
	assert.True(t, ratio.Warning)
	assert.Equal(t, "no keyword instances found", ratio.Detail)

	assert.True(t, find(t, results, "Keyword in subheadings").Failed())
	assert.True(t, HasHardFailures(results))
}

func TestDensityEmptyBody(t *testing.T) {
	r := checkDensity(CountInstances("roi", ""))
	assert.True(t, r.Failed())
	assert.Equal(t, "no content found", r.Detail)
}

func TestDensityBands(t *testing.T) {
	// Single-word keyword in a 1000-word body: density equals the count / 10.
	body := func(hits int) string {
		return strings.TrimSpace(strings.Repeat("roi ", hits) + words(1000-hits))
	}

	pass := checkDensity(CountInstances("roi", body(15)))
	assert.True(t, pass.Passed)
	assert.Equal(t, "Keyword density: 1.5% (target: 1-2%)", pass.Name)

	low := checkDensity(CountInstances("roi", body(9)))
	assert.True(t, low.Warning)
	assert.True(t, strings.HasPrefix(low.Detail, "consider adding"), low.Detail)

	high := checkDensity(CountInstances("roi", body(22)))
	assert.True(t, high.Warning)
	assert.Equal(t, "slightly high, consider reducing", high.Detail)

	tooHigh := checkDensity(CountInstances("roi", body(40)))
	assert.True(t, tooHigh.Failed())
	assert.Equal(t, "too high", tooHigh.Detail)
}

func TestDensityIsMonotonicInExactOccurrences(t *testing.T) {
	keyword := "vending machine roi"
	prev := -1.0
	for k := 0; k <= 6; k++ {
		body := strings.TrimSpace(strings.Repeat(keyword+" ", k) + words(400-3*k))
		c := CountInstances(keyword, body)
		require.Equal(t, 400, c.Words)
		assert.Greater(t, c.Density, prev, "k=%d", k)
		prev = c.Density
	}
}

func TestCountInstancesVariations(t *testing.T) {
	c := CountInstances("smart vending", "vending is smart here")
	assert.Equal(t, 0, c.Exact)
	assert.Equal(t, 1, c.Variations)
	assert.Equal(t, 1, c.Total())

	// Exact phrase windows are not double counted as variations.
	exact := CountInstances("smart vending", "smart vending pays off")
	assert.Equal(t, 1, exact.Exact)
	assert.Equal(t, 0, exact.Variations)

	// Single-word keywords never count variations.
	single := CountInstances("roi", "roi and more roi")
	assert.Equal(t, 2, single.Exact)
	assert.Equal(t, 0, single.Variations)
}

func TestExactCountNeverExceedsTotal(t *testing.T) {
	bodies := []string{
		"",
		"smart vending smart vending vending smart",
		"the smart office uses vending and smart vending machines",
		strings.Repeat("vending smart ", 50),
		"Smart Vending ROI and ROI of smart vending and vending ROI smart",
	}
	keywords := []string{"smart vending", "smart vending roi", "roi", "vending"}
	for _, b := range bodies {
		for _, k := range keywords {
			c := CountInstances(k, b)
			assert.LessOrEqual(t, c.Exact, c.Total(), "kw=%q body=%q", k, b)
			ratio := c.ExactRatio()
			assert.GreaterOrEqual(t, ratio, 0.0)
			assert.LessOrEqual(t, ratio, 100.0)
		}
	}
}

func TestExactRatio(t *testing.T) {
	pass := checkExactRatio(Counts{Exact: 2, Variations: 3})
	assert.True(t, pass.Passed)
	assert.Equal(t, "Exact match ratio: 40% (target: 40%+)", pass.Name)

	low := checkExactRatio(Counts{Exact: 1, Variations: 3})
	assert.True(t, low.Warning)
}

func TestTitleCheck(t *testing.T) {
	assert.True(t, checkTitle("Smart Vending ROI Explained", "smart vending roi").Passed)

	long := strings.Repeat("a", 61) + " smart vending roi"
	late := checkTitle(long, "smart vending roi")
	assert.True(t, late.Warning)
	assert.Equal(t, "keyword found but not within first 60 characters", late.Detail)

	assert.True(t, checkTitle("Office Coffee", "smart vending roi").Failed())
}

func TestFirstParagraphLimit(t *testing.T) {
	assert.True(t, checkFirstParagraph("roi "+words(200), "roi").Passed)
	assert.True(t, checkFirstParagraph(words(150)+" roi", "roi").Failed())
}

func TestSubheadings(t *testing.T) {
	two := checkSubheadings([]string{"Smart Vending ROI Basics", "Why Vending Pays", "Other"}, "smart vending roi")
	assert.True(t, two.Passed)
	assert.Equal(t, "Keyword in subheadings: found in 2 of 3 H2/H3 tags", two.Name)

	one := checkSubheadings([]string{"Smart Vending ROI Basics", "Other"}, "smart vending roi")
	assert.True(t, one.Warning)

	none := checkSubheadings(nil, "smart vending roi")
	assert.True(t, none.Failed())
	assert.Equal(t, "Keyword in subheadings: not found in any H2/H3 tags", none.Name)
}

func TestImageAltText(t *testing.T) {
	alt := checkImageAltText(`<img src="a.png" alt="Smart vending ROI chart">`, "smart vending roi")
	assert.Equal(t, "Image alt text: exact match found", alt.Name)

	prompt := "## Image 1: Hero\n```\nA smart vending ROI dashboard\n```\n---\n"
	fromPrompt := checkImageAltText(prompt, "smart vending roi")
	assert.Equal(t, "Image alt text: keyword found in image prompts", fromPrompt.Name)

	missing := checkImageAltText("## Image 1: Hero\nnothing\n---\nsmart vending roi", "smart vending roi")
	assert.True(t, missing.Warning)
	assert.False(t, missing.Failed())
}

func TestSourcesMarkdownSection(t *testing.T) {
	raw := "intro\n## Sources\n- [A](https://a.com)\n- [B](http://b.org/x)\n- [C](https://c.net)\n## Next\n- [D](https://d.com)"
	r := checkSources(raw)
	assert.True(t, r.Passed)
	assert.Equal(t, "Sources section: 3 links found", r.Name)
}

func TestSourcesHTMLFallback(t *testing.T) {
	raw := `<h2>Sources</h2><ul><li><a href="https://a.com">A</a></li><li><a href='https://b.com'>B</a></li></ul></section><a href="https://c.com">c</a>`
	r := checkSources(raw)
	assert.True(t, r.Warning)
	assert.Equal(t, "Sources section: 2 links found", r.Name)
}

func TestSourcesMissingIsWarning(t *testing.T) {
	r := checkSources("no citations at all")
	assert.True(t, r.Warning)
	assert.Equal(t, "no Sources section detected", r.Detail)
}

func TestInternalLinks(t *testing.T) {
	for _, phrase := range []string{"Related Articles", "further   reading", "You Might Also Like", "related posts"} {
		assert.True(t, checkInternalLinks("text\n## "+phrase+"\n").Passed, phrase)
	}
	r := checkInternalLinks("nothing here")
	assert.True(t, r.Warning)
}

func TestSummarize(t *testing.T) {
	results := []Result{pass("a"), pass("b"), warn("c", ""), fail("d", "")}
	tally := Summarize(results)
	assert.Equal(t, Tally{Passed: 2, Warnings: 1, Failures: 1, Total: 4}, tally)
	assert.True(t, HasHardFailures(results))
	assert.False(t, HasHardFailures(results[:3]))
}

func TestThousands(t *testing.T) {
	for n, want := range map[int]string{0: "0", 999: "999", 1000: "1,000", 1500: "1,500", 1234567: "1,234,567", -2500: "-2,500"} {
		assert.Equal(t, want, Thousands(n), fmt.Sprint(n))
	}
}
