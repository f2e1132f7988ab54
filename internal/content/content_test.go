package content

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDraft = "# METADATA\n\n" +
	"**SEO Title (H1):** Smart Vending ROI: A Practical Guide for Operators\n" +
	"**Focus Keyword:** smart vending ROI\n" +
	"**Meta Description:** *Learn how to measure smart vending ROI.*\n" +
	"**URL Slug:** `smart-vending-roi-guide`\n" +
	"**Article Type:** operational guide\n\n" +
	"---\n\n" +
	"# IMAGE PROMPTS\n\n" +
	"## Image 1: Hero Banner\nPlacement: top of article\n```\nA modern smart vending machine in a bright office lobby\n```\n\n" +
	"## Image 3: Revenue Chart\n```text\nA clean bar chart comparing monthly revenue\n```\n\n" +
	"---\n\n" +
	"# VISUAL FORMAT: FULL BLOG POST\n\n" +
	"Smart vending ROI starts with knowing your numbers.\n\n" +
	"<!-- IMAGE 1: hero -->\n\n" +
	"## Why Smart Vending ROI Matters\n\nOperators care.\n\n" +
	"### Measuring Payback\n\nTrack it monthly.\n\n" +
	"---\n\n" +
	"# HTML FORMAT: SECTION 1 OF 3\n\n" +
	"```html\n<h2>Why Smart Vending ROI Matters</h2>\n<!-- IMAGE 1: hero -->\n<p>Operators care.</p>\n```\n\n" +
	"# HTML FORMAT: SECTION 2 OF 3\n\n" +
	"<h3>Measuring Payback</h3>\n<p>Track it monthly.</p>\n\n" +
	"# HTML FORMAT: SECTION 3 OF 3\n\n" +
	"```\n<h2>Sources</h2>\n<ul><li><a href=\"https://namanow.org\">NAMA</a></li></ul>\n```\n\n" +
	"# SEO CHECKLIST\n- [x] keyword in title\n"

func TestParseMetadata(t *testing.T) {
	doc := Parse(sampleDraft)

	assert.Equal(t, "Smart Vending ROI: A Practical Guide for Operators", doc.Field(FieldTitle))
	assert.Equal(t, "smart vending ROI", doc.Field(FieldKeyword))
	assert.Equal(t, "Learn how to measure smart vending ROI.", doc.Field(FieldMetaDescription))
	assert.Equal(t, "smart-vending-roi-guide", doc.Field(FieldSlug))
	assert.Equal(t, "operational guide", doc.Field(FieldArticleType))
}

func TestParseMetadataMissingFieldsAreAbsent(t *testing.T) {
	meta := ParseMetadata("**Focus Keyword:** coffee service\nno other labels here")
	assert.Equal(t, map[string]string{FieldKeyword: "coffee service"}, meta)
	_, ok := meta[FieldTitle]
	assert.False(t, ok)
}

func TestExtractBodyNamedSection(t *testing.T) {
	body := ExtractBody(sampleDraft)
	assert.True(t, len(body) > 0)
	assert.Contains(t, body, "Smart vending ROI starts with knowing your numbers.")
	assert.Contains(t, body, "### Measuring Payback")
	assert.NotContains(t, body, "HTML FORMAT")
	assert.NotContains(t, body, "VISUAL FORMAT")
}

func TestExtractBodyNamedSectionStopsAtHTMLHeader(t *testing.T) {
	raw := "# Visual Format Full Blog Post\nLine one.\nLine two.\n# HTML FORMAT: SECTION 1 OF 3\n<p>x</p>"
	assert.Equal(t, "Line one.\nLine two.", ExtractBody(raw))
}

func TestExtractBodySecondSeparatedSection(t *testing.T) {
	raw := "intro\n---\nfirst part\n# HTML FORMAT one\nx\n---\nsecond body\n# HTML FORMAT two\ny"
	assert.Equal(t, "second body", ExtractBody(raw))
}

func TestExtractBodyFallsBackToWholeInput(t *testing.T) {
	raw := "Just a plain article.\n\nNo structure at all."
	assert.Equal(t, raw, ExtractBody(raw))

	onlyOneSection := "a\n---\nb\n# HTML FORMAT\nc"
	assert.Equal(t, onlyOneSection, ExtractBody(onlyOneSection))
}

func TestExtractHeadingsOrder(t *testing.T) {
	doc := Parse(sampleDraft)
	require.Len(t, doc.Headings, 5)
	assert.Equal(t, []string{
		"Why Smart Vending ROI Matters",
		"Measuring Payback",
		"Why Smart Vending ROI Matters",
		"Measuring Payback",
		"Sources",
	}, doc.Headings)
}

func TestExtractHeadingsMarkdownBeforeHTML(t *testing.T) {
	raw := "<h2>First In Text</h2>\n## Later Markdown\n"
	headings := ExtractHeadings(raw, ExtractBody(raw))
	assert.Equal(t, []string{"Later Markdown", "First In Text"}, headings)
}

func TestParseImagePrompts(t *testing.T) {
	doc := Parse(sampleDraft)
	require.Len(t, doc.ImagePrompts, 2)

	assert.Equal(t, ImagePrompt{
		Number: 1,
		Title:  "Hero Banner",
		Prompt: "A modern smart vending machine in a bright office lobby",
	}, doc.ImagePrompts[0])
	// Numbering is preserved as written, not renumbered.
	assert.Equal(t, 3, doc.ImagePrompts[1].Number)
	assert.Equal(t, "A clean bar chart comparing monthly revenue", doc.ImagePrompts[1].Prompt)
}

func TestParseImagePromptsHugeNumber(t *testing.T) {
	raw := "## Image 99999999999999999999: Overflow\n```\nA warehouse aisle\n```\n"
	prompts := ParseImagePrompts(raw)
	require.Len(t, prompts, 1)
	assert.Equal(t, math.MaxInt, prompts[0].Number)
	assert.Equal(t, "A warehouse aisle", prompts[0].Prompt)
}

func TestExtractHTMLSections(t *testing.T) {
	doc := Parse(sampleDraft)
	require.Len(t, doc.HTMLSections, 3)

	assert.Equal(t, "<h2>Why Smart Vending ROI Matters</h2>\n<!-- IMAGE 1: hero -->\n<p>Operators care.</p>", doc.HTMLSections[1])
	assert.Equal(t, "<h3>Measuring Payback</h3>\n<p>Track it monthly.</p>", doc.HTMLSections[2])
	assert.Equal(t, "<h2>Sources</h2>\n<ul><li><a href=\"https://namanow.org\">NAMA</a></li></ul>", doc.HTMLSections[3])
	assert.NotContains(t, doc.HTMLSections[3], "SEO CHECKLIST")
}

func TestCombinedHTML(t *testing.T) {
	doc := Parse(sampleDraft)
	combined := doc.CombinedHTML()
	assert.Contains(t, combined, "<p>Operators care.</p>\n\n<h3>Measuring Payback</h3>")

	assert.Equal(t, "", Parse("no html here").CombinedHTML())
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t  ",
		"```\n## Image 1: Unclosed\n```html\n",
		"**SEO Title (H1):**",
		"# VISUAL FORMAT: FULL BLOG POST\n",
		"# HTML FORMAT: SECTION 1 OF 3\n",
		"---\n---\n---\n",
		"## Image x: not a number\n```\nprompt\n```",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			doc := Parse(in)
			assert.NotNil(t, doc.Metadata)
			assert.NotNil(t, doc.HTMLSections)
		})
	}

	empty := Parse("")
	assert.Equal(t, "", empty.Body)
	assert.Empty(t, empty.Headings)
	assert.Empty(t, empty.ImagePrompts)
}
