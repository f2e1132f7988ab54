// Package seo runs a fixed battery of on-page checks against a parsed draft
// and a focus keyword.
package seo

import (
	"github.com/TobiSchelling/blogsmith/internal/content"
)

// CheckCount is the number of results Run always returns.
const CheckCount = 12

// Result is the outcome of one check. A hard failure is Passed=false with
// Warning=false.
type Result struct {
	Name    string
	Passed  bool
	Warning bool
	Detail  string
}

// Failed reports whether the result is a hard failure.
func (r Result) Failed() bool {
	return !r.Passed && !r.Warning
}

// Tally counts results by outcome.
type Tally struct {
	Passed   int
	Warnings int
	Failures int
	Total    int
}

// Run executes every check in a fixed order. It never omits a check: when
// the draft lacks the data a check needs, that check warns or fails.
func Run(doc *content.Document, keyword string) []Result {
	counts := CountInstances(keyword, doc.Body)

	return []Result{
		checkTitle(doc.Field(content.FieldTitle), keyword),
		checkMetaKeyword(doc.Field(content.FieldMetaDescription), keyword),
		checkMetaLength(doc.Field(content.FieldMetaDescription)),
		checkFirstParagraph(doc.Body, keyword),
		checkSlug(doc.Field(content.FieldSlug), keyword),
		checkDensity(counts),
		checkExactRatio(counts),
		checkSubheadings(doc.Headings, keyword),
		checkImageAltText(doc.Raw, keyword),
		checkWordCount(doc.Body),
		checkSources(doc.Raw),
		checkInternalLinks(doc.Raw),
	}
}

// HasHardFailures reports whether any result is a hard failure.
func HasHardFailures(results []Result) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}

// Summarize tallies results by outcome.
func Summarize(results []Result) Tally {
	t := Tally{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Passed:
			t.Passed++
		case r.Warning:
			t.Warnings++
		default:
			t.Failures++
		}
	}
	return t
}

func pass(name string) Result {
	return Result{Name: name, Passed: true}
}

func warn(name, detail string) Result {
	return Result{Name: name, Warning: true, Detail: detail}
}

func fail(name, detail string) Result {
	return Result{Name: name, Detail: detail}
}
