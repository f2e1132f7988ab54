package seo

import (
	"fmt"
	"math"
	"strings"
)

// Counts holds keyword occurrence statistics for a body of text.
type Counts struct {
	Words        int // whitespace-separated words in the body
	KeywordWords int // words in the keyword
	Exact        int // literal, case-insensitive keyword occurrences
	Variations   int // windows holding every keyword word without the exact phrase
	Density      float64
}

// Total returns exact plus variation instances.
func (c Counts) Total() int {
	return c.Exact + c.Variations
}

// ExactRatio returns the share of instances that are exact, in percent.
// It is 0 when there are no instances.
func (c Counts) ExactRatio() float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.Exact) / float64(c.Total()) * 100
}

// CountInstances counts exact and near-variation keyword occurrences in body.
//
// A variation is a window of len(keyword words)+1 consecutive body words that
// contains each keyword word as a substring but not the keyword phrase itself.
func CountInstances(keyword, body string) Counts {
	text := strings.ToLower(body)
	kw := strings.ToLower(keyword)
	words := strings.Fields(text)
	kwWords := strings.Fields(kw)

	c := Counts{Words: len(words), KeywordWords: len(kwWords)}
	if c.Words == 0 {
		return c
	}

	c.Exact = strings.Count(text, kw)

	if len(kwWords) > 1 {
		for i := 0; i < len(words)-len(kwWords)+1; i++ {
			end := min(i+len(kwWords)+1, len(words))
			window := strings.Join(words[i:end], " ")
			if strings.Contains(window, kw) {
				continue
			}
			if containsAll(window, kwWords) {
				c.Variations++
			}
		}
	}

	c.Density = float64(c.Total()*c.KeywordWords) / float64(c.Words) * 100
	return c
}

func containsAll(window string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(window, p) {
			return false
		}
	}
	return true
}

func checkDensity(c Counts) Result {
	if c.Words == 0 {
		return fail("Keyword density", "no content found")
	}

	d := c.Density
	name := fmt.Sprintf("Keyword density: %.1f%% (target: 1-2%%)", d)

	switch {
	case d >= 1.0 && d <= 2.0:
		return pass(name)
	case d >= 0.8 && d < 1.0:
		deficit := 1
		if c.KeywordWords > 0 {
			deficit = max(1, int(math.RoundToEven((1.0-d)*float64(c.Words)/float64(c.KeywordWords))))
		}
		return warn(name, fmt.Sprintf("consider adding %d more %s", deficit, plural(deficit, "instance")))
	case d > 2.0 && d <= 2.5:
		return warn(name, "slightly high, consider reducing")
	case d < 1.0:
		return fail(name, "too low")
	default:
		return fail(name, "too high")
	}
}

func checkExactRatio(c Counts) Result {
	if c.Total() == 0 {
		return warn("Exact match ratio", "no keyword instances found")
	}

	ratio := c.ExactRatio()
	name := fmt.Sprintf("Exact match ratio: %.0f%% (target: 40%%+)", ratio)
	if ratio >= 40 {
		return pass(name)
	}
	return warn(name, "consider using more exact-match keyword instances")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
