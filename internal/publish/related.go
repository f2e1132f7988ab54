package publish

import (
	"regexp"
	"sort"
	"strings"

	"github.com/TobiSchelling/blogsmith/internal/wordpress"
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "to": true, "for": true,
	"with": true, "is": true, "are": true, "how": true, "your": true,
}

var punctRe = regexp.MustCompile(`[^a-z0-9\s]`)

func words(s string, stripPunct bool) map[string]bool {
	s = strings.ToLower(s)
	if stripPunct {
		s = punctRe.ReplaceAllString(s, "")
	}
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		if !stopwords[w] {
			set[w] = true
		}
	}
	return set
}

func overlap(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

// PickRelated ranks posts by how many words they share with the draft's
// keyword and title and returns the top limit. Posts keep their listing
// order on ties, so with no overlap at all the newest posts win.
func PickRelated(posts []wordpress.Post, title, keyword string, limit int) []wordpress.Post {
	if len(posts) == 0 || limit <= 0 {
		return nil
	}

	query := words(keyword, false)
	for w := range words(title, true) {
		query[w] = true
	}

	type scored struct {
		post  wordpress.Post
		score int
	}
	ranked := make([]scored, len(posts))
	for i, p := range posts {
		pw := words(p.Title, true)
		for w := range words(strings.ReplaceAll(p.Slug, "-", " "), false) {
			pw[w] = true
		}
		ranked[i] = scored{post: p, score: overlap(query, pw)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]wordpress.Post, limit)
	for i := range out {
		out[i] = ranked[i].post
	}
	return out
}
