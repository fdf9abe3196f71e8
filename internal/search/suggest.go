package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest returns up to limit names close to query, best first. It is
// used when the catalog search matches nothing: names containing the
// query's letters in order rank first, then names within a small edit
// distance of a query word.
func Suggest(query string, names []string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}

	type ranked struct {
		name  string
		score int // Lower is better
	}
	best := make(map[string]int)
	consider := func(name string, score int) {
		if prev, ok := best[name]; !ok || score < prev {
			best[name] = score
		}
	}

	for _, m := range fuzzy.RankFindFold(query, names) {
		consider(m.Target, m.Distance)
	}

	// Typo tolerance per word: "lamb" should still find "Desk Lamp"
	maxTypos := allowedTypos(len([]rune(query)))
	if maxTypos > 0 {
		for _, name := range names {
			for _, word := range strings.Fields(strings.ToLower(name)) {
				if d := fuzzy.LevenshteinDistance(query, word); d <= maxTypos {
					consider(name, 100+d*20)
				}
			}
		}
	}

	out := make([]ranked, 0, len(best))
	for name, score := range best {
		out = append(out, ranked{name: name, score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score < out[j].score
		}
		return out[i].name < out[j].name
	})

	if len(out) > limit {
		out = out[:limit]
	}
	result := make([]string, len(out))
	for i, r := range out {
		result[i] = r.name
	}
	return result
}

// allowedTypos returns the edit distance tolerated for a word of length n
func allowedTypos(n int) int {
	switch {
	case n <= 3:
		return 0
	case n <= 6:
		return 1
	default:
		return 2
	}
}
