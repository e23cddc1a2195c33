// file: internal/resolver/suggest.go
// version: 1.0.0
// guid: 14dcd8a1-3b02-4dab-b287-5215219e8999

package resolver

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest returns up to limit root-relative paths whose filenames contain the
// requested stem as a case-insensitive subsequence, closest first. It is only
// used to enrich not-found responses and never affects resolution.
func Suggest(requested string, candidates []Candidate, limit int) []string {
	q := NewQuery(requested)
	if q.NormStem == "" || limit <= 0 || len(candidates) == 0 {
		return nil
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(q.Stem, names)
	sort.Stable(ranks)

	suggestions := make([]string, 0, limit)
	for _, rank := range ranks {
		suggestions = append(suggestions, candidates[rank.OriginalIndex].Rel)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions
}

// Suggest lists near misses for requested under the resolver's root.
func (r *Resolver) Suggest(requested string, limit int) []string {
	return Suggest(requested, r.Candidates(), limit)
}
