// file: internal/resolver/score.go
// version: 1.0.0
// guid: ad438eaa-6636-4a72-b0e5-9fc995f271be

package resolver

import (
	"strings"
)

// Signal weights. Every clause is checked independently and the points add up.
const (
	scoreExactName          = 200
	scoreNormalizedName     = 180
	scoreNormalizedStem     = 160
	scoreStemVariant        = 140
	scoreSameExtension      = 20
	scoreTargetInCandidate  = 40
	scoreCandidateInTarget  = 30
	scorePrefixOrSuffix     = 25
	scoreEqualWithoutMarker = 35
)

// Query is the derived form of a requested path used to score candidates.
type Query struct {
	Basename     string
	Stem         string
	Ext          string
	NormBasename string
	NormStem     string
	// Variants holds the normalized stem variants.
	Variants map[string]struct{}
}

// NewQuery derives a Query from a request path. Only the text after the last
// slash takes part in matching, so directories in the request are ignored and
// a trailing slash yields an empty basename.
func NewQuery(requested string) Query {
	base := requested[strings.LastIndex(requested, "/")+1:]
	stem, ext := SplitExt(base)

	variants := make(map[string]struct{})
	for _, v := range StemVariants(stem) {
		variants[Normalize(v)] = struct{}{}
	}

	return Query{
		Basename:     base,
		Stem:         stem,
		Ext:          ext,
		NormBasename: Normalize(base),
		NormStem:     Normalize(stem),
		Variants:     variants,
	}
}

// Score rates how well candidateName matches the query.
func Score(q Query, candidateName string) int {
	stem, ext := SplitExt(candidateName)
	normName := Normalize(candidateName)
	normStem := Normalize(stem)

	score := 0
	if candidateName == q.Basename {
		score += scoreExactName
	}
	if normName == q.NormBasename {
		score += scoreNormalizedName
	}
	if normStem == q.NormStem {
		score += scoreNormalizedStem
	}
	if _, ok := q.Variants[normStem]; ok && normStem != q.NormStem {
		score += scoreStemVariant
	}
	if q.Ext != "" && strings.EqualFold(ext, q.Ext) {
		score += scoreSameExtension
	}
	if strings.Contains(normName, q.NormBasename) {
		score += scoreTargetInCandidate
	}
	if strings.Contains(q.NormBasename, normName) {
		score += scoreCandidateInTarget
	}
	if strings.HasPrefix(normName, q.NormBasename) || strings.HasSuffix(normName, q.NormBasename) {
		score += scorePrefixOrSuffix
	}
	if strings.ReplaceAll(normName, demoMarker, "") == strings.ReplaceAll(q.NormBasename, demoMarker, "") {
		score += scoreEqualWithoutMarker
	}
	return score
}
