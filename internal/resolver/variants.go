// file: internal/resolver/variants.go
// version: 1.0.0
// guid: 247f0813-fd7e-4418-ad91-083399b4eef8

package resolver

import (
	"sort"
	"strings"
)

const demoMarker = "demo"

// StemVariants returns the alternate spellings of stem that a request may
// refer to. Requested names often carry a "demo" marker the real asset lacks,
// so the marker is stripped as a suffix and removed as a substring. The
// result always contains stem itself (unless empty), has no duplicates and
// is sorted.
func StemVariants(stem string) []string {
	set := map[string]struct{}{stem: {}}

	if hasSuffixFold(stem, demoMarker) {
		set[stem[:len(stem)-4]] = struct{}{}
	}
	if hasSuffixFold(stem, "-"+demoMarker) || hasSuffixFold(stem, "_"+demoMarker) {
		set[stem[:len(stem)-5]] = struct{}{}
	}

	if strings.Contains(strings.ToLower(stem), demoMarker) {
		set[strings.ReplaceAll(stem, demoMarker, "")] = struct{}{}
		set[strings.ReplaceAll(stem, "-"+demoMarker, "")] = struct{}{}
		set[strings.ReplaceAll(stem, "_"+demoMarker, "")] = struct{}{}
	}

	delete(set, "")

	variants := make([]string, 0, len(set))
	for v := range set {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	return variants
}

// hasSuffixFold compares byte-wise so slicing the original stem stays aligned
// with the matched suffix.
func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
