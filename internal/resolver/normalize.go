// file: internal/resolver/normalize.go
// version: 1.0.0
// guid: b844d1f0-6726-45d1-aaac-e37f4ec04a3d

package resolver

import (
	"strings"
)

// Normalize lowercases name and drops every rune that is not an ASCII
// letter or digit. The result is used for tolerant filename comparison.
func Normalize(name string) string {
	lowered := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lowered))
	for i := 0; i < len(lowered); i++ {
		ch := lowered[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// SplitExt splits name into stem and extension at the last dot. The
// extension keeps its leading dot. Leading dots never start an extension,
// so ".env" has no extension and "..." is all stem.
func SplitExt(name string) (stem, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	if strings.Trim(name[:idx], ".") == "" {
		return name, ""
	}
	return name[:idx], name[idx:]
}
