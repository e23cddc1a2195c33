// file: internal/resolver/resolver_test.go
// version: 1.1.0
// guid: e6962805-4b27-43e7-b7aa-71cd962368ff

package resolver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(rel), 0o644))
	}
}

func rels(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Rel
	}
	return out
}

func TestBestPicksHighestScore(t *testing.T) {
	q := NewQuery("index.html")
	cands := []Candidate{
		{Path: "/srv/about.png", Name: "about.png"},
		{Path: "/srv/index.htm", Name: "index.htm"},
		{Path: "/srv/Index.HTML", Name: "Index.HTML"},
	}

	best, ok := Best(q, cands)
	require.True(t, ok)
	assert.Equal(t, "/srv/Index.HTML", best.Path)
}

func TestBestTieKeepsFirstVisited(t *testing.T) {
	q := NewQuery("guide.pdf")
	cands := []Candidate{
		{Path: "/srv/a/Guide.pdf", Name: "Guide.pdf", Depth: 1},
		{Path: "/srv/b/GUIDE.pdf", Name: "GUIDE.pdf", Depth: 1},
	}

	best, ok := Best(q, cands)
	require.True(t, ok)
	assert.Equal(t, "/srv/a/Guide.pdf", best.Path)

	// Reversing the visit order flips the winner.
	best, ok = Best(q, []Candidate{cands[1], cands[0]})
	require.True(t, ok)
	assert.Equal(t, "/srv/b/GUIDE.pdf", best.Path)
}

func TestBestDepthPenalty(t *testing.T) {
	q := NewQuery("Guide.pdf")
	shallow := Candidate{Path: "/srv/guide.pdf", Name: "guide.pdf", Depth: 0}
	deep := Candidate{Path: "/srv/x/y/guide.pdf", Name: "guide.pdf", Depth: 2}

	best, ok := Best(q, []Candidate{deep, shallow})
	require.True(t, ok)
	assert.Equal(t, shallow.Path, best.Path)
	assert.Equal(t, Score(q, "guide.pdf"), best.Score)

	// A deeper but much better candidate still wins.
	exact := Candidate{Path: "/srv/x/y/Guide.pdf", Name: "Guide.pdf", Depth: 2}
	best, ok = Best(q, []Candidate{shallow, exact})
	require.True(t, ok)
	assert.Equal(t, exact.Path, best.Path)
	assert.Equal(t, Score(q, "Guide.pdf")-4, best.Score)
}

func TestBestPenaltyBelowZeroStillMatches(t *testing.T) {
	q := NewQuery("photo.jpg")
	deep := Candidate{Path: "/srv/deep/other.jpg", Name: "other.jpg", Depth: 30}

	best, ok := Best(q, []Candidate{deep})
	require.True(t, ok)
	assert.Equal(t, scoreSameExtension-60, best.Score)
}

func TestBestNoEligibleCandidate(t *testing.T) {
	q := NewQuery("index.html")
	_, ok := Best(q, []Candidate{{Path: "/srv/about.png", Name: "about.png"}})
	assert.False(t, ok)

	_, ok = Best(q, nil)
	assert.False(t, ok)
}

func TestRankAgreesWithBest(t *testing.T) {
	q := NewQuery("guide.pdf")
	cands := []Candidate{
		{Path: "/srv/notes.txt", Name: "notes.txt"},
		{Path: "/srv/manual.pdf", Name: "manual.pdf"},
		{Path: "/srv/a/guide.pdf", Name: "guide.pdf", Depth: 1},
		{Path: "/srv/b/guide.pdf", Name: "guide.pdf", Depth: 1},
	}

	ranked := Rank(q, cands)
	require.Len(t, ranked, 3)
	best, ok := Best(q, cands)
	require.True(t, ok)
	assert.Equal(t, best, ranked[0])
	assert.Equal(t, "/srv/b/guide.pdf", ranked[1].Path)
	assert.Equal(t, "/srv/manual.pdf", ranked[2].Path)
}

func TestEnumerateOrder(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.txt", "a.txt", "sub/c.txt", "aaa/d.txt", "aaa/inner/e.txt")

	cands := Enumerate(root, nil)
	assert.Equal(t, []string{"a.txt", "b.txt", "aaa/d.txt", "aaa/inner/e.txt", "sub/c.txt"}, rels(cands))

	depths := make([]int, len(cands))
	for i, c := range cands {
		depths[i] = c.Depth
	}
	assert.Equal(t, []int{0, 0, 1, 2, 1}, depths)
}

func TestEnumerateIsStable(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "z.html", "m/index.html", "m/k.css", "a/b/c.js")

	first := Enumerate(root, nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Enumerate(root, nil))
	}
}

func TestEnumerateExclude(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "keep.html", "node_modules/pkg/index.js", "notes.bak", "docs/old.bak", "docs/new.md")

	cands := Enumerate(root, []string{"node_modules", "**/*.bak"})
	assert.Equal(t, []string{"keep.html", "docs/new.md"}, rels(cands))
}

func TestEnumerateSkipsUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	writeFiles(t, root, "visible.html", "locked/hidden.html")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	defer os.Chmod(locked, 0o755)

	cands := Enumerate(root, nil)
	assert.Equal(t, []string{"visible.html"}, rels(cands))
}

func TestEnumerateMissingRoot(t *testing.T) {
	assert.Empty(t, Enumerate(filepath.Join(t.TempDir(), "missing"), nil))
}

func TestResolverResolveDemoVariant(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "ai-simulation-demo.html")

	r, err := New(root, Options{})
	require.NoError(t, err)

	got, ok := r.Resolve("ai-simulate.html")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(r.Root(), "ai-simulation-demo.html"), got)
}

func TestResolverResolveNestedExactName(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "archive/2023/report.pdf", "report.pdf.txt", "Report.PDF")

	r, err := New(root, Options{})
	require.NoError(t, err)

	got, ok := r.Resolve("/downloads/report.pdf")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(r.Root(), "archive", "2023", "report.pdf"), got)
}

func TestResolverNoMatch(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "zzz.bin")

	r, err := New(root, Options{})
	require.NoError(t, err)

	_, ok := r.Resolve("report.pdf")
	assert.False(t, ok)
}

func TestResolverCacheAndInvalidate(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "zzz.bin")

	r, err := New(root, Options{CacheTTL: time.Minute})
	require.NoError(t, err)

	_, ok := r.Resolve("report.pdf")
	require.False(t, ok)
	assert.Equal(t, 1, r.cache.len())

	writeFiles(t, root, "report-final.pdf")

	// The cached miss is reused until the cache is flushed.
	_, ok = r.Resolve("report.pdf")
	assert.False(t, ok)

	r.Invalidate()
	got, ok := r.Resolve("report.pdf")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(r.Root(), "report-final.pdf"), got)
}

func TestResolverCachedMatchRemoved(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "report.pdf", "docs/report.pdf")

	r, err := New(root, Options{CacheTTL: time.Minute})
	require.NoError(t, err)

	got, ok := r.Resolve("report.pdf")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(r.Root(), "report.pdf"), got)

	require.NoError(t, os.Remove(got))

	got, ok = r.Resolve("report.pdf")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(r.Root(), "docs", "report.pdf"), got)

	require.NoError(t, os.Remove(got))
	_, ok = r.Resolve("report.pdf")
	assert.False(t, ok)
}

func TestResolverCacheExpires(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "zzz.bin")

	r, err := New(root, Options{CacheTTL: 20 * time.Millisecond})
	require.NoError(t, err)

	_, ok := r.Resolve("report.pdf")
	require.False(t, ok)
	writeFiles(t, root, "report-final.pdf")

	time.Sleep(50 * time.Millisecond)
	_, ok = r.Resolve("report.pdf")
	assert.True(t, ok)
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	_, err := New(t.TempDir(), Options{Exclude: []string{"[unclosed"}})
	assert.Error(t, err)
}

func TestResolverRank(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "guide.pdf", "docs/guide.pdf", "misc.txt")

	r, err := New(root, Options{})
	require.NoError(t, err)

	ranked := r.Rank("guide.pdf")
	require.Len(t, ranked, 2)
	assert.Equal(t, "guide.pdf", ranked[0].Rel)
	assert.Equal(t, "docs/guide.pdf", ranked[1].Rel)
	assert.Equal(t, ranked[0].Score-2, ranked[1].Score)
}
