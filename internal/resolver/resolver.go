// file: internal/resolver/resolver.go
// version: 1.1.0
// guid: f54f85e3-52b0-48f4-a307-724bb1c67af3

package resolver

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jdfalk/portal-server/internal/logging"
	"github.com/jdfalk/portal-server/internal/metrics"
)

// depthPenalty is subtracted from a candidate's score once per directory
// level below the root.
const depthPenalty = 2

// Candidate is a file found under the serving root.
type Candidate struct {
	Path  string // absolute path
	Rel   string // slash-separated path relative to the root
	Name  string // filename with extension
	Depth int    // directory levels below the root
}

// Match is a scored candidate. Score already includes the depth penalty.
type Match struct {
	Candidate
	Score int
}

// Enumerate lists every file under root in a fixed order: the files of a
// directory come first, sorted by name, followed by its subdirectories in
// name order, each visited the same way. Unreadable directories contribute
// no files. Entries whose relative path matches an exclude pattern are
// skipped along with everything beneath them. Symlinked directories are not
// followed.
func Enumerate(root string, exclude []string) []Candidate {
	var out []Candidate
	walkDir(root, "", 0, exclude, &out)
	return out
}

func walkDir(dir, relDir string, depth int, exclude []string, out *[]Candidate) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Debugf("resolver: skipping unreadable directory %s: %v", dir, err)
		return
	}

	type subdir struct{ path, rel string }
	var subdirs []subdir
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		rel := entry.Name()
		if relDir != "" {
			rel = relDir + "/" + entry.Name()
		}
		if isExcluded(rel, exclude) {
			continue
		}

		if entry.IsDir() {
			subdirs = append(subdirs, subdir{path: full, rel: rel})
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			if info, statErr := os.Stat(full); statErr == nil && info.IsDir() {
				continue
			}
		}
		*out = append(*out, Candidate{Path: full, Rel: rel, Name: entry.Name(), Depth: depth})
	}

	for _, sd := range subdirs {
		walkDir(sd.path, sd.rel, depth+1, exclude, out)
	}
}

func isExcluded(rel string, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Best picks the highest scoring candidate. Only candidates whose raw score
// is positive are eligible. A later candidate replaces the current best only
// when its penalized score is strictly higher, so ties go to the candidate
// visited first. ok is false when nothing was eligible.
func Best(q Query, candidates []Candidate) (best Match, ok bool) {
	for _, c := range candidates {
		raw := Score(q, c.Name)
		if raw <= 0 {
			continue
		}
		score := raw - depthPenalty*c.Depth
		if !ok || score > best.Score {
			best = Match{Candidate: c, Score: score}
			ok = true
		}
	}
	return best, ok
}

// Rank returns every eligible candidate ordered by penalized score, highest
// first. Equal scores keep visit order, so Rank(q, c)[0] equals Best(q, c).
func Rank(q Query, candidates []Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		raw := Score(q, c.Name)
		if raw <= 0 {
			continue
		}
		matches = append(matches, Match{Candidate: c, Score: raw - depthPenalty*c.Depth})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Options tune a Resolver.
type Options struct {
	// Exclude holds doublestar patterns matched against root-relative paths.
	Exclude []string
	// CacheTTL bounds how long a resolution is reused. Zero disables caching,
	// so every lookup walks the tree as it is now.
	CacheTTL time.Duration
}

// Resolver finds the best matching file under a fixed root.
type Resolver struct {
	root    string
	exclude []string
	cache   *resolutionCache
}

// New creates a Resolver for root. The root is made absolute so returned
// paths can be compared against it.
func New(root string, opts Options) (*Resolver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	r := &Resolver{
		root:    absRoot,
		exclude: append([]string(nil), opts.Exclude...),
	}
	if opts.CacheTTL > 0 {
		r.cache = newResolutionCache(opts.CacheTTL)
	}
	return r, nil
}

// Root returns the absolute serving root.
func (r *Resolver) Root() string {
	return r.root
}

// Candidates enumerates the files under the root.
func (r *Resolver) Candidates() []Candidate {
	return Enumerate(r.root, r.exclude)
}

// Resolve returns the absolute path of the file that best matches the
// requested path, or false when no file scores above zero.
func (r *Resolver) Resolve(requested string) (string, bool) {
	q := NewQuery(requested)

	if r.cache != nil {
		// A cached match that has since been removed forces a fresh walk.
		if res, hit := r.cache.get(q.Basename); hit && (!res.ok || isRegularFile(res.path)) {
			metrics.IncResolution("cached")
			return res.path, res.ok
		}
	}

	start := time.Now()
	candidates := r.Candidates()
	best, ok := Best(q, candidates)
	metrics.ObserveResolveDuration(time.Since(start))
	metrics.ObserveCandidatesScanned(len(candidates))

	if r.cache != nil {
		r.cache.set(q.Basename, best.Path, ok)
	}

	if !ok {
		metrics.IncResolution("miss")
		logging.Debugf("resolver: no match for %q among %d files", requested, len(candidates))
		return "", false
	}

	metrics.IncResolution("hit")
	log.Printf("[INFO] Fuzzy match: %s -> %s (score %d)", requested, best.Rel, best.Score)
	return best.Path, true
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Rank scores every file under the root against requested.
func (r *Resolver) Rank(requested string) []Match {
	return Rank(NewQuery(requested), r.Candidates())
}

// Invalidate drops all cached resolutions. It is wired to the root watcher.
func (r *Resolver) Invalidate() {
	if r.cache == nil {
		return
	}
	r.cache.flush()
	logging.Debugf("resolver: cache flushed for %s", r.root)
}
