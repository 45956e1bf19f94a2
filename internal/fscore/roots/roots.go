// Package roots manages the process-wide set of allowed root directories.
// The set is mutable only through Init; after that, readers take a
// lock-free atomic snapshot.
package roots

import (
	"path/filepath"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Root is one configured allowed root: its canonical path and, when it
// differs, the realpath resolution used for containment checks.
type Root struct {
	Canonical string
	RealPath  string
}

// snapshot is the immutable published value. A nil *snapshot means Init has
// not yet been called.
type snapshot struct {
	roots []Root
}

var current atomic.Pointer[snapshot]

// Init publishes the effective allowed-roots set: the union of each
// supplied path and its realpath when different, plus the process CWD if
// allowCwd is set. Init is not safe to call concurrently with itself, but
// concurrent readers (Snapshot) are always safe. Init may be called more
// than once (e.g. in tests); each call atomically replaces the prior
// snapshot.
func Init(paths []string, allowCwd bool) error {
	if len(paths) == 0 && !allowCwd {
		return errors.New("no allowed roots configured")
	}

	all := make([]string, 0, len(paths)+1)
	all = append(all, paths...)
	if allowCwd {
		cwd, err := filepath.Abs(".")
		if err != nil {
			return errors.Wrap(err, "unable to resolve current working directory")
		}
		all = append(all, cwd)
	}

	built := make([]Root, 0, len(all))
	for _, p := range all {
		if !filepath.IsAbs(p) {
			return errors.Errorf("allowed root %q is not an absolute path", p)
		}
		canonical := filepath.Clean(p)
		r := Root{Canonical: canonical}
		if real, err := filepath.EvalSymlinks(canonical); err == nil && real != canonical {
			r.RealPath = real
		}
		built = append(built, r)
	}

	current.Store(&snapshot{roots: built})
	return nil
}

// Snapshot returns the current allowed-roots list. The returned slice must
// not be mutated by callers.
func Snapshot() []Root {
	s := current.Load()
	if s == nil {
		return nil
	}
	return s.roots
}

// Contains reports whether canonical lies within some allowed root at a
// segment boundary. Comparison is case-sensitive on POSIX and
// case-insensitive on Windows (containsOne compares through pathsEqual,
// which has a POSIX and a Windows variant).
func Contains(canonical string) bool {
	for _, r := range Snapshot() {
		if containsOne(r.Canonical, canonical) || (r.RealPath != "" && containsOne(r.RealPath, canonical)) {
			return true
		}
	}
	return false
}

// containsOne reports whether candidate is equal to root or a descendant of
// it at a path-segment boundary (never a bare substring match).
func containsOne(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)

	if pathsEqual(root, candidate) {
		return true
	}

	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	// filepath.Rel returns a path starting with ".." (or equal to "..") when
	// candidate escapes root.
	if rel == ".." || len(rel) >= 2 && rel[:2] == ".." {
		return false
	}
	return true
}

// Default returns the sole allowed root when exactly one is configured, and
// false otherwise, for operations that need a base path but none was
// supplied and the configuration is ambiguous.
func Default() (Root, bool) {
	all := Snapshot()
	if len(all) == 1 {
		return all[0], true
	}
	return Root{}, false
}
