// Package walk implements a bounded, cancellable directory traversal/glob
// engine with hidden/exclude/gitignore filtering, used by the list, tree,
// and find facades.
package walk

import (
	"fmt"
	pathpkg "path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// gitignorePattern is a single parsed gitignore-style pattern.
type gitignorePattern struct {
	negated       bool
	directoryOnly bool
	matchLeaf     bool
	pattern       string
}

func cleanPreservingTrailingSlash(path string) string {
	var needTrailingSlash bool
	if l := len(path); l > 1 {
		needTrailingSlash = path[l-1] == '/'
	}
	result := pathpkg.Clean(path)
	if needTrailingSlash {
		return result + "/"
	}
	return result
}

func newGitignorePattern(pattern string) (*gitignorePattern, error) {
	if len(pattern) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}

	var negated bool
	if pattern[0] == '!' {
		negated = true
		pattern = pattern[1:]
	}
	if pattern == "" {
		return nil, fmt.Errorf("negated empty pattern")
	}

	pattern = cleanPreservingTrailingSlash(pattern)
	if pattern == "/" || pattern == "//" {
		return nil, fmt.Errorf("root pattern")
	}

	var absolute bool
	if pattern[0] == '/' {
		absolute = true
		pattern = pattern[1:]
	}

	var directoryOnly bool
	if pattern[len(pattern)-1] == '/' {
		directoryOnly = true
		pattern = pattern[:len(pattern)-1]
	}

	containsSlash := strings.IndexByte(pattern, '/') >= 0

	if _, err := doublestar.Match(pattern, "a"); err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	return &gitignorePattern{
		negated:       negated,
		directoryOnly: directoryOnly,
		matchLeaf:     !absolute && !containsSlash,
		pattern:       pattern,
	}, nil
}

func (p *gitignorePattern) matches(path string, directory bool) bool {
	if p.directoryOnly && !directory {
		return false
	}
	if match, _ := doublestar.Match(p.pattern, path); match {
		return true
	}
	if p.matchLeaf && path != "" {
		if match, _ := doublestar.Match(p.pattern, pathpkg.Base(path)); match {
			return true
		}
	}
	return false
}

// GitignoreMatcher evaluates a set of gitignore-style patterns against
// traversal-relative paths, tracking negation the same way a real .gitignore
// file does: later patterns override earlier ones, and a negated pattern can
// unignore content that an earlier pattern ignored.
type GitignoreMatcher struct {
	patterns []*gitignorePattern
}

// NewGitignoreMatcher parses patterns (in the gitignore syntax supported by
// doublestar) into a matcher usable during traversal.
func NewGitignoreMatcher(patterns []string) (*GitignoreMatcher, error) {
	parsed := make([]*gitignorePattern, 0, len(patterns))
	for _, p := range patterns {
		// Blank lines and comments are ignored, matching .gitignore syntax.
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		pp, err := newGitignorePattern(p)
		if err != nil {
			return nil, fmt.Errorf("unable to parse ignore pattern %q: %w", p, err)
		}
		parsed = append(parsed, pp)
	}
	return &GitignoreMatcher{patterns: parsed}, nil
}

// Ignored reports whether path (POSIX-normalized, relative to the
// traversal root, with directories tested with a trailing "/") is ignored
// under the accumulated pattern set.
func (m *GitignoreMatcher) Ignored(path string, directory bool) bool {
	if m == nil {
		return false
	}
	ignored := false
	testPath := path
	for _, p := range m.patterns {
		if p.matches(testPath, directory) {
			ignored = !p.negated
		}
	}
	return ignored
}
