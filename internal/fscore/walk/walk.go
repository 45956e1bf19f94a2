package walk

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
)

// StopReason records why a traversal stopped early, surfaced as
// stoppedReason on partial results.
type StopReason string

const (
	StopNone      StopReason = ""
	StopMaxFiles  StopReason = "maxFiles"
	StopMaxResult StopReason = "maxResults"
	StopTimeout   StopReason = "timeout"
	StopCancelled StopReason = "cancelled"
)

// Defaults are hard upper bounds callers may only lower, never raise.
const (
	DefaultMaxDepth         = 10
	DefaultMaxResults       = 100
	DefaultMaxFilesScanned  = 20000
	DefaultMaxEntries       = 10000
)

// Options configures a single traversal: an explicit struct with optional
// fields and a Normalize step supplying defaults and clamping to hard caps.
type Options struct {
	Pattern            string
	ExcludePatterns    []string
	IncludeHidden      bool
	BaseNameMatch      bool
	CaseSensitiveMatch bool
	MaxDepth           int
	NonRecursive       bool
	FollowSymlinks     bool
	OnlyFiles          bool
	WithStats          bool
	Gitignore          *GitignoreMatcher

	MaxFilesScanned int
	MaxResults      int

	// MaxEntries overrides MaxResults as the traversal's collection-stop
	// bound when set, for callers (tree, grep's file-candidate listing)
	// that need the full listing-scale cap (DefaultMaxEntries) rather than
	// the small default results cap. Left zero, MaxResults governs as usual.
	MaxEntries int
}

// Normalize fills zero-valued fields with their defaults and clamps
// caller-supplied values to the hard upper bounds.
func (o Options) Normalize() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxDepth > DefaultMaxDepth {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxFilesScanned <= 0 || o.MaxFilesScanned > DefaultMaxFilesScanned {
		o.MaxFilesScanned = DefaultMaxFilesScanned
	}
	if o.MaxResults <= 0 || o.MaxResults > DefaultMaxResults {
		o.MaxResults = DefaultMaxResults
	}
	if o.MaxEntries > DefaultMaxEntries {
		o.MaxEntries = DefaultMaxEntries
	}
	return o
}

// entryCap returns the effective collection-stop bound: MaxEntries when the
// caller set one, otherwise MaxResults.
func (o Options) entryCap() int {
	if o.MaxEntries > 0 {
		return o.MaxEntries
	}
	return o.MaxResults
}

// Summary accumulates the traversal-level counters.
type Summary struct {
	FilesScanned        int
	SkippedInaccessible int
	StoppedReason       StopReason
	Truncated           bool
}

// Walk performs a single bounded traversal of root (which must already be a
// canonical directory, validated by the path kernel) and returns the
// entries that pass the configured filters, along with a Summary. Result
// ordering here is traversal order; deterministic sorting by sortBy is the
// caller facade's responsibility, applied after collection.
func Walk(sig *cancel.Signal, root string, opts Options) ([]Entry, Summary, error) {
	opts = opts.Normalize()

	var entries []Entry
	var summary Summary

	type queueItem struct {
		path  string
		depth int
	}
	queue := []queueItem{{path: root, depth: 0}}

	for len(queue) > 0 {
		if err := cancel.AssertNotAborted(sig); err != nil {
			summary.StoppedReason = ReasonFromSignal(sig)
			return entries, summary, nil
		}

		item := queue[0]
		queue = queue[1:]

		dir, err := os.Open(item.path)
		if err != nil {
			summary.SkippedInaccessible++
			continue
		}
		children, err := dir.Readdir(-1)
		dir.Close()
		if err != nil {
			summary.SkippedInaccessible++
			continue
		}

		for _, child := range children {
			if summary.FilesScanned >= opts.MaxFilesScanned {
				summary.StoppedReason = StopMaxFiles
				summary.Truncated = true
				return entries, summary, nil
			}
			summary.FilesScanned++

			childPath := filepath.Join(item.path, child.Name())
			relPath, err := filepath.Rel(root, childPath)
			if err != nil {
				summary.SkippedInaccessible++
				continue
			}
			relPosix := filepath.ToSlash(relPath)

			if !opts.IncludeHidden && isHidden(relPosix) {
				continue
			}

			isDir := child.IsDir()
			isSymlink := child.Mode()&os.ModeSymlink != 0

			if matchesExclude(opts.ExcludePatterns, child.Name(), relPosix, opts.CaseSensitiveMatch) {
				continue
			}
			if opts.Gitignore.Ignored(gitignoreTestPath(relPosix, isDir), isDir) {
				continue
			}

			matched := true
			if opts.Pattern != "" {
				matched = matchesPattern(opts.Pattern, child.Name(), relPosix, opts.BaseNameMatch, opts.CaseSensitiveMatch)
			}

			kind := classify(child)
			if matched && !(opts.OnlyFiles && kind != KindFile) {
				entry := Entry{
					Name:         child.Name(),
					AbsolutePath: childPath,
					RelativePath: relPosix,
					Kind:         kind,
				}
				if opts.WithStats || kind == KindDirectory {
					size := child.Size()
					modTime := child.ModTime()
					entry.Size = &size
					entry.ModTime = &modTime
				}
				if isSymlink {
					if target, err := os.Readlink(childPath); err == nil {
						entry.SymlinkTarget = target
					}
				}
				entries = append(entries, entry)

				if len(entries) >= opts.entryCap() {
					summary.StoppedReason = StopMaxResult
					summary.Truncated = true
					return entries, summary, nil
				}
			}

			if isDir && !opts.NonRecursive && item.depth < opts.MaxDepth && (!isSymlink || opts.FollowSymlinks) {
				queue = append(queue, queueItem{path: childPath, depth: item.depth + 1})
			}
		}
	}

	return entries, summary, nil
}

// ReasonFromSignal maps a fired signal to the stop reason it should
// surface, distinguishing a deadline from explicit cancellation.
func ReasonFromSignal(sig *cancel.Signal) StopReason {
	if sig.Reason() == cancel.Timeout {
		return StopTimeout
	}
	return StopCancelled
}

func classify(info os.FileInfo) Kind {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return KindSymlink
	case info.IsDir():
		return KindDirectory
	case info.Mode().IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

func isHidden(relPosix string) bool {
	for _, segment := range strings.Split(relPosix, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}

// gitignoreTestPath appends a trailing slash for directories, matching
// .gitignore's directory-only pattern semantics.
func gitignoreTestPath(relPosix string, isDir bool) string {
	if isDir {
		return relPosix + "/"
	}
	return relPosix
}

func matchesExclude(patterns []string, basename, relPosix string, caseSensitive bool) bool {
	for _, pattern := range patterns {
		if globMatch(pattern, basename, caseSensitive) || globMatch(pattern, relPosix, caseSensitive) {
			return true
		}
	}
	return false
}

// matchesPattern: if baseNameMatch and the pattern contains no "/", match
// against the basename only; otherwise match against the POSIX-normalized
// relative path.
func matchesPattern(pattern, basename, relPosix string, baseNameMatch, caseSensitive bool) bool {
	if baseNameMatch && !strings.Contains(pattern, "/") {
		return globMatch(pattern, basename, caseSensitive)
	}
	return globMatch(pattern, relPosix, caseSensitive)
}

func globMatch(pattern, candidate string, caseSensitive bool) bool {
	if !caseSensitive {
		pattern = strings.ToLower(pattern)
		candidate = strings.ToLower(candidate)
	}
	matched, err := doublestar.Match(pattern, candidate)
	return err == nil && matched
}
