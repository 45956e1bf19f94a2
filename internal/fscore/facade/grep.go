package facade

import (
	"context"
	"os"
	"sort"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
	"github.com/mutagen-io/fscore/internal/fscore/pathkernel"
	"github.com/mutagen-io/fscore/internal/fscore/search"
	"github.com/mutagen-io/fscore/internal/fscore/walk"
	"github.com/mutagen-io/fscore/internal/fscore/workerpool"
)

// GrepRequest searches a directory or single file for Pattern, producing
// candidate files via a traversal and scanning each one, through the
// worker pool when SEARCH_WORKERS is configured. SkipBinary is a pointer
// so that "unset" (use the default) is distinguishable from "false".
type GrepRequest struct {
	Root              string
	Pattern           string
	FilePattern       string
	ExcludePatterns   []string
	IncludeHidden     bool
	CaseSensitive     bool
	WholeWord         bool
	IsLiteral         bool
	ContextLines      int
	MaxMatchesPerFile int
	MaxResults        int
	MaxFileSize       int64
	SkipBinary        *bool
	TimeoutMs         int64
}

func (r GrepRequest) skipBinary() bool {
	if r.SkipBinary == nil {
		return true
	}
	return *r.SkipBinary
}

// GrepSummary is the traversal+scan summary returned alongside matches.
type GrepSummary struct {
	FilesScanned                  int
	SkippedInaccessible            int
	SkippedTooLarge                int
	SkippedBinary                  int
	LinesSkippedDueToRegexTimeout int
	Truncated                      bool
	StoppedReason                  walk.StopReason
}

// GrepResponse carries matches, sorted in (file, line) order and capped at
// MaxResults, plus the aggregate summary.
type GrepResponse struct {
	Matches []search.Match
	Summary GrepSummary
}

const defaultMaxMatchesPerFile = 1000

// Grep implements the grep facade.
func (c *Client) Grep(ctx context.Context, req GrepRequest) (GrepResponse, *fserrors.Error) {
	resolved, ferr := pathkernel.ValidateExistingPath(ctx, req.Root)
	if ferr != nil {
		return GrepResponse{}, ferr
	}

	matcherOpts := search.MatcherOptions{
		CaseSensitive: req.CaseSensitive,
		WholeWord:     req.WholeWord,
		IsLiteral:     req.IsLiteral,
	}
	matcher, ferr := search.NewMatcher(req.Pattern, matcherOpts)
	if ferr != nil {
		return GrepResponse{}, ferr
	}

	sig, cleanup := c.newSignal(ctx, req.TimeoutMs)
	defer cleanup()

	maxFileSize := req.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = c.cfg.MaxSearchSize
	}
	maxMatchesPerFile := req.MaxMatchesPerFile
	if maxMatchesPerFile <= 0 {
		maxMatchesPerFile = defaultMaxMatchesPerFile
	}
	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > walk.DefaultMaxResults {
		maxResults = walk.DefaultMaxResults
	}

	scanOpts := search.ScanOptions{
		MaxFileSize:  maxFileSize,
		SkipBinary:   req.skipBinary(),
		ContextLines: req.ContextLines,
		MaxMatches:   maxMatchesPerFile,
	}

	var summary GrepSummary

	info, err := os.Stat(resolved.Canonical)
	if err != nil {
		return GrepResponse{}, fserrors.FromOSError(req.Root, err)
	}

	var files []string
	if info.IsDir() {
		entries, walkSummary, err := walk.Walk(sig, resolved.Canonical, walk.Options{
			Pattern:         req.FilePattern,
			ExcludePatterns: req.ExcludePatterns,
			IncludeHidden:   req.IncludeHidden,
			OnlyFiles:       true,
			MaxEntries:      walk.DefaultMaxEntries,
		})
		if err != nil {
			return GrepResponse{}, fserrors.FromOSError(req.Root, err)
		}
		summary.FilesScanned = walkSummary.FilesScanned
		summary.SkippedInaccessible = walkSummary.SkippedInaccessible
		summary.StoppedReason = walkSummary.StoppedReason
		summary.Truncated = walkSummary.Truncated
		for _, e := range entries {
			files = append(files, e.AbsolutePath)
		}
	} else {
		files = []string{resolved.Canonical}
	}

	// The candidate-file listing above may already have stopped early (a
	// deadline, or the maxEntries cap); only let the scan phase's own stop
	// reason override it when the scan phase stopped early too.
	matches, stopped := c.scanFiles(sig, files, req.Pattern, matcher, matcherOpts, scanOpts, maxResults, &summary)
	if stopped != walk.StopNone {
		summary.StoppedReason = stopped
		summary.Truncated = true
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].File != matches[j].File {
			return matches[i].File < matches[j].File
		}
		return matches[i].Line < matches[j].Line
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	return GrepResponse{Matches: matches, Summary: summary}, nil
}

// scanFiles scans every file, via the worker pool when configured or
// sequentially on the facade's own goroutine otherwise, accumulating
// matches up to maxResults.
func (c *Client) scanFiles(
	sig *cancel.Signal,
	files []string,
	pattern string,
	matcher search.Matcher,
	matcherOpts search.MatcherOptions,
	scanOpts search.ScanOptions,
	maxResults int,
	summary *GrepSummary,
) ([]search.Match, walk.StopReason) {
	var matches []search.Match

	if c.pool == nil {
		for _, path := range files {
			if sig.Fired() {
				return matches, walk.ReasonFromSignal(sig)
			}
			result, err := search.ScanFile(sig, path, matcher, scanOpts)
			if err != nil {
				summary.SkippedInaccessible++
				continue
			}
			applyFileResult(result, summary, &matches)
			if len(matches) >= maxResults {
				return matches, walk.StopMaxResult
			}
		}
		return matches, walk.StopNone
	}

	requests := make([]workerpool.ScanRequest, len(files))
	channels := make([]<-chan workerpool.ScanOutcome, len(files))
	for i, path := range files {
		requests[i] = workerpool.NewScanRequest(path, path, pattern, matcherOpts, scanOpts)
		channels[i] = c.pool.Submit(requests[i], sig)
	}

	capped := false
	for i, ch := range channels {
		outcome := <-ch
		if outcome.Cancelled {
			continue
		}
		if outcome.Err != nil {
			summary.SkippedInaccessible++
			continue
		}
		if capped {
			c.pool.Cancel(requests[i].ID)
			continue
		}
		applyFileResult(outcome.Result, summary, &matches)
		if len(matches) >= maxResults {
			capped = true
		}
	}
	if capped {
		return matches, walk.StopMaxResult
	}
	if sig.Fired() {
		return matches, walk.ReasonFromSignal(sig)
	}
	return matches, walk.StopNone
}

func applyFileResult(result search.FileScanResult, summary *GrepSummary, matches *[]search.Match) {
	if result.SkippedTooLarge {
		summary.SkippedTooLarge++
		return
	}
	if result.SkippedBinary {
		summary.SkippedBinary++
		return
	}
	summary.LinesSkippedDueToRegexTimeout += result.LinesSkippedDueToRegexTimeout
	*matches = append(*matches, result.Matches...)
}
