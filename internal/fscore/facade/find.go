package facade

import (
	"context"

	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
	"github.com/mutagen-io/fscore/internal/fscore/pathkernel"
	"github.com/mutagen-io/fscore/internal/fscore/walk"
)

// FindRequest is a recursive, pattern-filtered search under Root whose
// results are sorted and truncated to MaxResults.
type FindRequest struct {
	Root               string
	Pattern            string
	ExcludePatterns    []string
	IncludeHidden      bool
	BaseNameMatch      bool
	CaseSensitiveMatch bool
	MaxDepth           int
	FollowSymlinks     bool
	OnlyFiles          bool
	WithStats          bool
	MaxResults         int
	SortBy             string
	TimeoutMs          int64
}

// FindResponse carries the matched, sorted, and truncated entries.
type FindResponse struct {
	Entries []walk.Entry
	Summary walk.Summary
}

// Find implements the find facade: a recursive, pattern-filtered traversal
// whose results are sorted and truncated to MaxResults.
func (c *Client) Find(ctx context.Context, req FindRequest) (FindResponse, *fserrors.Error) {
	resolved, ferr := pathkernel.ValidateExistingPath(ctx, req.Root)
	if ferr != nil {
		return FindResponse{}, ferr
	}
	if ferr := requireDirectory(resolved.Canonical); ferr != nil {
		return FindResponse{}, ferr
	}

	sig, cleanup := c.newSignal(ctx, req.TimeoutMs)
	defer cleanup()

	entries, summary, err := walk.Walk(sig, resolved.Canonical, walk.Options{
		Pattern:            req.Pattern,
		ExcludePatterns:    req.ExcludePatterns,
		IncludeHidden:      req.IncludeHidden,
		BaseNameMatch:      req.BaseNameMatch,
		CaseSensitiveMatch: req.CaseSensitiveMatch,
		MaxDepth:           req.MaxDepth,
		FollowSymlinks:     req.FollowSymlinks,
		OnlyFiles:          req.OnlyFiles,
		WithStats:          req.WithStats,
		MaxResults:         req.MaxResults,
	})
	if err != nil {
		return FindResponse{}, fserrors.FromOSError(req.Root, err)
	}

	sortEntries(entries, req.SortBy)
	if req.MaxResults > 0 && len(entries) > req.MaxResults {
		entries = entries[:req.MaxResults]
		summary.Truncated = true
	}

	return FindResponse{Entries: entries, Summary: summary}, nil
}
