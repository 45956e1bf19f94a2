package facade

import (
	"context"
	"os"

	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
	"github.com/mutagen-io/fscore/internal/fscore/pathkernel"
	"github.com/mutagen-io/fscore/internal/fscore/walk"
)

// ListRequest lists the contents of a single directory, either one level
// deep or recursively bounded by MaxDepth.
type ListRequest struct {
	Root               string
	Pattern            string
	ExcludePatterns    []string
	IncludeHidden      bool
	BaseNameMatch      bool
	CaseSensitiveMatch bool
	Recursive          bool
	MaxDepth           int
	FollowSymlinks     bool
	OnlyFiles          bool
	WithStats          bool
	SortBy             string
	TimeoutMs          int64
}

// ListResponse carries the emitted entries and the traversal summary.
type ListResponse struct {
	Entries []walk.Entry
	Summary walk.Summary
}

// List implements the list facade.
func (c *Client) List(ctx context.Context, req ListRequest) (ListResponse, *fserrors.Error) {
	resolved, ferr := pathkernel.ValidateExistingPath(ctx, req.Root)
	if ferr != nil {
		return ListResponse{}, ferr
	}
	if ferr := requireDirectory(resolved.Canonical); ferr != nil {
		return ListResponse{}, ferr
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
		NonRecursive:       !req.Recursive,
		FollowSymlinks:     req.FollowSymlinks,
		OnlyFiles:          req.OnlyFiles,
		WithStats:          req.WithStats,
	})
	if err != nil {
		return ListResponse{}, fserrors.FromOSError(req.Root, err)
	}

	sortEntries(entries, req.SortBy)
	return ListResponse{Entries: entries, Summary: summary}, nil
}

// requireDirectory confirms path is a directory, surfacing E_NOT_DIRECTORY
// otherwise.
func requireDirectory(path string) *fserrors.Error {
	info, err := os.Stat(path)
	if err != nil {
		return fserrors.FromOSError(path, err)
	}
	if !info.IsDir() {
		return fserrors.New(fserrors.NotDirectory, "expected a directory but found a file").WithPath(path)
	}
	return nil
}

// requireFile confirms path is a regular file, surfacing E_NOT_FILE
// otherwise.
func requireFile(path string) *fserrors.Error {
	info, err := os.Stat(path)
	if err != nil {
		return fserrors.FromOSError(path, err)
	}
	if info.IsDir() {
		return fserrors.New(fserrors.NotFile, "expected a file but found a directory").WithPath(path)
	}
	return nil
}
