package facade

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/mutagen-io/fscore/internal/fscore/batch"
	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
	"github.com/mutagen-io/fscore/internal/fscore/mimetype"
	"github.com/mutagen-io/fscore/internal/fscore/pathkernel"
)

// StatInfo is the metadata returned by the stat/statMany facades.
type StatInfo struct {
	Path        string
	Size        int64
	ModTime     time.Time
	IsDirectory bool
	IsSymlink   bool
	MimeType    string
	MimeKnown   bool
}

// StatRequest is a single-path stat call.
type StatRequest struct {
	Path        string
	WithMime    bool
	TimeoutMs   int64
}

// Stat implements the stat facade.
func (c *Client) Stat(ctx context.Context, req StatRequest) (StatInfo, *fserrors.Error) {
	resolved, ferr := pathkernel.ValidateExistingPath(ctx, req.Path)
	if ferr != nil {
		return StatInfo{}, ferr
	}
	return statOne(resolved.Canonical, req.WithMime)
}

func statOne(path string, withMime bool) (StatInfo, *fserrors.Error) {
	info, err := os.Lstat(path)
	if err != nil {
		return StatInfo{}, fserrors.FromOSError(path, err)
	}

	result := StatInfo{
		Path:        path,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDirectory: info.IsDir(),
		IsSymlink:   info.Mode()&os.ModeSymlink != 0,
	}

	if withMime && !result.IsDirectory {
		if mt, ok := mimetype.Lookup(filepath.Ext(path)); ok {
			result.MimeType = mt
			result.MimeKnown = true
		}
	}

	return result, nil
}

// StatManyEntry is one result slot of a StatMany call.
type StatManyEntry struct {
	Path string
	Info StatInfo
	Err  *fserrors.Error
}

// StatManyRequest is a multi-path stat call.
type StatManyRequest struct {
	Paths       []string
	WithMime    bool
	Concurrency int
	TimeoutMs   int64
}

// StatMany implements the statMany facade.
func (c *Client) StatMany(ctx context.Context, req StatManyRequest) ([]StatManyEntry, *fserrors.Error) {
	sig, cleanup := c.newSignal(ctx, req.TimeoutMs)
	defer cleanup()

	resolvedPaths := make([]string, len(req.Paths))
	for i, p := range req.Paths {
		resolved, ferr := pathkernel.ValidateExistingPath(ctx, p)
		if ferr != nil {
			return nil, ferr
		}
		resolvedPaths[i] = resolved.Canonical
	}

	results, errs := batch.Map(sig, resolvedPaths, req.Concurrency, func(path string) (StatInfo, error) {
		info, ferr := statOne(path, req.WithMime)
		if ferr != nil {
			return StatInfo{}, ferr
		}
		return info, nil
	})

	entries := make([]StatManyEntry, len(req.Paths))
	for i, p := range req.Paths {
		entries[i] = StatManyEntry{Path: p, Info: results[i]}
		if errs[i] != nil {
			if ferr, ok := errs[i].(*fserrors.Error); ok {
				entries[i].Err = ferr
			} else {
				entries[i].Err = fserrors.FromOSError(p, errs[i])
			}
		}
	}
	return entries, nil
}
