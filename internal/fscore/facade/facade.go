// Package facade implements the public operation entry points: list, tree,
// find, grep, read, readMany, stat, statMany, checksum, write, and patch.
// Each composes the lower-level path validation, streaming, traversal, and
// search packages into one request/response call.
package facade

import (
	"sort"
	"time"

	"github.com/mutagen-io/fscore/internal/fscore/config"
	"github.com/mutagen-io/fscore/internal/fscore/logging"
	"github.com/mutagen-io/fscore/internal/fscore/walk"
	"github.com/mutagen-io/fscore/internal/fscore/workerpool"
)

// Client is the facade layer's handle: the resolved runtime configuration,
// a logger, and (if SearchWorkers > 0) a started worker pool. Callers
// construct exactly one per process.
type Client struct {
	cfg    config.RuntimeConfig
	logger *logging.Logger
	pool   *workerpool.Pool
}

// New constructs a Client. If cfg.SearchWorkers is 0, grep always scans
// sequentially on the facade's own goroutine instead of starting a pool.
func New(cfg config.RuntimeConfig, logger *logging.Logger) *Client {
	c := &Client{cfg: cfg, logger: logger}
	if cfg.SearchWorkers > 0 {
		c.pool = workerpool.New(cfg.SearchWorkers, logger.Sublogger("workerpool"))
	}
	return c
}

// Close shuts down the worker pool, if one was started. It should be
// called once, at process exit.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Shutdown()
	}
}

// sortEntries orders entries deterministically: the primary key per sortBy
// ("name" default, or "size", "mtime"), secondary key absolute path.
func sortEntries(entries []walk.Entry, sortBy string) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch sortBy {
		case "size":
			as, bs := entrySize(a), entrySize(b)
			if as != bs {
				return as < bs
			}
		case "mtime":
			at, bt := entryModTime(a), entryModTime(b)
			if !at.Equal(bt) {
				return at.Before(bt)
			}
		default:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
		return a.AbsolutePath < b.AbsolutePath
	})
}

func entrySize(e walk.Entry) int64 {
	if e.Size == nil {
		return 0
	}
	return *e.Size
}

func entryModTime(e walk.Entry) time.Time {
	if e.ModTime == nil {
		return time.Time{}
	}
	return *e.ModTime
}
