package search

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
)

// cacheCapacity bounds each matcher cache to 100 entries.
const cacheCapacity = 100

type cacheKey struct {
	pattern string
	opts    MatcherOptions
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%t|%t|%t|%s", k.opts.CaseSensitive, k.opts.WholeWord, k.opts.IsLiteral, k.pattern)
}

// MatcherCache is a small per-worker LRU cache of compiled matchers. It is
// never shared across workers; its own locking exists only to make it safe
// if a single worker ever processes scans from more than one goroutine.
type MatcherCache struct {
	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List
}

type cacheEntry struct {
	key     string
	matcher Matcher
}

// NewMatcherCache constructs an empty matcher cache.
func NewMatcherCache() *MatcherCache {
	return &MatcherCache{
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// GetOrCompile returns a cached matcher for (pattern, opts), compiling and
// inserting one if absent, evicting the least-recently-used entry if the
// cache is full.
func (c *MatcherCache) GetOrCompile(pattern string, opts MatcherOptions) (Matcher, *fserrors.Error) {
	key := cacheKey{pattern: pattern, opts: opts}.String()

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		c.mu.Unlock()
		return el.Value.(*cacheEntry).matcher, nil
	}
	c.mu.Unlock()

	matcher, err := NewMatcher(pattern, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).matcher, nil
	}
	el := c.order.PushFront(&cacheEntry{key: key, matcher: matcher})
	c.items[key] = el
	if c.order.Len() > cacheCapacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
	return matcher, nil
}
