package facade

import (
	"testing"
	"time"

	"github.com/mutagen-io/fscore/internal/fscore/config"
	"github.com/mutagen-io/fscore/internal/fscore/logging"
	"github.com/mutagen-io/fscore/internal/fscore/roots"
	"github.com/mutagen-io/fscore/internal/fscore/walk"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.RuntimeConfig{
		MaxSearchSize:        1 << 20,
		MaxFileSize:          10 << 20,
		DefaultSearchTimeout: 5 * time.Second,
		SearchWorkers:        0,
	}
	return New(cfg, logging.Root)
}

func initTestRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := roots.Init([]string{dir}, false); err != nil {
		t.Fatalf("roots.Init: %v", err)
	}
	return dir
}

func TestSortEntriesByNameDefault(t *testing.T) {
	entries := []walk.Entry{
		{Name: "banana", AbsolutePath: "/b"},
		{Name: "apple", AbsolutePath: "/a"},
	}
	sortEntries(entries, "")
	if entries[0].Name != "apple" || entries[1].Name != "banana" {
		t.Fatalf("got %v", entries)
	}
}

func TestSortEntriesBySize(t *testing.T) {
	big, small := int64(100), int64(5)
	entries := []walk.Entry{
		{Name: "a", AbsolutePath: "/a", Size: &big},
		{Name: "b", AbsolutePath: "/b", Size: &small},
	}
	sortEntries(entries, "size")
	if *entries[0].Size != 5 || *entries[1].Size != 100 {
		t.Fatalf("got %v, %v", *entries[0].Size, *entries[1].Size)
	}
}

func TestSortEntriesByMtime(t *testing.T) {
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	entries := []walk.Entry{
		{Name: "a", AbsolutePath: "/a", ModTime: &newer},
		{Name: "b", AbsolutePath: "/b", ModTime: &older},
	}
	sortEntries(entries, "mtime")
	if !entries[0].ModTime.Equal(older) {
		t.Fatalf("expected the older entry first")
	}
}

func TestSortEntriesTieBrokenByPath(t *testing.T) {
	entries := []walk.Entry{
		{Name: "same", AbsolutePath: "/z"},
		{Name: "same", AbsolutePath: "/a"},
	}
	sortEntries(entries, "")
	if entries[0].AbsolutePath != "/a" {
		t.Fatalf("got %v", entries)
	}
}

func TestClientCloseWithoutPoolIsSafe(t *testing.T) {
	c := newTestClient(t)
	c.Close()
}

func TestClientCloseWithPoolShutsDown(t *testing.T) {
	cfg := config.RuntimeConfig{
		MaxSearchSize:        1 << 20,
		MaxFileSize:          10 << 20,
		DefaultSearchTimeout: 5 * time.Second,
		SearchWorkers:        2,
	}
	c := New(cfg, logging.Root)
	c.Close()
}
