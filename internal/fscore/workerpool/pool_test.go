package workerpool

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
	"github.com/mutagen-io/fscore/internal/fscore/logging"
	"github.com/mutagen-io/fscore/internal/fscore/search"
)

func writePoolFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestPoolSubmitAndResolve(t *testing.T) {
	pool := New(2, logging.Root)
	defer pool.Shutdown()

	path := writePoolFile(t, "alpha\nfoo\nbeta\n")
	req := NewScanRequest(path, path, "foo", search.MatcherOptions{CaseSensitive: true, IsLiteral: true}, search.ScanOptions{MaxMatches: 10})

	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	outcome := <-pool.Submit(req, sig)
	if outcome.Err != nil {
		t.Fatalf("unexpected error: %v", outcome.Err)
	}
	if outcome.Cancelled {
		t.Fatal("did not expect cancellation")
	}
	if len(outcome.Result.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(outcome.Result.Matches))
	}
}

func TestPoolResolvesManyRequestsConcurrently(t *testing.T) {
	pool := New(4, logging.Root)
	defer pool.Shutdown()

	path := writePoolFile(t, "needle\nhaystack\n")

	var channels []<-chan ScanOutcome
	for i := 0; i < 20; i++ {
		req := NewScanRequest(path, path, "needle", search.MatcherOptions{CaseSensitive: true, IsLiteral: true}, search.ScanOptions{MaxMatches: 10})
		sig, cleanup := cancel.Compose(nil, 0)
		defer cleanup()
		channels = append(channels, pool.Submit(req, sig))
	}

	for _, ch := range channels {
		outcome := <-ch
		if outcome.Err != nil {
			t.Fatalf("unexpected error: %v", outcome.Err)
		}
		if len(outcome.Result.Matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(outcome.Result.Matches))
		}
	}
}

func TestPoolSubmitAfterShutdownResolvesAsCancelled(t *testing.T) {
	pool := New(1, logging.Root)
	pool.Shutdown()

	req := NewScanRequest("/irrelevant", "/irrelevant", "x", search.MatcherOptions{}, search.ScanOptions{})
	outcome := <-pool.Submit(req, nil)
	if !outcome.Cancelled {
		t.Error("expected a post-shutdown submission to resolve as cancelled")
	}
}

func TestPoolCancelMarksQueuedRequestCancelled(t *testing.T) {
	pool := New(0, logging.Root)
	defer pool.Shutdown()

	path := writePoolFile(t, "x\n")
	req := NewScanRequest(path, path, "x", search.MatcherOptions{CaseSensitive: true, IsLiteral: true}, search.ScanOptions{MaxMatches: 10})
	pool.Cancel(req.ID)

	outcome := <-pool.Submit(req, nil)
	if !outcome.Cancelled {
		t.Error("expected the request to resolve as cancelled once marked")
	}
}

func TestSizeWithinBounds(t *testing.T) {
	n := Size()
	if n < 4 || n > 32 {
		t.Errorf("Size() = %d, want between 4 and 32", n)
	}
}

func TestPoolShutdownWaitsForInFlightWork(t *testing.T) {
	pool := New(1, logging.Root)

	path := writePoolFile(t, "a\n")
	req := NewScanRequest(path, path, "a", search.MatcherOptions{CaseSensitive: true, IsLiteral: true}, search.ScanOptions{MaxMatches: 10})
	ch := pool.Submit(req, nil)

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the submitted request to resolve")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Shutdown to return")
	}
}
