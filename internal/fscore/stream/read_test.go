package stream

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestHeadFewerLinesThanRequested(t *testing.T) {
	path := writeTempFile(t, "a\nb\nc\n")
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	result, err := Head(sig, path, 10, 0)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	want := []string{"a", "b", "c"}
	if !equalSlices(result.Lines, want) {
		t.Fatalf("got %v, want %v", result.Lines, want)
	}
	if result.Truncated {
		t.Error("did not expect truncation")
	}
}

func TestHeadMoreLinesThanRequested(t *testing.T) {
	path := writeTempFile(t, "a\nb\nc\nd\ne\n")
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	result, err := Head(sig, path, 2, 0)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	want := []string{"a", "b"}
	if !equalSlices(result.Lines, want) {
		t.Fatalf("got %v, want %v", result.Lines, want)
	}
	if !result.Truncated || !result.HasMoreLines {
		t.Error("expected truncation and HasMoreLines")
	}
}

func TestHeadNormalizesCRLF(t *testing.T) {
	path := writeTempFile(t, "a\r\nb\r\n")
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	result, err := Head(sig, path, 10, 0)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	want := []string{"a", "b"}
	if !equalSlices(result.Lines, want) {
		t.Fatalf("got %v, want %v", result.Lines, want)
	}
}

func TestTailLastNLines(t *testing.T) {
	path := writeTempFile(t, "a\nb\nc\nd\ne\n")
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	result, err := Tail(sig, path, 2, 0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	want := []string{"d", "e"}
	if !equalSlices(result.Lines, want) {
		t.Fatalf("got %v, want %v", result.Lines, want)
	}
}

func TestTailFewerLinesThanFile(t *testing.T) {
	path := writeTempFile(t, "only\n")
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	result, err := Tail(sig, path, 10, 0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	want := []string{"only"}
	if !equalSlices(result.Lines, want) {
		t.Fatalf("got %v, want %v", result.Lines, want)
	}
}

func TestTailSpanningMultipleChunks(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50000; i++ {
		b.WriteString("line content here\n")
	}
	path := writeTempFile(t, b.String())
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	result, err := Tail(sig, path, 3, 0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(result.Lines))
	}
	for _, l := range result.Lines {
		if l != "line content here" {
			t.Errorf("got line %q", l)
		}
	}
}

func TestLineRangeInclusiveBounds(t *testing.T) {
	path := writeTempFile(t, "1\n2\n3\n4\n5\n")
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	result, err := LineRange(sig, path, 2, 4, 0)
	if err != nil {
		t.Fatalf("LineRange: %v", err)
	}
	want := []string{"2", "3", "4"}
	if !equalSlices(result.Lines, want) {
		t.Fatalf("got %v, want %v", result.Lines, want)
	}
	if !result.HasMoreLines {
		t.Error("expected HasMoreLines since line 5 remains")
	}
}

func TestLineRangeToEndOfFile(t *testing.T) {
	path := writeTempFile(t, "1\n2\n3\n")
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	result, err := LineRange(sig, path, 2, 3, 0)
	if err != nil {
		t.Fatalf("LineRange: %v", err)
	}
	want := []string{"2", "3"}
	if !equalSlices(result.Lines, want) {
		t.Fatalf("got %v, want %v", result.Lines, want)
	}
	if result.HasMoreLines {
		t.Error("did not expect more lines at end of file")
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
