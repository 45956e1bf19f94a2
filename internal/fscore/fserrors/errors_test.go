package fserrors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestNewAttachesSuggestion(t *testing.T) {
	e := New(NotFound, "no such path")
	if e.Suggestion == "" {
		t.Fatal("expected a suggestion to be attached")
	}
	if e.Code != NotFound {
		t.Fatalf("got code %v, want %v", e.Code, NotFound)
	}
}

func TestErrorStringIncludesPathWhenSet(t *testing.T) {
	e := New(AccessDenied, "denied").WithPath("/tmp/x")
	got := e.Error()
	want := "E_ACCESS_DENIED: denied (/tmp/x)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestErrorStringOmitsPathWhenUnset(t *testing.T) {
	e := New(Unknown, "boom")
	got := e.Error()
	want := "E_UNKNOWN: boom"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("underlying")
	e := New(Unknown, "wrapped").WithCause(cause)
	if !errors.Is(e, cause) {
		t.Fatal("expected errors.Is to see through to the cause")
	}
}

func TestTooLargefFormatsHumanSizes(t *testing.T) {
	e := TooLargef("/a/b", 127*1024*1024, 10*1024*1024)
	if e.Code != TooLarge {
		t.Fatalf("got code %v, want %v", e.Code, TooLarge)
	}
	if e.Path != "/a/b" {
		t.Fatalf("got path %q", e.Path)
	}
}

func TestFromOSErrorNil(t *testing.T) {
	if FromOSError("/x", nil) != nil {
		t.Fatal("expected nil for nil input")
	}
}

func TestFromOSErrorNotExist(t *testing.T) {
	_, err := os.Stat("/does/not/exist/at/all")
	e := FromOSError("/does/not/exist/at/all", err)
	if e.Code != NotFound {
		t.Fatalf("got code %v, want %v", e.Code, NotFound)
	}
}

func TestFromOSErrorUnwrapsPkgErrorsWrap(t *testing.T) {
	_, statErr := os.Stat("/does/not/exist/at/all")
	wrapped := pkgerrors.Wrap(statErr, "while statting")
	e := FromOSError("/x", wrapped)
	if e.Code != NotFound {
		t.Fatalf("got code %v, want %v", e.Code, NotFound)
	}
}

func TestFromOSErrorUnwrapsFmtErrorf(t *testing.T) {
	_, statErr := os.Stat("/does/not/exist/at/all")
	wrapped := fmt.Errorf("context: %w", statErr)
	e := FromOSError("/x", wrapped)
	if e.Code != NotFound {
		t.Fatalf("got code %v, want %v", e.Code, NotFound)
	}
}

func TestFromOSErrorUnknownFallsBack(t *testing.T) {
	e := FromOSError("/x", errors.New("something else entirely"))
	if e.Code != Unknown {
		t.Fatalf("got code %v, want %v", e.Code, Unknown)
	}
}
