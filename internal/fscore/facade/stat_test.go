package facade

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
)

func TestStatReturnsFileMetadata(t *testing.T) {
	dir := initTestRoot(t)
	file := filepath.Join(dir, "main.go")
	os.WriteFile(file, []byte("package main"), 0o644)

	c := newTestClient(t)
	defer c.Close()

	info, ferr := c.Stat(context.Background(), StatRequest{Path: file, WithMime: true})
	if ferr != nil {
		t.Fatalf("Stat: %v", ferr)
	}
	if info.IsDirectory {
		t.Error("did not expect IsDirectory")
	}
	if info.Size != int64(len("package main")) {
		t.Errorf("got size %d, want %d", info.Size, len("package main"))
	}
	if !info.MimeKnown || info.MimeType != "text/x-go" {
		t.Errorf("got MimeType %q (known=%v), want text/x-go", info.MimeType, info.MimeKnown)
	}
}

func TestStatMissingPath(t *testing.T) {
	dir := initTestRoot(t)

	c := newTestClient(t)
	defer c.Close()

	_, ferr := c.Stat(context.Background(), StatRequest{Path: filepath.Join(dir, "missing.txt")})
	if ferr == nil || ferr.Code != fserrors.NotFound {
		t.Fatalf("got %v, want NotFound", ferr)
	}
}

func TestStatManyReturnsEntryPerPath(t *testing.T) {
	dir := initTestRoot(t)
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	os.WriteFile(a, []byte("x"), 0o644)
	os.WriteFile(b, []byte("yy"), 0o644)

	c := newTestClient(t)
	defer c.Close()

	entries, ferr := c.StatMany(context.Background(), StatManyRequest{Paths: []string{a, b}})
	if ferr != nil {
		t.Fatalf("StatMany: %v", ferr)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for i, e := range entries {
		if e.Err != nil {
			t.Errorf("entry %d: unexpected error %v", i, e.Err)
		}
	}
	if entries[0].Info.Size != 1 || entries[1].Info.Size != 2 {
		t.Errorf("got sizes %d, %d", entries[0].Info.Size, entries[1].Info.Size)
	}
}

func TestStatManyFailsUpFrontWhenAnyPathMissing(t *testing.T) {
	dir := initTestRoot(t)
	ok := filepath.Join(dir, "ok.txt")
	os.WriteFile(ok, []byte("x"), 0o644)
	missing := filepath.Join(dir, "missing.txt")

	c := newTestClient(t)
	defer c.Close()

	_, ferr := c.StatMany(context.Background(), StatManyRequest{Paths: []string{ok, missing}})
	if ferr == nil {
		t.Fatal("expected validation of the missing path to fail the whole call")
	}
}
