package facade

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestChecksumSHA256(t *testing.T) {
	dir := initTestRoot(t)
	file := filepath.Join(dir, "f.txt")
	os.WriteFile(file, []byte("hello"), 0o644)

	c := newTestClient(t)
	defer c.Close()

	entries, ferr := c.Checksum(context.Background(), ChecksumRequest{Paths: []string{file}, Algorithm: SHA256})
	if ferr != nil {
		t.Fatalf("Checksum: %v", ferr)
	}
	sum := sha256.Sum256([]byte("hello"))
	want := hex.EncodeToString(sum[:])
	if entries[0].Digest != want {
		t.Fatalf("got %q, want %q", entries[0].Digest, want)
	}
}

func TestChecksumDefaultsToSHA256(t *testing.T) {
	dir := initTestRoot(t)
	file := filepath.Join(dir, "f.txt")
	os.WriteFile(file, []byte("hello"), 0o644)

	c := newTestClient(t)
	defer c.Close()

	entries, ferr := c.Checksum(context.Background(), ChecksumRequest{Paths: []string{file}})
	if ferr != nil {
		t.Fatalf("Checksum: %v", ferr)
	}
	sum := sha256.Sum256([]byte("hello"))
	want := hex.EncodeToString(sum[:])
	if entries[0].Digest != want {
		t.Fatalf("got %q, want %q", entries[0].Digest, want)
	}
}

func TestChecksumRejectsUnsupportedAlgorithm(t *testing.T) {
	dir := initTestRoot(t)

	c := newTestClient(t)
	defer c.Close()

	_, ferr := c.Checksum(context.Background(), ChecksumRequest{Paths: []string{dir}, Algorithm: "crc32"})
	if ferr == nil {
		t.Fatal("expected an error for an unsupported algorithm")
	}
}

func TestChecksumPerFileSizeLimit(t *testing.T) {
	dir := initTestRoot(t)
	file := filepath.Join(dir, "big.txt")
	os.WriteFile(file, []byte("0123456789"), 0o644)

	c := newTestClient(t)
	defer c.Close()

	entries, ferr := c.Checksum(context.Background(), ChecksumRequest{Paths: []string{file}, MaxFileSize: 5})
	if ferr != nil {
		t.Fatalf("Checksum: %v", ferr)
	}
	if entries[0].Err == nil {
		t.Fatal("expected a too-large error for the oversized file")
	}
}
