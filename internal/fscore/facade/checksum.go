package facade

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/mutagen-io/fscore/internal/fscore/batch"
	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
	"github.com/mutagen-io/fscore/internal/fscore/pathkernel"
)

// ChecksumAlgorithm selects the digest algorithm.
type ChecksumAlgorithm string

const (
	SHA256 ChecksumAlgorithm = "sha256"
	SHA1   ChecksumAlgorithm = "sha1"
	MD5    ChecksumAlgorithm = "md5"
)

func newHash(algorithm ChecksumAlgorithm) (hash.Hash, *fserrors.Error) {
	switch algorithm {
	case "", SHA256:
		return sha256.New(), nil
	case SHA1:
		return sha1.New(), nil
	case MD5:
		return md5.New(), nil
	default:
		return nil, fserrors.Newf(fserrors.InvalidInput, "unsupported checksum algorithm %q", algorithm)
	}
}

// ChecksumEntry is one result slot of a Checksum call.
type ChecksumEntry struct {
	Path   string
	Digest string
	Err    *fserrors.Error
}

// ChecksumRequest computes a streaming digest over each path.
type ChecksumRequest struct {
	Paths       []string
	Algorithm   ChecksumAlgorithm
	MaxFileSize int64
	Concurrency int
	TimeoutMs   int64
}

// Checksum implements the checksum facade.
func (c *Client) Checksum(ctx context.Context, req ChecksumRequest) ([]ChecksumEntry, *fserrors.Error) {
	if _, ferr := newHash(req.Algorithm); ferr != nil {
		return nil, ferr
	}

	sig, cleanup := c.newSignal(ctx, req.TimeoutMs)
	defer cleanup()

	maxFileSize := req.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = c.cfg.MaxFileSize
	}

	resolvedPaths := make([]string, len(req.Paths))
	for i, p := range req.Paths {
		resolved, ferr := pathkernel.ValidateExistingPath(ctx, p)
		if ferr != nil {
			return nil, ferr
		}
		if ferr := requireFile(resolved.Canonical); ferr != nil {
			return nil, ferr
		}
		resolvedPaths[i] = resolved.Canonical
	}

	results, errs := batch.Map(sig, resolvedPaths, req.Concurrency, func(path string) (string, error) {
		return checksumOne(path, req.Algorithm, maxFileSize)
	})

	entries := make([]ChecksumEntry, len(req.Paths))
	for i, p := range req.Paths {
		entries[i] = ChecksumEntry{Path: p, Digest: results[i]}
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

func checksumOne(path string, algorithm ChecksumAlgorithm, maxFileSize int64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if maxFileSize > 0 && info.Size() > maxFileSize {
		return "", fserrors.TooLargef(path, info.Size(), maxFileSize)
	}

	h, ferr := newHash(algorithm)
	if ferr != nil {
		return "", ferr
	}

	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
