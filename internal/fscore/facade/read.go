package facade

import (
	"context"
	"os"
	"strings"

	"github.com/mutagen-io/fscore/internal/fscore/batch"
	"github.com/mutagen-io/fscore/internal/fscore/cancel"
	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
	"github.com/mutagen-io/fscore/internal/fscore/pathkernel"
	"github.com/mutagen-io/fscore/internal/fscore/stream"
)

// ReadMode selects which of the four partial-read surfaces a ReadRequest
// uses: a full read, a head/tail line count, or an inclusive line range.
// At most one of N, {LineStart, LineEnd} applies, per Mode.
type ReadMode int

const (
	ReadFull ReadMode = iota
	ReadHead
	ReadTail
	ReadLineRange
)

// ReadRequest is a single-file read, validated and then dispatched to a
// full, head, tail, or line-range read.
type ReadRequest struct {
	Path      string
	Mode      ReadMode
	N         int // line count for ReadHead/ReadTail
	LineStart int // 1-indexed, inclusive, for ReadLineRange
	LineEnd   int
	ByteCap   int64
	TimeoutMs int64
}

// ReadResult is the outcome of a single-file read.
type ReadResult struct {
	Content      string
	Lines        []string
	Truncated    bool
	HasMoreLines bool
}

// Read implements the read facade.
func (c *Client) Read(ctx context.Context, req ReadRequest) (ReadResult, *fserrors.Error) {
	resolved, ferr := pathkernel.ValidateExistingPath(ctx, req.Path)
	if ferr != nil {
		return ReadResult{}, ferr
	}
	if ferr := requireFile(resolved.Canonical); ferr != nil {
		return ReadResult{}, ferr
	}

	sig, cleanup := c.newSignal(ctx, req.TimeoutMs)
	defer cleanup()

	byteCap := req.ByteCap
	if byteCap <= 0 {
		byteCap = c.cfg.MaxFileSize
	}

	result, err := c.readOne(sig, resolved.Canonical, req, byteCap)
	if err != nil {
		if err == cancel.ErrAborted || err == cancel.ErrCancelled || err == cancel.ErrTimeout {
			return ReadResult{}, fserrors.New(fserrors.Unknown, abortError(sig).Error()).WithPath(req.Path)
		}
		return ReadResult{}, fserrors.FromOSError(req.Path, err)
	}
	return result, nil
}

func (c *Client) readOne(sig *cancel.Signal, path string, req ReadRequest, byteCap int64) (ReadResult, error) {
	switch req.Mode {
	case ReadHead:
		r, err := stream.Head(sig, path, req.N, byteCap)
		return fromStreamResult(r), err
	case ReadTail:
		r, err := stream.Tail(sig, path, req.N, byteCap)
		return fromStreamResult(r), err
	case ReadLineRange:
		r, err := stream.LineRange(sig, path, req.LineStart, req.LineEnd, byteCap)
		return fromStreamResult(r), err
	default:
		file, err := os.Open(path)
		if err != nil {
			return ReadResult{}, err
		}
		defer file.Close()
		data, err := stream.ReadCapped(sig, path, file, byteCap)
		if err != nil {
			return ReadResult{}, err
		}
		content := strings.ReplaceAll(string(data), "\r\n", "\n")
		return ReadResult{Content: content}, nil
	}
}

func fromStreamResult(r stream.ReadResult) ReadResult {
	return ReadResult{
		Content:      strings.Join(r.Lines, "\n"),
		Lines:        r.Lines,
		Truncated:    r.Truncated,
		HasMoreLines: r.HasMoreLines,
	}
}

// ReadManyEntry is one result slot of a ReadMany call.
type ReadManyEntry struct {
	Path   string
	Result ReadResult
	Err    *fserrors.Error
}

// ReadManyRequest reads multiple files under one overall byte budget. If
// the estimated total size exceeds MaxTotalSize, the whole batch is
// rejected up front with a budget-overflow error entry per path, before
// any content is read.
type ReadManyRequest struct {
	Paths        []string
	Mode         ReadMode
	N            int
	LineStart    int
	LineEnd      int
	ByteCap      int64
	MaxTotalSize int64
	Concurrency  int
	TimeoutMs    int64
}

// ReadMany implements the readMany facade.
func (c *Client) ReadMany(ctx context.Context, req ReadManyRequest) ([]ReadManyEntry, *fserrors.Error) {
	sig, cleanup := c.newSignal(ctx, req.TimeoutMs)
	defer cleanup()

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

	byteCap := req.ByteCap
	if byteCap <= 0 {
		byteCap = c.cfg.MaxFileSize
	}

	if req.MaxTotalSize > 0 {
		_, budgetErr := batch.CheckBudget(resolvedPaths, req.MaxTotalSize, func(path string) (int64, error) {
			info, err := os.Stat(path)
			if err != nil {
				return 0, err
			}
			if req.Mode == ReadFull {
				return info.Size(), nil
			}
			return min64(info.Size(), byteCap), nil
		})
		if budgetErr != nil {
			entries := make([]ReadManyEntry, len(req.Paths))
			for i, p := range req.Paths {
				entries[i] = ReadManyEntry{Path: p, Err: budgetErr}
			}
			return entries, nil
		}
	}

	results, errs := batch.Map(sig, resolvedPaths, req.Concurrency, func(path string) (ReadResult, error) {
		return c.readOne(sig, path, ReadRequest{Mode: req.Mode, N: req.N, LineStart: req.LineStart, LineEnd: req.LineEnd}, byteCap)
	})

	entries := make([]ReadManyEntry, len(req.Paths))
	for i, p := range req.Paths {
		entries[i] = ReadManyEntry{Path: p, Result: results[i]}
		if errs[i] != nil {
			entries[i].Err = fserrors.FromOSError(p, errs[i])
		}
	}
	return entries, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
