package facade

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
	"github.com/mutagen-io/fscore/internal/fscore/pathkernel"
	"github.com/mutagen-io/fscore/internal/fscore/stream"
)

// PatchRequest applies a unified diff to a single file: read the full
// content, apply each hunk with an optional fuzz factor, then write the
// result back atomically, unless DryRun only wants the computed content.
type PatchRequest struct {
	Path      string
	Diff      string
	Fuzz      int
	DryRun    bool
	TimeoutMs int64
}

// PatchResult reports what the patch did (or would have done, on dry run).
type PatchResult struct {
	Applied      bool
	HunksApplied int
	HunksFailed  int
	NewContent   string
}

// hunk is one parsed unified-diff hunk.
type hunk struct {
	oldStart int
	lines    []hunkLine
}

type hunkLine struct {
	kind byte // ' ', '+', '-'
	text string
}

// Patch implements the patch facade.
func (c *Client) Patch(ctx context.Context, req PatchRequest) (PatchResult, *fserrors.Error) {
	resolved, ferr := pathkernel.ValidateExistingPath(ctx, req.Path)
	if ferr != nil {
		return PatchResult{}, ferr
	}
	if ferr := requireFile(resolved.Canonical); ferr != nil {
		return PatchResult{}, ferr
	}

	sig, cleanup := c.newSignal(ctx, req.TimeoutMs)
	defer cleanup()

	file, err := os.Open(resolved.Canonical)
	if err != nil {
		return PatchResult{}, fserrors.FromOSError(req.Path, err)
	}
	data, err := stream.ReadCapped(sig, resolved.Canonical, file, c.cfg.MaxFileSize)
	file.Close()
	if err != nil {
		return PatchResult{}, fserrors.FromOSError(req.Path, err)
	}

	hunks, perr := parseUnifiedDiff(req.Diff)
	if perr != nil {
		return PatchResult{}, fserrors.Newf(fserrors.InvalidInput, "unable to parse diff: %v", perr)
	}

	originalLines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	newLines, applied, failed := applyHunks(originalLines, hunks, req.Fuzz)

	result := PatchResult{
		HunksApplied: applied,
		HunksFailed:  failed,
		NewContent:   strings.Join(newLines, "\n"),
	}

	if req.DryRun {
		return result, nil
	}

	if failed > 0 {
		return result, fserrors.New(fserrors.InvalidInput, fmt.Sprintf("%d of %d hunks failed to apply", failed, applied+failed)).WithPath(req.Path)
	}

	target, ferr := pathkernel.ValidatePathForWrite(ctx, req.Path)
	if ferr != nil {
		return result, ferr
	}
	if err := stream.WriteFileAtomic(target, []byte(result.NewContent), defaultWritePermissions); err != nil {
		return result, fserrors.FromOSError(req.Path, err)
	}

	result.Applied = true
	return result, nil
}

// parseUnifiedDiff extracts hunks from a unified diff, ignoring file
// header lines ("---", "+++") and any "diff"/"index" preamble.
func parseUnifiedDiff(diff string) ([]hunk, error) {
	var hunks []hunk
	var current *hunk

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			if current != nil {
				hunks = append(hunks, *current)
			}
			h, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			current = &h
		case strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") ||
			strings.HasPrefix(line, "diff ") || strings.HasPrefix(line, "index "):
			continue
		case current != nil && len(line) > 0:
			current.lines = append(current.lines, hunkLine{kind: line[0], text: line[1:]})
		case current != nil:
			current.lines = append(current.lines, hunkLine{kind: ' ', text: ""})
		}
	}
	if current != nil {
		hunks = append(hunks, *current)
	}
	return hunks, nil
}

// parseHunkHeader parses "@@ -oldStart,oldLines +newStart,newLines @@".
func parseHunkHeader(line string) (hunk, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return hunk{}, fmt.Errorf("malformed hunk header %q", line)
	}
	oldRange := strings.TrimPrefix(fields[1], "-")
	oldStart, err := parseRangeStart(oldRange)
	if err != nil {
		return hunk{}, err
	}
	return hunk{oldStart: oldStart}, nil
}

func parseRangeStart(rangeSpec string) (int, error) {
	parts := strings.SplitN(rangeSpec, ",", 2)
	return strconv.Atoi(parts[0])
}

// applyHunks applies each hunk to lines (1-indexed semantics, 0-indexed
// slice), retrying the context match at oldStart+/-1..fuzz before counting
// the hunk as failed (supplemental "fuzz factor" feature).
func applyHunks(lines []string, hunks []hunk, fuzz int) ([]string, int, int) {
	result := append([]string(nil), lines...)
	applied, failed := 0, 0

	// Apply hunks from last to first so earlier offsets are unaffected by
	// length changes introduced by later hunks.
	for i := len(hunks) - 1; i >= 0; i-- {
		h := hunks[i]
		pos, ok := locateHunk(result, h, fuzz)
		if !ok {
			failed++
			continue
		}

		var replacement []string
		cursor := pos
		for _, hl := range h.lines {
			switch hl.kind {
			case ' ':
				replacement = append(replacement, hl.text)
				cursor++
			case '-':
				cursor++
			case '+':
				replacement = append(replacement, hl.text)
			}
		}

		consumed := cursor - pos
		tail := append([]string(nil), result[pos+consumed:]...)
		result = append(append(result[:pos:pos], replacement...), tail...)
		applied++
	}

	return result, applied, failed
}

// locateHunk finds the 0-indexed position where h's context+deletion lines
// match result, trying h.oldStart-1 first and then +-1..fuzz offsets.
func locateHunk(result []string, h hunk, fuzz int) (int, bool) {
	want := h.oldStart - 1
	for offset := 0; offset <= fuzz; offset++ {
		for _, candidate := range []int{want + offset, want - offset} {
			if candidate < 0 || candidate > len(result) {
				continue
			}
			if hunkMatchesAt(result, h, candidate) {
				return candidate, true
			}
			if offset == 0 {
				break
			}
		}
	}
	return 0, false
}

func hunkMatchesAt(result []string, h hunk, pos int) bool {
	cursor := pos
	for _, hl := range h.lines {
		if hl.kind == '+' {
			continue
		}
		if cursor >= len(result) || result[cursor] != hl.text {
			return false
		}
		cursor++
	}
	return true
}
