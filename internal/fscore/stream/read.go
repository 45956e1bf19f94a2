package stream

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
)

const (
	headChunkSize = 64 * 1024
	tailChunkSize = 256 * 1024
)

// ReadResult is the outcome of Head/Tail/LineRange.
type ReadResult struct {
	Lines        []string
	Truncated    bool
	HasMoreLines bool
}

// normalizeCRLF converts CRLF line endings to LF in place within a line,
// since lines are already split on '\n'; only a trailing '\r' can remain.
func normalizeCRLF(line string) string {
	return strings.TrimSuffix(line, "\r")
}

// Head reads forward from the start of the file, collecting up to n lines
// or until byteCap bytes have been consumed, whichever comes first.
func Head(sig *cancel.Signal, path string, n int, byteCap int64) (ReadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return ReadResult{}, errors.Wrap(err, "unable to open file")
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, headChunkSize)

	var lines []string
	var consumed int64
	truncated := false

	for len(lines) < n {
		if err := cancel.AssertNotAborted(sig); err != nil {
			return ReadResult{}, err
		}

		line, readErr := reader.ReadString('\n')
		if len(line) > 0 {
			consumed += int64(len(line))
			if byteCap > 0 && consumed > byteCap {
				truncated = true
				break
			}
			lines = append(lines, normalizeCRLF(strings.TrimSuffix(line, "\n")))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return ReadResult{}, errors.Wrap(readErr, "unable to read file")
		}
	}

	// Determine whether more content follows what we collected.
	hasMore := false
	if _, err := reader.Peek(1); err == nil {
		hasMore = true
	}

	if len(lines) == n && hasMore {
		truncated = true
	}

	return ReadResult{Lines: lines, Truncated: truncated, HasMoreLines: hasMore}, nil
}

// Tail reads backward from the end of the file in chunks, aligning each
// chunk boundary to a UTF-8 leading byte, and collects up to n lines or
// byteCap bytes from the end.
func Tail(sig *cancel.Signal, path string, n int, byteCap int64) (ReadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return ReadResult{}, errors.Wrap(err, "unable to open file")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return ReadResult{}, errors.Wrap(err, "unable to stat file")
	}

	size := info.Size()
	pos := size
	var carry []byte
	var collected []string
	var consumed int64
	capHit := false

	for pos > 0 && len(collected) < n && !capHit {
		if err := cancel.AssertNotAborted(sig); err != nil {
			return ReadResult{}, err
		}

		chunkLen := int64(tailChunkSize)
		if chunkLen > pos {
			chunkLen = pos
		}
		start := pos - chunkLen

		// Re-anchor to a UTF-8 leading byte: scan at most 4 bytes earlier.
		start = alignToUTF8Boundary(file, start)

		buf := make([]byte, pos-start)
		if _, err := file.ReadAt(buf, start); err != nil && err != io.EOF {
			return ReadResult{}, errors.Wrap(err, "unable to read file")
		}

		combined := append(buf, carry...)
		parts := strings.Split(string(combined), "\n")

		// A newline that ends the file terminates its last line rather than
		// starting an empty one.
		if pos == size && len(parts) > 1 && parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}

		// The first element may be a partial line continued from an earlier
		// (i.e. more-forward) chunk; carry it to the next iteration.
		carry = []byte(parts[0])
		newLines := parts[1:]

		for i := len(newLines) - 1; i >= 0 && len(collected) < n; i-- {
			consumed += int64(len(newLines[i])) + 1
			if byteCap > 0 && consumed > byteCap {
				capHit = true
				break
			}
			collected = append([]string{normalizeCRLF(newLines[i])}, collected...)
		}

		pos = start
	}

	// If we consumed the entire file without hitting the line or byte cap,
	// the remaining carry is the file's first (partial) line.
	if !capHit && pos == 0 && len(carry) > 0 && len(collected) < n {
		collected = append([]string{normalizeCRLF(string(carry))}, collected...)
	}

	truncated := pos > 0 || capHit

	return ReadResult{Lines: collected, Truncated: truncated}, nil
}

// alignToUTF8Boundary scans at most 4 bytes backward from start looking for
// a byte whose top two bits aren't "10" (i.e. not a UTF-8 continuation
// byte).
func alignToUTF8Boundary(file *os.File, start int64) int64 {
	if start == 0 {
		return 0
	}
	probe := make([]byte, 1)
	for back := int64(0); back < 4 && start-back > 0; back++ {
		candidate := start - back
		if _, err := file.ReadAt(probe, candidate); err != nil {
			continue
		}
		if probe[0]&0xC0 != 0x80 {
			return candidate
		}
	}
	return start
}

// LineRange streams forward through the file and returns lines
// [start..end] inclusive (1-indexed).
func LineRange(sig *cancel.Signal, path string, start, end int, byteCap int64) (ReadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return ReadResult{}, errors.Wrap(err, "unable to open file")
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, headChunkSize)

	var lines []string
	var consumed int64
	lineNumber := 0
	hasMore := false

	for {
		if err := cancel.AssertNotAborted(sig); err != nil {
			return ReadResult{}, err
		}

		line, readErr := reader.ReadString('\n')
		if len(line) > 0 {
			lineNumber++
			if lineNumber >= start && lineNumber <= end {
				consumed += int64(len(line))
				if byteCap > 0 && consumed > byteCap {
					hasMore = true
					break
				}
				lines = append(lines, normalizeCRLF(strings.TrimSuffix(line, "\n")))
			}
			if lineNumber >= end {
				if _, peekErr := reader.Peek(1); peekErr == nil {
					hasMore = true
				}
				break
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return ReadResult{}, errors.Wrap(readErr, "unable to read file")
		}
	}

	return ReadResult{Lines: lines, HasMoreLines: hasMore}, nil
}
