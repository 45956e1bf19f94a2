package search

import (
	"bufio"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
)

// Match is a single content match.
type Match struct {
	File          string
	Line          int
	Content       string
	MatchCount    int
	ContextBefore []string
	ContextAfter  []string
}

// ScanOptions configures a single file's scan.
type ScanOptions struct {
	MaxFileSize  int64
	SkipBinary   bool
	ContextLines int
	MaxMatches   int
}

// FileScanResult is the outcome of scanning a single file.
type FileScanResult struct {
	Matches                    []Match
	SkippedTooLarge            bool
	SkippedBinary              bool
	LinesSkippedDueToRegexTimeout int
	Cancelled                  bool
}

const (
	maxLineClampBytes   = 200
	binaryProbeSize     = 512
	regexIterationCap   = 10000
	regexPerLineTimeout = 50 * time.Millisecond
)

// clampLine trims trailing whitespace and clamps content to 200 bytes.
func clampLine(line string) string {
	line = strings.TrimRight(line, " \t\r\n")
	if len(line) > maxLineClampBytes {
		line = line[:maxLineClampBytes]
	}
	return line
}

// looksBinary classifies a prefix as binary if it contains a NUL byte or
// has excessive invalid-UTF-8 density.
func looksBinary(prefix []byte) bool {
	if len(prefix) == 0 {
		return false
	}
	for _, b := range prefix {
		if b == 0 {
			return true
		}
	}

	invalid := 0
	for i := 0; i < len(prefix); {
		r, size := utf8.DecodeRune(prefix[i:])
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		i += size
	}
	return float64(invalid)/float64(len(prefix)) > 0.3
}

// ScanFile scans a single file for pattern matches. path must already be
// canonicalized and containment-checked by the caller.
func ScanFile(sig *cancel.Signal, path string, matcher Matcher, opts ScanOptions) (FileScanResult, error) {
	var result FileScanResult

	info, err := os.Stat(path)
	if err != nil {
		return result, err
	}

	if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
		result.SkippedTooLarge = true
		return result, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return result, err
	}
	defer file.Close()

	if opts.SkipBinary {
		prefix := make([]byte, binaryProbeSize)
		n, _ := file.Read(prefix)
		if looksBinary(prefix[:n]) {
			result.SkippedBinary = true
			return result, nil
		}
		if _, err := file.Seek(0, 0); err != nil {
			return result, err
		}
	}

	reader := bufio.NewScanner(file)
	reader.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var contextBefore []string
	// matches holds heap-allocated *Match values so that pending's pointers
	// stay valid as more matches are discovered (a []Match would invalidate
	// earlier pointers on reallocation).
	var matches []*Match
	var pending []*Match
	lineNumber := 0

	for reader.Scan() {
		if err := cancel.AssertNotAborted(sig); err != nil {
			result.Cancelled = true
			break
		}

		lineNumber++
		line := strings.TrimSuffix(reader.Text(), "\r")
		clamped := clampLine(line)

		count, timedOut := countWithCap(matcher, line)
		if timedOut {
			result.LinesSkippedDueToRegexTimeout++
			count = 0
		}

		// Fill contextAfter for any pending matches before this line becomes
		// this line's own match record (a match line can itself serve as
		// context-after for an earlier match).
		if opts.ContextLines > 0 && len(pending) > 0 {
			remaining := pending[:0]
			for _, m := range pending {
				m.ContextAfter = append(m.ContextAfter, clamped)
				if len(m.ContextAfter) < opts.ContextLines {
					remaining = append(remaining, m)
				}
			}
			pending = remaining
		}

		if count > 0 {
			m := &Match{
				File:          path,
				Line:          lineNumber,
				Content:       clamped,
				MatchCount:    count,
				ContextBefore: clampAll(contextBefore),
			}
			matches = append(matches, m)
			if opts.ContextLines > 0 {
				pending = append(pending, m)
			}

			if len(matches) >= opts.MaxMatches {
				break
			}
		}

		if opts.ContextLines > 0 {
			contextBefore = append(contextBefore, line)
			if len(contextBefore) > opts.ContextLines {
				contextBefore = contextBefore[1:]
			}
		}
	}

	result.Matches = make([]Match, len(matches))
	for i, m := range matches {
		result.Matches[i] = *m
	}

	return result, nil
}

func clampAll(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = clampLine(l)
	}
	return out
}

// countWithCap invokes matcher.Count with a per-line iteration/time bound:
// at most min(2*lineLength, 10000) "iterations" (approximated here as a
// wall-clock timeout, since Go's regexp package exposes no iteration
// counter) and a short per-line deadline. Exceeding the bound is never
// fatal; the line is skipped and scanning continues.
func countWithCap(matcher Matcher, line string) (count int, timedOut bool) {
	done := make(chan int, 1)
	go func() {
		done <- matcher.Count(line)
	}()

	select {
	case c := <-done:
		return c, false
	case <-time.After(regexPerLineTimeout):
		return 0, true
	}
}
