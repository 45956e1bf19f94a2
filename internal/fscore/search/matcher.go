// Package search implements content search: ReDoS-protected pattern
// compilation, line-oriented scanning with context windows and match caps,
// and binary detection.
package search

import (
	"regexp"
	"strings"

	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
)

// MatcherOptions bundles the matcher construction flags.
type MatcherOptions struct {
	CaseSensitive bool
	WholeWord     bool
	IsLiteral     bool
}

// Matcher is a pure, thread-safe function from a line to a match count: no
// I/O, no cross-line state, safe to share across goroutines.
type Matcher interface {
	Count(line string) int
}

// literalMatcher counts non-overlapping occurrences of a literal substring.
// Go's strings.Count already performs Boyer-Moore-style skip-search
// internally for longer needles, so no bespoke substring search is needed.
type literalMatcher struct {
	needle        string
	caseSensitive bool
}

func (m *literalMatcher) Count(line string) int {
	if !m.caseSensitive {
		line = strings.ToLower(line)
	}
	if m.needle == "" {
		return 0
	}
	return strings.Count(line, m.needle)
}

// regexMatcher counts non-overlapping regex matches using Go's standard
// regexp package, which is RE2-based: linear-time and non-backtracking, so
// it cannot itself exhibit catastrophic backtracking regardless of input.
type regexMatcher struct {
	re *regexp.Regexp
}

func (m *regexMatcher) Count(line string) int {
	return len(m.re.FindAllStringIndex(line, -1))
}

// NewMatcher builds a Matcher for pattern under opts. Unsafe regex patterns
// are rejected before compilation with E_INVALID_INPUT, carrying "ReDoS" in
// the message.
func NewMatcher(pattern string, opts MatcherOptions) (Matcher, *fserrors.Error) {
	if opts.IsLiteral && !opts.WholeWord {
		needle := pattern
		if !opts.CaseSensitive {
			needle = strings.ToLower(needle)
		}
		return &literalMatcher{needle: needle, caseSensitive: opts.CaseSensitive}, nil
	}

	expr := pattern
	if opts.IsLiteral && opts.WholeWord {
		expr = `\b` + regexp.QuoteMeta(pattern) + `\b`
	}

	if err := checkReDoSSafety(expr); err != nil {
		return nil, err
	}

	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fserrors.Newf(fserrors.InvalidInput, "invalid pattern: %v", err)
	}

	return &regexMatcher{re: re}, nil
}

// checkReDoSSafety rejects patterns matching unsafe shapes: nested
// unbounded quantifiers inside a capture group (the "(x+)+" class) and
// "{n,m}" bounds with n >= 25. Go's regexp package is itself RE2 and
// therefore immune to catastrophic backtracking even if a pattern slips
// past this check, but rejection needs to happen before any file is opened
// with a specific, identifiable error message, so the check runs as a
// pre-compilation static scan rather than relying on runtime behavior
// alone.
func checkReDoSSafety(expr string) *fserrors.Error {
	if hasNestedUnboundedQuantifier(expr) {
		return fserrors.New(fserrors.InvalidInput, "pattern is unsafe: possible ReDoS (nested unbounded quantifiers)")
	}
	if hasLargeBoundedRepetition(expr) {
		return fserrors.New(fserrors.InvalidInput, "pattern is unsafe: possible ReDoS ({n,m} bound too large)")
	}
	return nil
}

// hasNestedUnboundedQuantifier does a lightweight scan for a parenthesized
// group containing a quantifier (+ or *) anywhere inside it that is itself
// immediately followed by another quantifier, e.g. "(a+)+", "(a*)+",
// "(a+b)*".
func hasNestedUnboundedQuantifier(expr string) bool {
	depth := 0
	groupHasInnerQuantifier := map[int]bool{}
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch c {
		case '\\':
			i++ // Skip the escaped character.
		case '(':
			depth++
			groupHasInnerQuantifier[depth] = false
		case '+', '*':
			if depth > 0 {
				groupHasInnerQuantifier[depth] = true
			}
		case ')':
			inner := groupHasInnerQuantifier[depth]
			delete(groupHasInnerQuantifier, depth)
			depth--
			if inner && i+1 < len(expr) && (expr[i+1] == '+' || expr[i+1] == '*') {
				return true
			}
		}
	}
	return false
}

// hasLargeBoundedRepetition rejects any "{n" or "{n,m}" quantifier whose
// lower bound n is 25 or greater.
func hasLargeBoundedRepetition(expr string) bool {
	for i := 0; i < len(expr); i++ {
		if expr[i] != '{' {
			continue
		}
		j := i + 1
		start := j
		for j < len(expr) && expr[j] >= '0' && expr[j] <= '9' {
			j++
		}
		if j == start || j >= len(expr) {
			continue
		}
		n := 0
		for k := start; k < j; k++ {
			n = n*10 + int(expr[k]-'0')
			if n >= 25 {
				return true
			}
		}
	}
	return false
}
