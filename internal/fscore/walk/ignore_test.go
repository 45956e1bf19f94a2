package walk

import "testing"

func TestGitignoreMatcherBasicPattern(t *testing.T) {
	m, err := NewGitignoreMatcher([]string{"*.log"})
	if err != nil {
		t.Fatalf("NewGitignoreMatcher: %v", err)
	}
	if !m.Ignored("debug.log", false) {
		t.Error("expected debug.log to be ignored")
	}
	if m.Ignored("debug.txt", false) {
		t.Error("did not expect debug.txt to be ignored")
	}
}

func TestGitignoreMatcherDirectoryOnly(t *testing.T) {
	m, err := NewGitignoreMatcher([]string{"build/"})
	if err != nil {
		t.Fatalf("NewGitignoreMatcher: %v", err)
	}
	if !m.Ignored("build/", true) {
		t.Error("expected the build directory to be ignored")
	}
	if m.Ignored("build", false) {
		t.Error("did not expect a file named build to be ignored by a directory-only pattern")
	}
}

func TestGitignoreMatcherNegation(t *testing.T) {
	m, err := NewGitignoreMatcher([]string{"*.log", "!important.log"})
	if err != nil {
		t.Fatalf("NewGitignoreMatcher: %v", err)
	}
	if m.Ignored("important.log", false) {
		t.Error("expected important.log to be un-ignored by the negated pattern")
	}
	if !m.Ignored("other.log", false) {
		t.Error("expected other.log to remain ignored")
	}
}

func TestGitignoreMatcherLaterPatternWins(t *testing.T) {
	m, err := NewGitignoreMatcher([]string{"!keep.txt", "keep.txt"})
	if err != nil {
		t.Fatalf("NewGitignoreMatcher: %v", err)
	}
	if !m.Ignored("keep.txt", false) {
		t.Error("expected the later, non-negated pattern to win")
	}
}

func TestGitignoreMatcherAbsolutePatternMatchesOnlyAtRoot(t *testing.T) {
	m, err := NewGitignoreMatcher([]string{"/config.yaml"})
	if err != nil {
		t.Fatalf("NewGitignoreMatcher: %v", err)
	}
	if !m.Ignored("config.yaml", false) {
		t.Error("expected the root-anchored pattern to match the top-level file")
	}
	if m.Ignored("nested/config.yaml", false) {
		t.Error("did not expect a root-anchored pattern to match a nested path")
	}
}

func TestGitignoreMatcherLeafMatchAppliesAnywhere(t *testing.T) {
	m, err := NewGitignoreMatcher([]string{"node_modules"})
	if err != nil {
		t.Fatalf("NewGitignoreMatcher: %v", err)
	}
	if !m.Ignored("src/node_modules", true) {
		t.Error("expected a bare leaf pattern to match at any depth")
	}
}

func TestGitignoreMatcherIgnoresBlankLinesAndComments(t *testing.T) {
	m, err := NewGitignoreMatcher([]string{"", "# a comment", "*.tmp"})
	if err != nil {
		t.Fatalf("NewGitignoreMatcher: %v", err)
	}
	if !m.Ignored("x.tmp", false) {
		t.Error("expected *.tmp to still be parsed and applied")
	}
}

func TestGitignoreMatcherRejectsInvalidPattern(t *testing.T) {
	_, err := NewGitignoreMatcher([]string{"["})
	if err == nil {
		t.Fatal("expected an error for an invalid glob pattern")
	}
}

func TestNilGitignoreMatcherNeverIgnores(t *testing.T) {
	var m *GitignoreMatcher
	if m.Ignored("anything", false) {
		t.Error("expected a nil matcher to never report ignored")
	}
}
