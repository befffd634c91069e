// Package filter decides which files are in scope for annotation scanning.
//
// Include and exclude sets are brace-joined into one compound doublestar
// pattern each. Paths are matched in slash form with any leading separator
// and drive letter removed, so absolute paths behave like root-relative ones.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude is used when the include set is empty.
const DefaultInclude = "**/*"

// JoinGlobs brace-joins patterns into one alternation. A single pattern is
// returned unchanged and an empty set yields "".
func JoinGlobs(patterns []string) string {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}

	switch len(cleaned) {
	case 0:
		return ""
	case 1:
		return cleaned[0]
	default:
		return "{" + strings.Join(cleaned, ",") + "}"
	}
}

// Matcher holds compiled include/exclude patterns.
type Matcher struct {
	include string
	exclude string
}

// NewMatcher builds a matcher. An empty include set matches every file.
// Invalid patterns are reported with doublestar.ErrBadPattern.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	m := &Matcher{
		include: JoinGlobs(include),
		exclude: JoinGlobs(exclude),
	}
	if m.include == "" {
		m.include = DefaultInclude
	}

	if !doublestar.ValidatePattern(m.include) {
		return nil, doublestar.ErrBadPattern
	}
	if m.exclude != "" && !doublestar.ValidatePattern(m.exclude) {
		return nil, doublestar.ErrBadPattern
	}
	return m, nil
}

// Include returns the compound include pattern.
func (m *Matcher) Include() string { return m.include }

// Exclude returns the compound exclude pattern, "" when nothing is excluded.
func (m *Matcher) Exclude() string { return m.exclude }

// Match reports whether path matches include and not exclude.
func (m *Matcher) Match(path string) bool {
	name := Normalize(path)
	if name == "" {
		return false
	}

	if ok, _ := doublestar.Match(m.include, name); !ok {
		return false
	}
	if m.exclude == "" {
		return true
	}
	excluded, _ := doublestar.Match(m.exclude, name)
	return !excluded
}

// Excluded reports whether path matches the exclude set only. Directory
// walkers use it to prune whole subtrees.
func (m *Matcher) Excluded(path string) bool {
	if m.exclude == "" {
		return false
	}
	name := Normalize(path)
	if ok, _ := doublestar.Match(m.exclude, name); ok {
		return true
	}
	// "**/dist/**" should prune the "dist" directory itself.
	ok, _ := doublestar.Match(m.exclude, name+"/")
	return ok
}

// IsInScope reports whether path is matched by at least one include glob
// and by no exclude glob. Malformed pattern sets put nothing in scope.
func IsInScope(path string, include, exclude []string) bool {
	m, err := NewMatcher(include, exclude)
	if err != nil {
		return false
	}
	return m.Match(path)
}

// Normalize converts path to the slash-separated, root-less form the
// patterns are matched against.
func Normalize(path string) string {
	name := filepath.ToSlash(path)
	name = strings.ReplaceAll(name, "\\", "/")
	if vol := filepath.VolumeName(path); vol != "" {
		name = strings.TrimPrefix(name, filepath.ToSlash(vol))
	}
	return strings.TrimLeft(name, "/")
}
