package highlight

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single pattern evaluation. User patterns
// can backtrack catastrophically.
const DefaultMatchTimeout = 2 * time.Second

const sentinelPrefix = "veco"

var escapeRegExp = regexp.MustCompile(`[-/\\^$*+?.()|[\]{}]`)

// EscapeRegExp escapes every regular expression metacharacter in s so it
// matches literally.
func EscapeRegExp(s string) string {
	return escapeRegExp.ReplaceAllString(s, `\$0`)
}

var (
	groupRewrite = regexp2.MustCompile(`(?<!\\)(\()([^?]\w*(?:\\+\w)*)(\))?`, regexp2.None)

	legacyLookbehind = regexp2.MustCompile(`\(\?<[=|!][^)]*\)`, regexp2.None)
	legacyGroup      = regexp2.MustCompile(`((?:[^\\]{1}|^)(?:(?:[\\]{2})+)?)(\((?!\?[:|=|!]))([^)]*)(\))`, regexp2.None)
)

// RewriteGroups turns the capturing groups of a user pattern into
// non-capturing ones. Groups that already start with "(?" (non-capturing,
// lookaround, named) are left alone. The rewrite is repeated until stable
// so nested groups are covered too.
func RewriteGroups(pattern string) string {
	return rewriteFixpoint(pattern, func(s string) (string, error) {
		return groupRewrite.Replace(s, "$1?:$2$3", -1, -1)
	})
}

// RewriteGroupsLegacy is the rewrite for engines without lookbehind: it
// drops lookbehind assertions and makes the remaining groups
// non-capturing.
func RewriteGroupsLegacy(pattern string) string {
	out, err := legacyLookbehind.Replace(pattern, "", -1, -1)
	if err != nil {
		return pattern
	}
	return rewriteFixpoint(out, func(s string) (string, error) {
		return legacyGroup.Replace(s, "$1$2?:$3$4", -1, -1)
	})
}

func rewriteFixpoint(s string, step func(string) (string, error)) string {
	for i := 0; i <= len(s); i++ {
		next, err := step(s)
		if err != nil || next == s {
			return s
		}
		s = next
	}
	return s
}

// Alternative is one keyword's branch of a composite pattern.
type Alternative struct {
	Key    string
	Source string
}

// Match is one pattern match. Offsets count runes.
type Match struct {
	// Key is the keyword whose alternative matched; empty for override
	// patterns.
	Key    string
	Index  int
	Length int
	Text   string
}

// End returns the rune offset just past the match.
func (m Match) End() int {
	return m.Index + m.Length
}

// Pattern is a compiled keyword pattern. Composite patterns wrap every
// alternative in a named sentinel group, so a match resolves to its keyword
// by which sentinel participated rather than by group position.
type Pattern struct {
	re            *regexp2.Regexp
	source        string
	keys          []string
	caseSensitive bool
}

func compile(source string, caseSensitive bool) (*regexp2.Regexp, error) {
	opts := regexp2.None
	if !caseSensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = DefaultMatchTimeout
	return re, nil
}

func sentinel(i int) string {
	return sentinelPrefix + strconv.Itoa(i)
}

// CompileComposite ORs alts into one pattern. Each Source must already be
// escaped or rewritten; it is used verbatim inside its sentinel group. A
// compile failure is reported against the first alternative that does not
// compile on its own.
func CompileComposite(alts []Alternative, caseSensitive bool) (*Pattern, error) {
	parts := make([]string, len(alts))
	keys := make([]string, len(alts))
	for i, alt := range alts {
		parts[i] = "(?<" + sentinel(i) + ">" + alt.Source + ")"
		keys[i] = alt.Key
	}
	source := strings.Join(parts, "|")
	if len(alts) == 0 {
		// Nothing to highlight: a pattern that never matches.
		source = "(?!)"
	}

	re, err := compile(source, caseSensitive)
	if err != nil {
		for _, alt := range alts {
			if _, altErr := compile(alt.Source, caseSensitive); altErr != nil {
				return nil, &PatternError{Key: alt.Key, Pattern: alt.Source, Err: altErr}
			}
		}
		return nil, &PatternError{Pattern: source, Err: err}
	}
	return &Pattern{re: re, source: source, keys: keys, caseSensitive: caseSensitive}, nil
}

// CompileOverride compiles a user override pattern as is.
func CompileOverride(source string, caseSensitive bool) (*Pattern, error) {
	re, err := compile(source, caseSensitive)
	if err != nil {
		return nil, &PatternError{Pattern: source, Err: err}
	}
	return &Pattern{re: re, source: source, caseSensitive: caseSensitive}, nil
}

// CompileLiteral compiles a pattern matching text literally, resolving to
// key.
func CompileLiteral(key, text string, caseSensitive bool) (*Pattern, error) {
	return CompileComposite([]Alternative{{Key: key, Source: EscapeRegExp(text)}}, caseSensitive)
}

// String returns the compiled source.
func (p *Pattern) String() string {
	return p.source
}

// Keys returns the keyword of each alternative in pattern order.
func (p *Pattern) Keys() []string {
	return append([]string(nil), p.keys...)
}

// CaseSensitive reports the pattern's case flag.
func (p *Pattern) CaseSensitive() bool {
	return p.caseSensitive
}

// Composite reports whether matches resolve to keywords.
func (p *Pattern) Composite() bool {
	return p.keys != nil
}

// CaptureGroups returns the number of capturing groups, excluding the
// whole-match group.
func (p *Pattern) CaptureGroups() int {
	return len(p.re.GetGroupNumbers()) - 1
}

// FindAll returns every non-empty match in text, left to right.
func (p *Pattern) FindAll(text string) ([]Match, error) {
	var out []Match
	m, err := p.re.FindStringMatch(text)
	for ; m != nil && err == nil; m, err = p.re.FindNextMatch(m) {
		if m.Length == 0 {
			continue
		}
		out = append(out, p.toMatch(m))
	}
	if err != nil {
		return out, fmt.Errorf("match %q: %w", p.source, err)
	}
	return out, nil
}

// FindFirst returns the first non-empty match in text.
func (p *Pattern) FindFirst(text string) (Match, bool, error) {
	m, err := p.re.FindStringMatch(text)
	for ; m != nil && err == nil; m, err = p.re.FindNextMatch(m) {
		if m.Length > 0 {
			return p.toMatch(m), true, nil
		}
	}
	if err != nil {
		return Match{}, false, fmt.Errorf("match %q: %w", p.source, err)
	}
	return Match{}, false, nil
}

func (p *Pattern) toMatch(m *regexp2.Match) Match {
	return Match{
		Key:    p.resolve(m),
		Index:  m.Index,
		Length: m.Length,
		Text:   m.String(),
	}
}

func (p *Pattern) resolve(m *regexp2.Match) string {
	for i, key := range p.keys {
		if g := m.GroupByName(sentinel(i)); g != nil && len(g.Captures) > 0 {
			return key
		}
	}
	return ""
}
