package highlight

import (
	"strings"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/diagnostic"
)

// Mode is how matches are produced.
type Mode int

const (
	// ModeKeyword matches the assembled keyword map.
	ModeKeyword Mode = iota
	// ModeRegex matches a user override pattern with one shared style.
	ModeRegex
)

func (m Mode) String() string {
	if m == ModeRegex {
		return "regex"
	}
	return "keyword"
}

// KeywordStyle is one assembled keyword.
type KeywordStyle struct {
	// Text is the key, upper-cased when matching is case-insensitive.
	Text string
	// HasRegex is set when the keyword declared a custom pattern.
	HasRegex bool
	// Regex is the declared pattern; when empty the key itself is used.
	Regex    string
	Severity diagnostic.Severity
	// Style is the merged visual style: built-in default style, user
	// default style, built-in keyword style, declared style.
	Style config.Style
}

// PatternSource returns the fragment this keyword contributes to the
// composite pattern.
func (k KeywordStyle) PatternSource(rewrite func(string) string) string {
	if !k.HasRegex {
		return EscapeRegExp(k.Text)
	}
	src := k.Regex
	if src == "" {
		src = k.Text
	}
	return rewrite(src)
}

// Assembly is the result of one keyword assembly: the keyword map in
// declaration order and the pattern compiled from it.
type Assembly struct {
	Mode          Mode
	CaseSensitive bool
	// Keys lists the assembled keys: declared keywords first, then the
	// built-ins that were not declared or subsumed.
	Keys     []string
	Keywords map[string]KeywordStyle
	// RegexStyle is the shared decoration style in regex mode.
	RegexStyle config.Style
	Pattern    *Pattern
}

type assembleOptions struct {
	rewrite  func(string) string
	builtins []config.Structured
}

// AssembleOption configures Assemble.
type AssembleOption func(*assembleOptions)

// WithLegacyGroupRewrite rewrites custom pattern groups without relying on
// lookbehind.
func WithLegacyGroupRewrite() AssembleOption {
	return func(o *assembleOptions) {
		o.rewrite = RewriteGroupsLegacy
	}
}

// WithBuiltins replaces the built-in keyword set.
func WithBuiltins(builtins []config.Structured) AssembleOption {
	return func(o *assembleOptions) {
		o.builtins = builtins
	}
}

// Assemble derives the keyword map and pattern from cfg. A non-blank
// override pattern selects regex mode and ignores the keyword list.
func Assemble(cfg config.Highlight, opts ...AssembleOption) (*Assembly, error) {
	o := assembleOptions{
		rewrite:  RewriteGroups,
		builtins: config.BuiltinKeywords(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	base := config.BuiltinDefaultStyle().Merge(cfg.DefaultStyle)

	if strings.TrimSpace(cfg.KeywordsPattern) != "" {
		p, err := CompileOverride(cfg.KeywordsPattern, cfg.IsCaseSensitive)
		if err != nil {
			return nil, err
		}
		return &Assembly{
			Mode:          ModeRegex,
			CaseSensitive: cfg.IsCaseSensitive,
			Keywords:      map[string]KeywordStyle{},
			RegexStyle:    base.Merge(config.Style{"overviewRulerLane": config.RulerLaneRight}),
			Pattern:       p,
		}, nil
	}

	a := &Assembly{
		Mode:          ModeKeyword,
		CaseSensitive: cfg.IsCaseSensitive,
		Keywords:      make(map[string]KeywordStyle),
	}

	builtins := make(map[string]config.Structured, len(o.builtins))
	for _, b := range o.builtins {
		builtins[b.Text] = b
	}

	var fragments []string
	for _, kw := range cfg.Keywords {
		declared := config.AsStructured(kw)
		key := declared.Text
		if key == "" {
			continue
		}
		if !cfg.IsCaseSensitive {
			key = strings.ToUpper(key)
		}

		style := declared.Style
		severity := declared.Severity
		if b, ok := builtins[key]; ok {
			style = b.Style.Merge(style)
			if severity == nil {
				severity = b.Severity
			}
		}

		ks := KeywordStyle{
			Text:     key,
			Severity: diagnostic.SeverityNone,
			Style:    base.Merge(style),
		}
		if severity != nil {
			ks.Severity = *severity
		}
		if declared.Regex != nil {
			ks.HasRegex = true
			ks.Regex = declared.Regex.Pattern
			if ks.Regex != "" {
				fragments = append(fragments, ks.Regex)
			} else {
				fragments = append(fragments, key)
			}
		}
		a.put(ks)
	}

	// Built-ins stay active unless declared, or unless the declared custom
	// fragments match the built-in key string itself.
	var subsumes *Pattern
	if len(fragments) > 0 {
		joined := strings.Join(fragments, "|")
		p, err := CompileOverride(joined, true)
		if err != nil {
			return nil, err
		}
		subsumes = p
	}
	for _, b := range o.builtins {
		if subsumes != nil {
			if matched, err := subsumes.re.MatchString(b.Text); err != nil || matched {
				continue
			}
		}
		if _, ok := a.Keywords[b.Text]; ok {
			continue
		}
		sev := diagnostic.SeverityNone
		if b.Severity != nil {
			sev = *b.Severity
		}
		a.put(KeywordStyle{Text: b.Text, Severity: sev, Style: base.Merge(b.Style)})
	}

	alts := make([]Alternative, len(a.Keys))
	for i, key := range a.Keys {
		alts[i] = Alternative{Key: key, Source: a.Keywords[key].PatternSource(o.rewrite)}
	}
	p, err := CompileComposite(alts, cfg.IsCaseSensitive)
	if err != nil {
		return nil, err
	}
	a.Pattern = p
	return a, nil
}

// put stores ks; a repeated key keeps its first position.
func (a *Assembly) put(ks KeywordStyle) {
	if _, ok := a.Keywords[ks.Text]; !ok {
		a.Keys = append(a.Keys, ks.Text)
	}
	a.Keywords[ks.Text] = ks
}

// Keyword returns the assembled keyword for key.
func (a *Assembly) Keyword(key string) (KeywordStyle, bool) {
	ks, ok := a.Keywords[key]
	return ks, ok
}

// DecorationStyle returns the style a decoration type for key is created
// with: ruler lane right, the keyword's style, and the background color as
// ruler color when none is set. In regex mode every key shares RegexStyle.
func (a *Assembly) DecorationStyle(key string) config.Style {
	if a.Mode == ModeRegex {
		return a.RegexStyle.Clone()
	}
	style := config.Style{"overviewRulerLane": config.RulerLaneRight}.Merge(a.Keywords[key].Style)
	if !style.Has("overviewRulerColor") {
		if bg, ok := style["backgroundColor"]; ok {
			style["overviewRulerColor"] = bg
		}
	}
	return style
}

// MatchKey returns the key a match is recorded under. In regex mode that
// is the matched text, upper-cased when matching is case-insensitive.
func (a *Assembly) MatchKey(m Match) string {
	if a.Mode == ModeKeyword {
		return m.Key
	}
	if !a.CaseSensitive {
		return strings.ToUpper(m.Text)
	}
	return m.Text
}

// SearchAll is the quick pick entry that searches every keyword.
const SearchAll = "ALL"

// SearchPattern returns the pattern a workspace search for key uses:
// the full pattern for SearchAll, otherwise the key matched literally.
func (a *Assembly) SearchPattern(key string) (*Pattern, error) {
	if key == SearchAll || a.Mode == ModeRegex {
		return a.Pattern, nil
	}
	return CompileLiteral(key, key, a.CaseSensitive)
}

// Equal reports whether two assemblies have the same keys, keywords and
// pattern.
func (a *Assembly) Equal(b *Assembly) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Mode != b.Mode || a.CaseSensitive != b.CaseSensitive || len(a.Keys) != len(b.Keys) {
		return false
	}
	if a.Pattern.String() != b.Pattern.String() || !a.RegexStyle.Equal(b.RegexStyle) {
		return false
	}
	for i, key := range a.Keys {
		if b.Keys[i] != key {
			return false
		}
		x, y := a.Keywords[key], b.Keywords[key]
		if x.HasRegex != y.HasRegex || x.Regex != y.Regex || x.Severity != y.Severity || !x.Style.Equal(y.Style) {
			return false
		}
	}
	return true
}
