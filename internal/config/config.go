package config

import (
	"github.com/dshills/veco/internal/diagnostic"
)

// Section is the settings section every highlight option lives under.
const Section = "veco.highlight"

// Option keys relative to Section.
const (
	KeyEnabled           = "enabled"
	KeyToggleURI         = "toggleURI"
	KeyIsCaseSensitive   = "isCaseSensitive"
	KeyEnableDiagnostics = "enableDiagnostics"
	KeyMaxFilesForSearch = "maxFilesForSearch"
	KeyDefaultStyle      = "defaultStyle"
	KeyKeywords          = "keywords"
	KeyKeywordsPattern   = "keywordsPattern"
	KeyInclude           = "include"
	KeyExclude           = "exclude"
)

// Keys lists every recognized option key.
var Keys = []string{
	KeyEnabled,
	KeyToggleURI,
	KeyIsCaseSensitive,
	KeyEnableDiagnostics,
	KeyMaxFilesForSearch,
	KeyDefaultStyle,
	KeyKeywords,
	KeyKeywordsPattern,
	KeyInclude,
	KeyExclude,
}

// FullKey returns the dotted settings path of key.
func FullKey(key string) string {
	return Section + "." + key
}

// Highlight is one resolved snapshot of the highlight settings.
type Highlight struct {
	// Enabled is the master switch. Disabling clears every decoration.
	Enabled bool
	// ToggleURI inverts the platform default locator format of the
	// annotation log.
	ToggleURI bool
	// IsCaseSensitive controls key folding and the pattern flags.
	IsCaseSensitive bool
	// EnableDiagnostics emits problem entries during live scans.
	EnableDiagnostics bool
	// MaxFilesForSearch caps the files enumerated per workspace search.
	MaxFilesForSearch int
	// DefaultStyle is merged under built-in and per-keyword styles.
	DefaultStyle Style
	// Keywords are the declared keyword definitions in order.
	Keywords []Keyword
	// KeywordsPattern, when non-blank, replaces keyword assembly entirely.
	KeywordsPattern string
	// Include and Exclude are glob sets scoping the scanned files.
	Include []string
	Exclude []string
}

// Clone returns a deep copy of h.
func (h Highlight) Clone() Highlight {
	out := h
	out.DefaultStyle = h.DefaultStyle.Clone()
	out.Keywords = make([]Keyword, len(h.Keywords))
	for i, kw := range h.Keywords {
		out.Keywords[i] = cloneKeyword(kw)
	}
	out.Include = append([]string(nil), h.Include...)
	out.Exclude = append([]string(nil), h.Exclude...)
	return out
}

// Defaults returns the settings used when no file overrides them.
func Defaults() Highlight {
	builtins := BuiltinKeywords()
	keywords := make([]Keyword, len(builtins))
	for i, kw := range builtins {
		keywords[i] = kw
	}

	return Highlight{
		Enabled:           true,
		ToggleURI:         false,
		IsCaseSensitive:   true,
		EnableDiagnostics: false,
		MaxFilesForSearch: 5120,
		DefaultStyle:      BuiltinDefaultStyle(),
		Keywords:          keywords,
		KeywordsPattern:   "",
		Include:           DefaultInclude(),
		Exclude:           DefaultExclude(),
	}
}

// BuiltinDefaultStyle is the style applied to keywords that declare none.
func BuiltinDefaultStyle() Style {
	return Style{
		"color":           "#2196f3",
		"backgroundColor": "#ffeb3b",
	}
}

// BuiltinKeywords returns the built-in keyword definitions in their fixed order.
func BuiltinKeywords() []Structured {
	return []Structured{
		{
			Text:     "NOTE:",
			Severity: SeverityOf(diagnostic.SeverityInformation),
			Style: Style{
				"color":              "#fff",
				"backgroundColor":    "rgba(27,154,170,1)",
				"overviewRulerColor": "rgba(27,154,170,0.8)",
			},
		},
		{
			Text:     "TODO:",
			Severity: SeverityOf(diagnostic.SeverityWarning),
			Style: Style{
				"color":              "#fff",
				"backgroundColor":    "rgba(255,197,61,1)",
				"overviewRulerColor": "rgba(255,197,61,0.8)",
			},
		},
		{
			Text:     "FIXME:",
			Severity: SeverityOf(diagnostic.SeverityError),
			Style: Style{
				"color":              "#fff",
				"backgroundColor":    "rgba(239,71,110,1)",
				"overviewRulerColor": "rgba(239,71,110,0.8)",
			},
		},
	}
}

// DefaultInclude is the default include glob set.
func DefaultInclude() []string {
	return []string{
		"**/*.js",
		"**/*.jsx",
		"**/*.ts",
		"**/*.tsx",
		"**/*.vue",
		"**/*.svelte",
		"**/*.astro",
		"**/*.html",
		"**/*.php",
		"**/*.css",
		"**/*.scss",
		"**/*.less",
		"**/*.md",
		"**/*.mdx",
		"**/*.json",
	}
}

// DefaultExclude is the default exclude glob set.
func DefaultExclude() []string {
	return []string{
		"**/node_modules/**",
		"**/bower_components/**",
		"**/dev-dist/**",
		"**/dist/**",
		"**/build/**",
		"**/html/**",
		"**/coverage/**",
		"**/out/**",
		"**/.vscode/**",
		"**/.vscode-test/**",
		"**/.github/**",
		"**/_output/**",
		"**/*.min.*",
		"**/*.map",
		"**/.next/**",
	}
}
