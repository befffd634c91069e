package config

import (
	"fmt"
	"strings"

	"github.com/dshills/veco/internal/diagnostic"
)

// Keyword is one declared keyword definition: either a Literal or a
// Structured entry. The set of variants is closed.
type Keyword interface {
	// KeywordText returns the declared marker text.
	KeywordText() string
	isKeyword()
}

// Literal is a keyword declared as a bare string.
type Literal string

// KeywordText implements Keyword.
func (l Literal) KeywordText() string { return string(l) }

func (Literal) isKeyword() {}

// Regex carries a custom pattern overriding literal matching.
type Regex struct {
	Pattern string
}

// Structured is a keyword declared with optional pattern, severity and style.
type Structured struct {
	Text string
	// Regex is nil when the keyword matches its text literally.
	Regex *Regex
	// Severity is nil when not declared.
	Severity *diagnostic.Severity
	Style    Style
}

// KeywordText implements Keyword.
func (s Structured) KeywordText() string { return s.Text }

func (Structured) isKeyword() {}

// SeverityOf returns a pointer to sev for Structured literals.
func SeverityOf(sev diagnostic.Severity) *diagnostic.Severity {
	return &sev
}

// AsStructured normalizes any keyword to its structured form.
func AsStructured(kw Keyword) Structured {
	switch k := kw.(type) {
	case Structured:
		return k
	case *Structured:
		if k == nil {
			return Structured{}
		}
		return *k
	case Literal:
		return Structured{Text: string(k)}
	default:
		return Structured{Text: kw.KeywordText()}
	}
}

func cloneKeyword(kw Keyword) Keyword {
	s, ok := kw.(Structured)
	if !ok {
		return kw
	}
	if s.Regex != nil {
		r := *s.Regex
		s.Regex = &r
	}
	if s.Severity != nil {
		sev := *s.Severity
		s.Severity = &sev
	}
	s.Style = s.Style.Clone()
	return s
}

// Reserved attribute names of a structured keyword. Everything else is style.
const (
	fieldText     = "text"
	fieldRegex    = "regex"
	fieldPattern  = "pattern"
	fieldSeverity = "diagnosticseverity"
)

// ParseKeywords normalizes a raw "keywords" settings value (a list of strings
// and maps) into typed keywords. A nil value yields no keywords.
func ParseKeywords(raw any) ([]Keyword, error) {
	if raw == nil {
		return nil, nil
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	case []map[string]any:
		items = make([]any, len(v))
		for i, m := range v {
			items[i] = m
		}
	default:
		return nil, fmt.Errorf("%w: keywords must be a list, got %T", ErrInvalidValue, raw)
	}

	keywords := make([]Keyword, 0, len(items))
	for i, item := range items {
		kw, err := ParseKeyword(item)
		if err != nil {
			return nil, fmt.Errorf("keywords[%d]: %w", i, err)
		}
		keywords = append(keywords, kw)
	}
	return keywords, nil
}

// ParseKeyword normalizes a single raw keyword entry.
func ParseKeyword(raw any) (Keyword, error) {
	switch v := raw.(type) {
	case string:
		return Literal(v), nil
	case Keyword:
		return v, nil
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = item
		}
		return parseStructured(m)
	case map[string]any:
		return parseStructured(v)
	default:
		return nil, fmt.Errorf("%w: keyword must be a string or a map, got %T", ErrInvalidValue, raw)
	}
}

func parseStructured(m map[string]any) (Keyword, error) {
	var kw Structured
	style := make(map[string]any)

	for k, v := range m {
		switch strings.ToLower(k) {
		case fieldText:
			s, ok := v.(string)
			if !ok && v != nil {
				return nil, fmt.Errorf("%w: text must be a string, got %T", ErrInvalidValue, v)
			}
			kw.Text = s
		case fieldRegex:
			r, err := parseRegex(v)
			if err != nil {
				return nil, err
			}
			kw.Regex = r
		case fieldSeverity:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: diagnosticSeverity must be a string, got %T", ErrInvalidValue, v)
			}
			sev, err := diagnostic.ParseSeverity(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			kw.Severity = &sev
		default:
			style[k] = v
		}
	}

	if len(style) > 0 {
		kw.Style = NewStyle(style)
	}
	return kw, nil
}

func parseRegex(v any) (*Regex, error) {
	switch r := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &Regex{Pattern: r}, nil
	case map[any]any:
		for k, item := range r {
			if strings.EqualFold(fmt.Sprint(k), fieldPattern) {
				return parseRegex(item)
			}
		}
		return &Regex{}, nil
	case map[string]any:
		for k, item := range r {
			if strings.EqualFold(k, fieldPattern) {
				return parseRegex(item)
			}
		}
		return &Regex{}, nil
	default:
		return nil, fmt.Errorf("%w: regex must be a map with a pattern, got %T", ErrInvalidValue, v)
	}
}

// EncodeKeywords converts keywords back to the raw settings shape.
func EncodeKeywords(keywords []Keyword) []any {
	out := make([]any, 0, len(keywords))
	for _, kw := range keywords {
		switch k := kw.(type) {
		case Literal:
			out = append(out, string(k))
		default:
			s := AsStructured(kw)
			m := make(map[string]any, len(s.Style)+3)
			for key, v := range s.Style {
				m[key] = v
			}
			m["text"] = s.Text
			if s.Regex != nil {
				m["regex"] = map[string]any{"pattern": s.Regex.Pattern}
			}
			if s.Severity != nil {
				m["diagnosticSeverity"] = s.Severity.String()
			}
			out = append(out, m)
		}
	}
	return out
}
