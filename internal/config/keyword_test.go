package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/veco/internal/diagnostic"
)

func TestParseKeywords_Mixed(t *testing.T) {
	raw := []any{
		"HACK:",
		map[string]any{
			"text":               "TODO:",
			"diagnosticseverity": "warning",
			"backgroundcolor":    "#ffc53d",
		},
		map[string]any{
			"text":  "TICKET",
			"regex": map[string]any{"pattern": `TICKET-\d+`},
		},
	}

	keywords, err := ParseKeywords(raw)
	require.NoError(t, err)
	require.Len(t, keywords, 3)

	assert.Equal(t, Literal("HACK:"), keywords[0])

	todo, ok := keywords[1].(Structured)
	require.True(t, ok)
	assert.Equal(t, "TODO:", todo.Text)
	require.NotNil(t, todo.Severity)
	assert.Equal(t, diagnostic.SeverityWarning, *todo.Severity)
	assert.Equal(t, "#ffc53d", todo.Style.BackgroundColor())
	assert.Nil(t, todo.Regex)

	ticket := keywords[2].(Structured)
	require.NotNil(t, ticket.Regex)
	assert.Equal(t, `TICKET-\d+`, ticket.Regex.Pattern)
	assert.Nil(t, ticket.Severity)
	assert.Nil(t, ticket.Style)
}

func TestParseKeywords_Shapes(t *testing.T) {
	kws, err := ParseKeywords([]string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, []Keyword{Literal("A"), Literal("B")}, kws)

	kws, err = ParseKeywords(nil)
	require.NoError(t, err)
	assert.Empty(t, kws)

	kws, err = ParseKeywords([]any{map[any]any{"text": "X", "regex": "X+"}})
	require.NoError(t, err)
	assert.Equal(t, "X+", kws[0].(Structured).Regex.Pattern)
}

func TestParseKeywords_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"not a list", "TODO:"},
		{"bad entry", []any{42}},
		{"bad text", []any{map[string]any{"text": 1}}},
		{"bad severity", []any{map[string]any{"text": "A", "diagnosticSeverity": "fatal"}}},
		{"bad regex", []any{map[string]any{"text": "A", "regex": 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKeywords(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidValue))
		})
	}
}

func TestAsStructured(t *testing.T) {
	assert.Equal(t, Structured{Text: "A"}, AsStructured(Literal("A")))
	s := Structured{Text: "B", Regex: &Regex{Pattern: "b"}}
	assert.Equal(t, s, AsStructured(s))
	assert.Equal(t, s, AsStructured(&s))
}

func TestEncodeKeywords_RoundTrip(t *testing.T) {
	in := []Keyword{
		Literal("HACK:"),
		Structured{
			Text:     "TODO:",
			Regex:    &Regex{Pattern: "TODO:?"},
			Severity: SeverityOf(diagnostic.SeverityHint),
			Style:    Style{"color": "#fff"},
		},
	}

	out, err := ParseKeywords(EncodeKeywords(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
