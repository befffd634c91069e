package renderer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/veco/internal/config"
)

// Attribute represents text attributes (bold, italic, etc.).
type Attribute uint16

// Text attribute flags.
const (
	AttrNone          Attribute = 0
	AttrBold          Attribute = 1 << iota
	AttrDim                     // Faint/dim text
	AttrItalic                  // Italic text
	AttrUnderline               // Underlined text
	AttrStrikethrough           // Strikethrough text
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Style is a decoration resolved to terminal terms.
type Style struct {
	Foreground Color
	Background Color
	// Ruler is the mark drawn in the overview ruler column.
	Ruler      Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{
		Foreground: ColorDefault,
		Background: ColorDefault,
		Ruler:      ColorDefault,
	}
}

// FromDecoration resolves decoration attributes (color, backgroundColor,
// overviewRulerColor, fontWeight, fontStyle, textDecoration, opacity).
// Attributes a terminal cannot show are ignored. Unparsable colors are
// reported together and left at their default.
func FromDecoration(d config.Style) (Style, error) {
	s := DefaultStyle()
	var errs []error

	color := func(key string) Color {
		c, err := ParseColor(d.String(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return ColorDefault
		}
		return c
	}

	s.Background = color("backgroundColor").Over(ColorBlack)
	s.Foreground = color("color").Over(s.Background)
	s.Ruler = color("overviewRulerColor").Over(ColorBlack)

	switch w := strings.ToLower(d.String("fontWeight")); w {
	case "bold", "bolder":
		s.Attributes |= AttrBold
	case "lighter":
		s.Attributes |= AttrDim
	default:
		if n, err := strconv.Atoi(w); err == nil && n >= 600 {
			s.Attributes |= AttrBold
		}
	}
	if strings.EqualFold(d.String("fontStyle"), "italic") {
		s.Attributes |= AttrItalic
	}
	deco := strings.ToLower(d.String("textDecoration"))
	if strings.Contains(deco, "underline") {
		s.Attributes |= AttrUnderline
	}
	if strings.Contains(deco, "line-through") {
		s.Attributes |= AttrStrikethrough
	}
	if o, err := strconv.ParseFloat(d.String("opacity"), 64); err == nil && o < 0.5 {
		s.Attributes |= AttrDim
	}

	return s, errors.Join(errs...)
}

// Equals returns true if two styles are identical.
func (s Style) Equals(other Style) bool {
	return s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background) &&
		s.Ruler.Equals(other.Ruler) &&
		s.Attributes == other.Attributes
}

// IsDefault returns true if this is the default style.
func (s Style) IsDefault() bool {
	return s.Equals(DefaultStyle())
}

// ToTcell converts s to a tcell style.
func (s Style) ToTcell() tcell.Style {
	ts := tcell.StyleDefault.
		Foreground(s.Foreground.ToTcell()).
		Background(s.Background.ToTcell())
	if s.Attributes.Has(AttrBold) {
		ts = ts.Bold(true)
	}
	if s.Attributes.Has(AttrDim) {
		ts = ts.Dim(true)
	}
	if s.Attributes.Has(AttrItalic) {
		ts = ts.Italic(true)
	}
	if s.Attributes.Has(AttrUnderline) {
		ts = ts.Underline(true)
	}
	if s.Attributes.Has(AttrStrikethrough) {
		ts = ts.StrikeThrough(true)
	}
	return ts
}

// ToLipgloss converts s to a lipgloss style bound to r.
func (s Style) ToLipgloss(r *lipgloss.Renderer) lipgloss.Style {
	ls := r.NewStyle().
		Foreground(s.Foreground.ToLipgloss()).
		Background(s.Background.ToLipgloss()).
		Bold(s.Attributes.Has(AttrBold)).
		Faint(s.Attributes.Has(AttrDim)).
		Italic(s.Attributes.Has(AttrItalic)).
		Underline(s.Attributes.Has(AttrUnderline)).
		Strikethrough(s.Attributes.Has(AttrStrikethrough))
	return ls
}

// Span is a styled half-open rune range [Start, End) within one line.
type Span struct {
	Start, End int
	Style      Style
}

// Len returns the number of runes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether col falls in the span.
func (s Span) Contains(col int) bool {
	return col >= s.Start && col < s.End
}
