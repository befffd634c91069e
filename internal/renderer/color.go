package renderer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"
)

// Color is a decoration color as written in settings: an RGB value with
// an alpha channel, or the terminal default.
type Color struct {
	R, G, B uint8
	// A is the opacity, 255 being fully opaque.
	A uint8
	// Default indicates the terminal's default color.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// Common colors.
var (
	ColorBlack = Color{R: 0, G: 0, B: 0, A: 255}
	ColorWhite = Color{R: 255, G: 255, B: 255, A: 255}
)

// ColorFromRGB creates an opaque color.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// ColorFromHex parses "#RGB", "#RGBA", "#RRGGBB" or "#RRGGBBAA". The leading
// '#' is optional.
func ColorFromHex(hex string) (Color, error) {
	h := strings.TrimPrefix(hex, "#")

	switch len(h) {
	case 3, 4:
		var sb strings.Builder
		for _, r := range h {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		h = sb.String()
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("invalid hex color length: %s", hex)
	}

	var ch [4]uint8
	ch[3] = 255
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color: %s", hex)
		}
		ch[i] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// ParseColor parses a CSS color: hex notation, rgb()/rgba() functions, or a
// color name. "transparent", "inherit" and the empty string yield
// ColorDefault.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "", s == "transparent", s == "inherit", s == "default":
		return ColorDefault, nil
	case strings.HasPrefix(s, "#"):
		return ColorFromHex(s)
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	}

	tc := tcell.GetColor(s)
	if tc == tcell.ColorDefault {
		return Color{}, fmt.Errorf("unknown color: %s", s)
	}
	r, g, b := tc.RGB()
	if r < 0 {
		return Color{}, fmt.Errorf("unknown color: %s", s)
	}
	return ColorFromRGB(uint8(r), uint8(g), uint8(b)), nil
}

// parseRGBFunc parses rgb(r, g, b) and rgba(r, g, b, a). Channels may be
// integers or percentages; alpha is a fraction or a percentage.
func parseRGBFunc(s string) (Color, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Color{}, fmt.Errorf("invalid color function: %s", s)
	}
	name := strings.TrimSpace(s[:open])
	if name != "rgb" && name != "rgba" {
		return Color{}, fmt.Errorf("invalid color function: %s", s)
	}

	body := s[open+1 : len(s)-1]
	body = strings.ReplaceAll(body, "/", ",")
	var parts []string
	if strings.Contains(body, ",") {
		parts = strings.Split(body, ",")
	} else {
		parts = strings.Fields(body)
	}
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("invalid color function: %s", s)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := parseChannel(strings.TrimSpace(parts[i]), 255)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color function %s: %w", s, err)
		}
		ch[i] = uint8(math.Round(v))
	}

	c := ColorFromRGB(ch[0], ch[1], ch[2])
	if len(parts) == 4 {
		a, err := parseChannel(strings.TrimSpace(parts[3]), 1)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color function %s: %w", s, err)
		}
		c.A = uint8(math.Round(a * 255))
	}
	return c, nil
}

func parseChannel(s string, scale float64) (float64, error) {
	percent := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	if percent {
		v = v / 100 * scale
	}
	return math.Max(0, math.Min(scale, v)), nil
}

// IsDefault returns true if this is the default/transparent color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Opaque reports whether the color has full opacity.
func (c Color) Opaque() bool {
	return !c.Default && c.A == 255
}

// Equals returns true if two colors are equal.
func (c Color) Equals(other Color) bool {
	if c.Default || other.Default {
		return c.Default == other.Default
	}
	return c == other
}

// String returns a string representation of the color.
func (c Color) String() string {
	if c.Default {
		return "default"
	}
	if c.A != 255 {
		return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
	}
	return c.ToHex()
}

// ToHex returns the "#RRGGBB" form, ignoring alpha.
func (c Color) ToHex() string {
	if c.Default {
		return ""
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Lighten returns a lighter version of the color.
// Amount should be 0.0 to 1.0.
func (c Color) Lighten(amount float64) Color {
	if c.Default {
		return c
	}
	return c.Blend(Color{R: 255, G: 255, B: 255, A: c.A}, amount)
}

// Blend mixes two colors. Amount 0.0 = c, 1.0 = other.
func (c Color) Blend(other Color, amount float64) Color {
	if c.Default || other.Default {
		if amount < 0.5 {
			return c
		}
		return other
	}
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a)*(1-amount) + float64(b)*amount))
	}
	return Color{R: mix(c.R, other.R), G: mix(c.G, other.G), B: mix(c.B, other.B), A: mix(c.A, other.A)}
}

// Over composites a translucent color over an opaque backdrop. A default
// backdrop is treated as black.
func (c Color) Over(backdrop Color) Color {
	if c.Default || c.A == 255 {
		return c
	}
	if backdrop.Default {
		backdrop = ColorBlack
	}
	out := backdrop.Blend(Color{R: c.R, G: c.G, B: c.B, A: 255}, float64(c.A)/255)
	out.A = 255
	return out
}

// ToTcell converts the color for a tcell screen.
func (c Color) ToTcell() tcell.Color {
	if c.Default {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// ToLipgloss converts the color for lipgloss rendering.
func (c Color) ToLipgloss() lipgloss.TerminalColor {
	if c.Default {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(c.ToHex())
}
