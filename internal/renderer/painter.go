package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dshills/veco/internal/document"
)

// RulerGlyph marks a decorated line in the ruler column.
const RulerGlyph = "▐"

// Painter renders decorated documents as ANSI text.
type Painter struct {
	w           io.Writer
	r           *lipgloss.Renderer
	lineNumbers bool
	gutter      lipgloss.Style
}

// PainterOption configures a Painter.
type PainterOption func(*Painter)

// WithColorProfile forces a color profile instead of detecting one from
// the output.
func WithColorProfile(p termenv.Profile) PainterOption {
	return func(pt *Painter) {
		pt.r.SetColorProfile(p)
	}
}

// WithLineNumbers toggles the line number gutter.
func WithLineNumbers(on bool) PainterOption {
	return func(pt *Painter) {
		pt.lineNumbers = on
	}
}

// NewPainter creates a painter writing to w.
func NewPainter(w io.Writer, opts ...PainterOption) *Painter {
	p := &Painter{
		w:           w,
		r:           lipgloss.NewRenderer(w),
		lineNumbers: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.gutter = p.r.NewStyle().Faint(true)
	return p
}

// RenderLine styles text with spans, which may overlap.
func (p *Painter) RenderLine(text string, spans []Span) string {
	runes := []rune(text)
	runs := Flatten(spans, len(runes))
	if len(runs) == 0 {
		return text
	}

	var b strings.Builder
	pos := 0
	for _, run := range runs {
		b.WriteString(string(runes[pos:run.Start]))
		b.WriteString(run.Style.ToLipgloss(p.r).Render(string(runes[run.Start:run.End])))
		pos = run.End
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

// RenderDocument renders every line of doc with the decorations painted on
// surface, one output line per document line.
func (p *Painter) RenderDocument(doc document.Document, surface *Surface) string {
	marks := surface.RulerMarks()
	width := len(fmt.Sprint(doc.LineCount()))

	var b strings.Builder
	for i := 0; i < doc.LineCount(); i++ {
		text := doc.LineAt(i)
		if p.lineNumbers {
			b.WriteString(p.gutter.Render(fmt.Sprintf("%*d ", width, i+1)))
			if c, ok := marks[i]; ok {
				b.WriteString(p.r.NewStyle().Foreground(c.ToLipgloss()).Render(RulerGlyph))
			} else {
				b.WriteString(" ")
			}
			b.WriteString(" ")
		}
		b.WriteString(p.RenderLine(text, surface.LineSpans(i, document.RuneLen(text))))
		b.WriteByte('\n')
	}
	return b.String()
}

// Paint writes RenderDocument's output.
func (p *Painter) Paint(doc document.Document, surface *Surface) error {
	_, err := io.WriteString(p.w, p.RenderDocument(doc, surface))
	return err
}
