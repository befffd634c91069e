// Package document provides the text document model shared by the scanners:
// an immutable snapshot of a file with line access and offset/position conversion.
//
// Offsets and characters are counted in runes, which is what the keyword
// pattern engine reports for match positions.
package document

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Position is a zero-based line/character location.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// String returns "line:character" using one-based numbers.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// Before reports whether p comes strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Empty reports whether the range covers no text.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Document is a read-only view of a text buffer.
type Document interface {
	// URI identifies the document (file:// for files on disk).
	URI() string
	// FileName is the local path of the document.
	FileName() string
	// Text returns the full content.
	Text() string
	// LineCount returns the number of lines (at least one).
	LineCount() int
	// LineAt returns the text of line n without its line terminator.
	LineAt(n int) string
	// PositionAt converts a rune offset into a position.
	PositionAt(offset int) Position
	// OffsetAt converts a position into a rune offset.
	OffsetAt(pos Position) int
}

// TextDocument is an immutable Document backed by a string.
type TextDocument struct {
	uri      string
	fileName string
	content  string
	lines    []line
}

type line struct {
	byteOffset int
	runeOffset int
	byteLen    int // excluding the terminator
	runeLen    int
}

// New creates a document snapshot.
func New(uri, fileName, content string) *TextDocument {
	d := &TextDocument{uri: uri, fileName: fileName, content: content}
	d.index()
	return d
}

var _ Document = (*TextDocument)(nil)

func (d *TextDocument) index() {
	runeOffset := 0
	lineStart := 0
	runeLineStart := 0

	for i, r := range d.content {
		if r == '\n' {
			d.lines = append(d.lines, line{
				byteOffset: lineStart,
				runeOffset: runeLineStart,
				byteLen:    i - lineStart,
				runeLen:    runeOffset - runeLineStart,
			})
			lineStart = i + 1
			runeLineStart = runeOffset + 1
		}
		runeOffset++
	}

	d.lines = append(d.lines, line{
		byteOffset: lineStart,
		runeOffset: runeLineStart,
		byteLen:    len(d.content) - lineStart,
		runeLen:    runeOffset - runeLineStart,
	})
}

// URI returns the document URI.
func (d *TextDocument) URI() string { return d.uri }

// FileName returns the local path.
func (d *TextDocument) FileName() string { return d.fileName }

// Text returns the content.
func (d *TextDocument) Text() string { return d.content }

// LineCount returns the number of lines.
func (d *TextDocument) LineCount() int { return len(d.lines) }

// LineAt returns line n without "\n" or "\r\n". Out-of-range lines are empty.
func (d *TextDocument) LineAt(n int) string {
	if n < 0 || n >= len(d.lines) {
		return ""
	}
	l := d.lines[n]
	return strings.TrimSuffix(d.content[l.byteOffset:l.byteOffset+l.byteLen], "\r")
}

// PositionAt converts a rune offset to a position, clamping to the document.
func (d *TextDocument) PositionAt(offset int) Position {
	if offset <= 0 {
		return Position{}
	}

	n := sort.Search(len(d.lines), func(i int) bool {
		return d.lines[i].runeOffset > offset
	}) - 1
	if n < 0 {
		n = 0
	}

	l := d.lines[n]
	char := offset - l.runeOffset
	if char > l.runeLen {
		char = l.runeLen
	}
	return Position{Line: n, Character: char}
}

// OffsetAt converts a position to a rune offset, clamping to the document.
func (d *TextDocument) OffsetAt(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(d.lines) {
		last := d.lines[len(d.lines)-1]
		return last.runeOffset + last.runeLen
	}
	l := d.lines[pos.Line]
	char := pos.Character
	if char < 0 {
		char = 0
	}
	if char > l.runeLen {
		char = l.runeLen
	}
	return l.runeOffset + char
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// RuneSlice returns the runes of s in [start, end), clamped.
func RuneSlice(s string, start, end int) string {
	r := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start >= end {
		return ""
	}
	return string(r[start:end])
}
