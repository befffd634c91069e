package host

import (
	"fmt"
	"io"
	"sync"

	"github.com/dshills/veco/internal/highlight"
)

// Status is a status entry printed as a line whenever it changes while
// shown.
type Status struct {
	mu       sync.Mutex
	out      io.Writer
	text     string
	tooltip  string
	visible  bool
	disposed bool
	onChange func(text string)
}

// StatusOption configures a Status.
type StatusOption func(*Status)

// OnStatusChange registers fn to receive each new text.
func OnStatusChange(fn func(text string)) StatusOption {
	return func(s *Status) {
		s.onChange = fn
	}
}

// NewStatus creates a hidden status entry printing to out. A nil out
// prints nothing.
func NewStatus(out io.Writer, opts ...StatusOption) *Status {
	s := &Status{out: out}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetText implements highlight.StatusIndicator.
func (s *Status) SetText(text string) {
	s.mu.Lock()
	s.text = text
	emit := s.visible && !s.disposed
	fn := s.onChange
	s.mu.Unlock()

	if emit {
		s.print(text)
	}
	if fn != nil {
		fn(text)
	}
}

// SetTooltip implements highlight.StatusIndicator.
func (s *Status) SetTooltip(tooltip string) {
	s.mu.Lock()
	s.tooltip = tooltip
	s.mu.Unlock()
}

// Show implements highlight.StatusIndicator.
func (s *Status) Show() {
	s.mu.Lock()
	if s.visible || s.disposed {
		s.mu.Unlock()
		return
	}
	s.visible = true
	text := s.text
	s.mu.Unlock()
	s.print(text)
}

// Dispose implements highlight.StatusIndicator.
func (s *Status) Dispose() {
	s.mu.Lock()
	s.disposed = true
	s.mu.Unlock()
}

// Text returns the current text.
func (s *Status) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Tooltip returns the current tooltip.
func (s *Status) Tooltip() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip
}

func (s *Status) print(text string) {
	if s.out != nil {
		fmt.Fprintln(s.out, text)
	}
}

// Log is an output panel: lines are buffered and written out by Show.
type Log struct {
	mu       sync.Mutex
	out      io.Writer
	lines    []string
	disposed bool
}

// NewLog creates a log panel writing to out.
func NewLog(out io.Writer) *Log {
	return &Log{out: out}
}

// AppendLine implements highlight.LogSurface.
func (l *Log) AppendLine(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
}

// Clear implements highlight.LogSurface.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
}

// Show implements highlight.LogSurface. Lines already carrying their own
// terminator are written as is.
func (l *Log) Show() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed || l.out == nil {
		return
	}
	for _, line := range l.lines {
		if len(line) > 0 && line[len(line)-1] == '\n' {
			fmt.Fprint(l.out, line)
			continue
		}
		fmt.Fprintln(l.out, line)
	}
}

// Lines returns the buffered lines.
func (l *Log) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Dispose implements highlight.LogSurface.
func (l *Log) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disposed = true
	l.lines = nil
}

var (
	_ highlight.StatusIndicator = (*Status)(nil)
	_ highlight.LogSurface      = (*Log)(nil)
)
