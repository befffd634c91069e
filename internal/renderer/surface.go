package renderer

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/document"
	"github.com/dshills/veco/internal/log"
)

// ErrDisposed is returned when ranges are set on a released decoration.
var ErrDisposed = errors.New("decoration disposed")

// Decoration is a decoration type created on a Surface. Ranges are attached
// with Surface.SetRanges until the decoration is disposed.
type Decoration struct {
	id      string
	options config.Style
	style   Style
	surface *Surface
}

// ID returns the decoration's unique identifier.
func (d *Decoration) ID() string { return d.id }

// Options returns the decoration attributes it was created with.
func (d *Decoration) Options() config.Style { return d.options.Clone() }

// Style returns the resolved terminal style.
func (d *Decoration) Style() Style { return d.style }

// Dispose releases the decoration and drops its ranges. Disposing twice is
// a no-op.
func (d *Decoration) Dispose() {
	d.surface.dispose(d.id)
}

// Disposed reports whether the decoration has been released.
func (d *Decoration) Disposed() bool {
	return !d.surface.live(d.id)
}

// Surface tracks decoration types and the ranges painted with them over a
// single document view.
type Surface struct {
	mu     sync.RWMutex
	decos  map[string]*Decoration
	ranges map[string][]document.Range
	order  []string
	logger *log.Logger

	created  int
	disposed int
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithSurfaceLogger sets the logger.
func WithSurfaceLogger(l *log.Logger) SurfaceOption {
	return func(s *Surface) {
		s.logger = l
	}
}

// NewSurface creates an empty surface.
func NewSurface(opts ...SurfaceOption) *Surface {
	s := &Surface{
		decos:  make(map[string]*Decoration),
		ranges: make(map[string][]document.Range),
		logger: log.NullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("surface")
	return s
}

// CreateDecoration registers a decoration type. Colors that cannot be
// parsed are logged and fall back to the terminal default.
func (s *Surface) CreateDecoration(options config.Style) *Decoration {
	style, err := FromDecoration(options)
	if err != nil {
		s.logger.Warn("decoration style: %v", err)
	}

	d := &Decoration{
		id:      uuid.NewString(),
		options: options.Clone(),
		style:   style,
		surface: s,
	}

	s.mu.Lock()
	s.decos[d.id] = d
	s.order = append(s.order, d.id)
	s.created++
	s.mu.Unlock()

	s.logger.Debug("created decoration %s", d.id)
	return d
}

// SetRanges replaces the ranges painted with d. An empty list clears them.
func (s *Surface) SetRanges(d *Decoration, ranges []document.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decos[d.id]; !ok {
		return ErrDisposed
	}
	if len(ranges) == 0 {
		delete(s.ranges, d.id)
		return nil
	}
	s.ranges[d.id] = append([]document.Range(nil), ranges...)
	return nil
}

// Ranges returns the ranges currently painted with d.
func (s *Surface) Ranges(d *Decoration) []document.Range {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]document.Range(nil), s.ranges[d.id]...)
}

// Decorations returns the live decorations in creation order.
func (s *Surface) Decorations() []*Decoration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Decoration, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.decos[id])
	}
	return out
}

// Live returns the number of live decorations.
func (s *Surface) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decos)
}

// Stats returns how many decorations were created and disposed over the
// surface's lifetime.
func (s *Surface) Stats() (created, disposed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.created, s.disposed
}

// Clear disposes every decoration.
func (s *Surface) Clear() {
	for _, d := range s.Decorations() {
		d.Dispose()
	}
}

// LineSpans returns the spans painted on line, clipped to lineLen runes,
// in paint order. Later decorations paint over earlier ones.
func (s *Surface) LineSpans(line, lineLen int) []Span {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var spans []Span
	for _, id := range s.order {
		style := s.decos[id].style
		for _, r := range s.ranges[id] {
			if line < r.Start.Line || line > r.End.Line {
				continue
			}
			start, end := 0, lineLen
			if line == r.Start.Line {
				start = r.Start.Character
			}
			if line == r.End.Line {
				end = r.End.Character
			}
			start = max(0, min(start, lineLen))
			end = max(start, min(end, lineLen))
			if start == end {
				continue
			}
			spans = append(spans, Span{Start: start, End: end, Style: style})
		}
	}
	return spans
}

// RulerMarks returns, per line, the ruler color of the last decoration that
// paints on it.
func (s *Surface) RulerMarks() map[int]Color {
	s.mu.RLock()
	defer s.mu.RUnlock()

	marks := make(map[int]Color)
	for _, id := range s.order {
		style := s.decos[id].style
		ruler := style.Ruler
		if ruler.IsDefault() {
			ruler = style.Background
		}
		if ruler.IsDefault() {
			continue
		}
		for _, r := range s.ranges[id] {
			for l := r.Start.Line; l <= r.End.Line; l++ {
				marks[l] = ruler
			}
		}
	}
	return marks
}

func (s *Surface) dispose(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decos[id]; !ok {
		return
	}
	delete(s.decos, id)
	delete(s.ranges, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.disposed++
	s.logger.Debug("disposed decoration %s", id)
}

func (s *Surface) live(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.decos[id]
	return ok
}

// Flatten resolves overlapping spans into ordered, non-overlapping runs
// over a line of lineLen runes. Where spans overlap the later one wins.
// Unstyled gaps are omitted.
func Flatten(spans []Span, lineLen int) []Span {
	if len(spans) == 0 || lineLen <= 0 {
		return nil
	}

	owner := make([]int, lineLen)
	for i := range owner {
		owner[i] = -1
	}
	for i, sp := range spans {
		for c := max(0, sp.Start); c < min(sp.End, lineLen); c++ {
			owner[c] = i
		}
	}

	var out []Span
	for c := 0; c < lineLen; {
		o := owner[c]
		start := c
		for c < lineLen && owner[c] == o {
			c++
		}
		if o >= 0 {
			out = append(out, Span{Start: start, End: c, Style: spans[o].Style})
		}
	}
	return out
}
