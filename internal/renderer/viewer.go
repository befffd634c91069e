package renderer

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/veco/internal/document"
	"github.com/dshills/veco/internal/log"
)

const tabWidth = 4

// Viewer is a read-only full-screen view of one decorated document: line
// numbers, a ruler column, the text, and a status line at the bottom.
type Viewer struct {
	mu      sync.Mutex
	screen  tcell.Screen
	surface *Surface
	doc     document.Document
	top     int
	status  string
	logger  *log.Logger
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithViewerLogger sets the logger.
func WithViewerLogger(l *log.Logger) ViewerOption {
	return func(v *Viewer) {
		v.logger = l
	}
}

// NewViewer creates a viewer drawing surface's decorations on screen. The
// screen is initialized by Init.
func NewViewer(screen tcell.Screen, surface *Surface, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		screen:  screen,
		surface: surface,
		logger:  log.NullLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithComponent("viewer")
	return v
}

// NewTerminalViewer creates a viewer on the controlling terminal.
func NewTerminalViewer(surface *Surface, opts ...ViewerOption) (*Viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewViewer(screen, surface, opts...), nil
}

// Init initializes the screen.
func (v *Viewer) Init() error {
	if err := v.screen.Init(); err != nil {
		return err
	}
	v.screen.HideCursor()
	return nil
}

// Close restores the terminal.
func (v *Viewer) Close() {
	v.screen.Fini()
}

// SetDocument replaces the displayed document, keeping the scroll position
// when it is still in range.
func (v *Viewer) SetDocument(doc document.Document) {
	v.mu.Lock()
	v.doc = doc
	v.top = v.clampTop(v.top)
	v.mu.Unlock()
}

// SetStatus sets the status line text.
func (v *Viewer) SetStatus(text string) {
	v.mu.Lock()
	v.status = text
	v.mu.Unlock()
}

// Status returns the status line text.
func (v *Viewer) Status() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Top returns the first visible line.
func (v *Viewer) Top() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.top
}

// Scroll moves the view by delta lines.
func (v *Viewer) Scroll(delta int) {
	v.mu.Lock()
	v.top = v.clampTop(v.top + delta)
	v.mu.Unlock()
}

func (v *Viewer) clampTop(top int) int {
	if v.doc == nil {
		return 0
	}
	_, h := v.screen.Size()
	maxTop := v.doc.LineCount() - max(1, h-1)
	return max(0, min(top, maxTop))
}

// Refresh asks a running event loop to redraw. Safe to call from any
// goroutine.
func (v *Viewer) Refresh() {
	_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil)) // dropped when the queue is full
}

// Draw renders the current state and shows it.
func (v *Viewer) Draw() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.screen.Clear()
	w, h := v.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}

	body := h - 1
	if v.doc != nil {
		v.drawDocument(w, body)
	}
	v.drawStatus(w, h-1)
	v.screen.Show()
}

func (v *Viewer) drawDocument(w, body int) {
	marks := v.surface.RulerMarks()
	numWidth := len(fmt.Sprint(v.doc.LineCount()))
	gutter := tcell.StyleDefault.Dim(true)

	for row := 0; row < body; row++ {
		line := v.top + row
		if line >= v.doc.LineCount() {
			break
		}

		x := 0
		for _, r := range fmt.Sprintf("%*d ", numWidth, line+1) {
			v.screen.SetContent(x, row, r, nil, gutter)
			x++
		}
		if c, ok := marks[line]; ok {
			v.screen.SetContent(x, row, []rune(RulerGlyph)[0], nil, tcell.StyleDefault.Foreground(c.ToTcell()))
		}
		x += 2

		text := []rune(v.doc.LineAt(line))
		styles := make([]tcell.Style, len(text))
		for i := range styles {
			styles[i] = tcell.StyleDefault
		}
		for _, run := range Flatten(v.surface.LineSpans(line, len(text)), len(text)) {
			ts := run.Style.ToTcell()
			for i := run.Start; i < run.End; i++ {
				styles[i] = ts
			}
		}

		start := x
		for i, r := range text {
			if x >= w {
				break
			}
			if r == '\t' {
				next := start + ((x-start)/tabWidth+1)*tabWidth
				for ; x < next && x < w; x++ {
					v.screen.SetContent(x, row, ' ', nil, styles[i])
				}
				continue
			}
			rw := runewidth.RuneWidth(r)
			if rw == 0 {
				continue
			}
			v.screen.SetContent(x, row, r, nil, styles[i])
			x += rw
		}
	}
}

func (v *Viewer) drawStatus(w, row int) {
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range v.status {
		if x >= w {
			break
		}
		v.screen.SetContent(x, row, r, nil, style)
		x += max(1, runewidth.RuneWidth(r))
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, row, ' ', nil, style)
	}
}

// Run draws and processes input until the user quits (q, Esc, Ctrl-C) or
// ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err())) // wakes the loop to exit
	}()

	v.Draw()
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		switch e := ev.(type) {
		case *tcell.EventKey:
			if v.handleKey(e) {
				return nil
			}
		case *tcell.EventResize:
			v.screen.Sync()
			v.Scroll(0)
		}
		v.Draw()
	}
}

// handleKey reports whether the key quits the viewer.
func (v *Viewer) handleKey(e *tcell.EventKey) bool {
	_, h := v.screen.Size()
	page := max(1, h-1)

	switch e.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.Scroll(-1)
	case tcell.KeyDown:
		v.Scroll(1)
	case tcell.KeyPgUp:
		v.Scroll(-page)
	case tcell.KeyPgDn:
		v.Scroll(page)
	case tcell.KeyHome:
		v.Scroll(-v.Top())
	case tcell.KeyRune:
		switch e.Rune() {
		case 'q':
			return true
		case 'j':
			v.Scroll(1)
		case 'k':
			v.Scroll(-1)
		}
	}
	return false
}
