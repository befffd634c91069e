package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/highlight"
	"github.com/dshills/veco/internal/log"
	"github.com/dshills/veco/internal/renderer"
)

// MessageLevel classifies a user message.
type MessageLevel int

// Message levels.
const (
	MessageInfo MessageLevel = iota
	MessageWarning
	MessageError
)

func (l MessageLevel) String() string {
	switch l {
	case MessageWarning:
		return "warning"
	case MessageError:
		return "error"
	default:
		return "info"
	}
}

// Message is one message shown to the user.
type Message struct {
	Level MessageLevel
	Text  string
}

// Window hosts a single editor over a decoration surface.
type Window struct {
	mu       sync.Mutex
	surface  *renderer.Surface
	active   *Editor
	out      io.Writer
	messages []Message
	onMsg    func(Message)

	preset    string
	hasPreset bool
	prompt    *prompter

	logger *log.Logger
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithMessageWriter sets where messages are printed. Defaults to stderr.
func WithMessageWriter(w io.Writer) WindowOption {
	return func(win *Window) {
		win.out = w
	}
}

// WithPrompt reads quick pick answers from in and prints the choices to out.
func WithPrompt(in io.Reader, out io.Writer) WindowOption {
	return func(win *Window) {
		win.prompt = &prompter{in: bufio.NewReader(in), out: out}
	}
}

// WithPresetPick answers every quick pick with query instead of prompting.
func WithPresetPick(query string) WindowOption {
	return func(win *Window) {
		win.preset = query
		win.hasPreset = true
	}
}

// OnMessage registers fn to receive every message.
func OnMessage(fn func(Message)) WindowOption {
	return func(win *Window) {
		win.onMsg = fn
	}
}

// WithWindowLogger sets the logger.
func WithWindowLogger(l *log.Logger) WindowOption {
	return func(win *Window) {
		win.logger = l
	}
}

// NewWindow creates a window whose decorations are created on surface.
func NewWindow(surface *renderer.Surface, opts ...WindowOption) *Window {
	w := &Window{
		surface: surface,
		out:     os.Stderr,
		logger:  log.NullLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("window")
	return w
}

// SetActive focuses e. A nil editor leaves the window without one.
func (w *Window) SetActive(e *Editor) {
	w.mu.Lock()
	w.active = e
	w.mu.Unlock()
}

// ActiveEditor implements highlight.Window.
func (w *Window) ActiveEditor() highlight.Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == nil {
		return nil
	}
	return w.active
}

// CreateDecorationType implements highlight.Window.
func (w *Window) CreateDecorationType(style config.Style) highlight.DecorationHandle {
	return w.surface.CreateDecoration(style)
}

// ShowInformationMessage implements highlight.Window.
func (w *Window) ShowInformationMessage(msg string) { w.show(MessageInfo, msg) }

// ShowWarningMessage implements highlight.Window.
func (w *Window) ShowWarningMessage(msg string) { w.show(MessageWarning, msg) }

// ShowErrorMessage implements highlight.Window.
func (w *Window) ShowErrorMessage(msg string) { w.show(MessageError, msg) }

func (w *Window) show(level MessageLevel, text string) {
	m := Message{Level: level, Text: text}
	w.mu.Lock()
	w.messages = append(w.messages, m)
	out, fn := w.out, w.onMsg
	w.mu.Unlock()

	if out != nil {
		fmt.Fprintf(out, "%s: %s\n", level, text)
	}
	if fn != nil {
		fn(m)
	}
}

// Messages returns every message shown so far.
func (w *Window) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Message(nil), w.messages...)
}

// ShowQuickPick implements highlight.Window. Without a preset answer or a
// prompt the pick is dismissed.
func (w *Window) ShowQuickPick(ctx context.Context, items []highlight.QuickPickItem) (highlight.QuickPickItem, bool, error) {
	if w.hasPreset {
		it, ok := MatchItem(w.preset, items)
		if !ok {
			w.logger.Warn("no keyword matches %q", w.preset)
		}
		return it, ok, nil
	}
	if w.prompt == nil {
		return highlight.QuickPickItem{}, false, nil
	}
	return w.prompt.pick(ctx, items)
}

var _ highlight.Window = (*Window)(nil)
