package highlight

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/diagnostic"
	"github.com/dshills/veco/internal/document"
)

type fakeHandle struct {
	id       string
	style    config.Style
	mu       sync.Mutex
	disposed bool
}

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disposed = true
}

func (h *fakeHandle) isDisposed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disposed
}

type fakeEditor struct {
	mu          sync.Mutex
	doc         document.Document
	decorations map[string][]document.Range
	calls       int
}

func newEditor(uri, fileName, text string) *fakeEditor {
	return &fakeEditor{
		doc:         document.New(uri, fileName, text),
		decorations: make(map[string][]document.Range),
	}
}

func (e *fakeEditor) Document() document.Document { return e.doc }

func (e *fakeEditor) SetDecorations(h DecorationHandle, ranges []document.Range) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.decorations[h.ID()] = append([]document.Range(nil), ranges...)
}

func (e *fakeEditor) ranges(h DecorationHandle) ([]document.Range, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.decorations[h.ID()]
	return r, ok
}

type fakeWindow struct {
	mu       sync.Mutex
	active   *fakeEditor
	created  []*fakeHandle
	infos    []string
	warnings []string
	errors   []string
	items    []QuickPickItem
	pick     func(items []QuickPickItem) (QuickPickItem, bool, error)
}

func (w *fakeWindow) setActive(e *fakeEditor) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = e
}

func (w *fakeWindow) ActiveEditor() Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == nil {
		return nil
	}
	return w.active
}

func (w *fakeWindow) CreateDecorationType(style config.Style) DecorationHandle {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := &fakeHandle{id: fmt.Sprintf("decoration-%d", len(w.created)), style: style.Clone()}
	w.created = append(w.created, h)
	return h
}

func (w *fakeWindow) createdCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.created)
}

func (w *fakeWindow) ShowInformationMessage(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.infos = append(w.infos, msg)
}

func (w *fakeWindow) ShowWarningMessage(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warnings = append(w.warnings, msg)
}

func (w *fakeWindow) ShowErrorMessage(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errors = append(w.errors, msg)
}

func (w *fakeWindow) ShowQuickPick(_ context.Context, items []QuickPickItem) (QuickPickItem, bool, error) {
	w.mu.Lock()
	w.items = items
	pick := w.pick
	w.mu.Unlock()
	if pick == nil {
		return QuickPickItem{}, false, nil
	}
	return pick(items)
}

func pickLabel(label string) func([]QuickPickItem) (QuickPickItem, bool, error) {
	return func(items []QuickPickItem) (QuickPickItem, bool, error) {
		for _, it := range items {
			if it.Label == label {
				return it, true, nil
			}
		}
		return QuickPickItem{}, false, errors.New("no such item")
	}
}

type fakeStatus struct {
	mu       sync.Mutex
	texts    []string
	tooltip  string
	shown    bool
	disposed bool
}

func (s *fakeStatus) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
}

func (s *fakeStatus) SetTooltip(tooltip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tooltip = tooltip
}

func (s *fakeStatus) Show()    { s.shown = true }
func (s *fakeStatus) Dispose() { s.disposed = true }

func (s *fakeStatus) text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

type fakeLog struct {
	lines    []string
	clears   int
	shown    int
	disposed bool
}

func (l *fakeLog) AppendLine(line string) { l.lines = append(l.lines, line) }
func (l *fakeLog) Clear()                 { l.lines = nil; l.clears++ }
func (l *fakeLog) Show()                  { l.shown++ }
func (l *fakeLog) Dispose()               { l.disposed = true }

type fakeDiagnostics struct {
	*diagnostic.Collection
	mu   sync.Mutex
	sets int
}

func newDiagnostics() *fakeDiagnostics {
	return &fakeDiagnostics{Collection: diagnostic.NewCollection("veco")}
}

func (d *fakeDiagnostics) Set(uri string, diags []diagnostic.Diagnostic) {
	d.mu.Lock()
	d.sets++
	d.mu.Unlock()
	d.Collection.Set(uri, diags)
}

func (d *fakeDiagnostics) setCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sets
}

type update struct {
	key    string
	value  any
	global bool
}

type fakeConfig struct {
	mu        sync.Mutex
	cfg       config.Highlight
	updateErr error
	updates   []update
	onRead    func()
}

func newConfig() *fakeConfig {
	return &fakeConfig{cfg: config.Defaults()}
}

func (c *fakeConfig) Highlight() config.Highlight {
	c.mu.Lock()
	cfg := c.cfg.Clone()
	hook := c.onRead
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return cfg
}

func (c *fakeConfig) set(fn func(*config.Highlight)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.cfg)
}

func (c *fakeConfig) Update(_ context.Context, key string, value any, global bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, update{key: key, value: value, global: global})
	if c.updateErr != nil {
		return c.updateErr
	}
	if key == config.KeyEnabled {
		c.cfg.Enabled = value.(bool)
	}
	return nil
}

type fakeWorkspace struct {
	files   []string
	docs    map[string]string
	findErr error
}

func (w *fakeWorkspace) FindFiles(_ context.Context, _, _ []string, max int) ([]string, error) {
	if w.findErr != nil {
		return nil, w.findErr
	}
	if max <= 0 {
		return nil, nil
	}
	if len(w.files) > max {
		return w.files[:max], nil
	}
	return w.files, nil
}

func (w *fakeWorkspace) OpenTextDocument(_ context.Context, path string) (document.Document, error) {
	text, ok := w.docs[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return document.New("file://"+path, path, text), nil
}

func (w *fakeWorkspace) RootPath() string { return "/ws" }

type fixture struct {
	window *fakeWindow
	editor *fakeEditor
	config *fakeConfig
	diags  *fakeDiagnostics
	status *fakeStatus
	log    *fakeLog
	ws     Workspace
}

func newFixture(text string) *fixture {
	f := &fixture{
		window: &fakeWindow{},
		editor: newEditor("file:///ws/a.js", "/ws/a.js", text),
		config: newConfig(),
		diags:  newDiagnostics(),
		status: &fakeStatus{},
		log:    &fakeLog{},
		ws:     &fakeWorkspace{},
	}
	f.window.setActive(f.editor)
	return f
}

func (f *fixture) deps() Deps {
	return Deps{
		Window:      f.window,
		Workspace:   f.ws,
		Config:      f.config,
		Diagnostics: f.diags,
		Status:      f.status,
		Log:         f.log,
	}
}
