// Package host implements the editor collaborators of the highlight engine
// for a terminal: decorations land on a renderer.Surface, messages and
// status updates go to writers, and the quick pick reads a line of input.
package host

import (
	"sync"

	"github.com/dshills/veco/internal/document"
	"github.com/dshills/veco/internal/highlight"
	"github.com/dshills/veco/internal/log"
	"github.com/dshills/veco/internal/renderer"
)

// Editor shows one document and paints decorations on its surface.
type Editor struct {
	mu       sync.RWMutex
	doc      document.Document
	surface  *renderer.Surface
	onChange func()
	logger   *log.Logger
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// OnDecorationsChanged registers fn to run after every SetDecorations.
func OnDecorationsChanged(fn func()) EditorOption {
	return func(e *Editor) {
		e.onChange = fn
	}
}

// WithEditorLogger sets the logger.
func WithEditorLogger(l *log.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = l
	}
}

// NewEditor creates an editor showing doc.
func NewEditor(doc document.Document, surface *renderer.Surface, opts ...EditorOption) *Editor {
	e := &Editor{
		doc:     doc,
		surface: surface,
		logger:  log.NullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("editor")
	return e
}

// Document implements highlight.Editor.
func (e *Editor) Document() document.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc
}

// SetDocument replaces the shown document, as after a save on disk.
func (e *Editor) SetDocument(doc document.Document) {
	e.mu.Lock()
	e.doc = doc
	e.mu.Unlock()
}

// Surface returns the surface decorations are painted on.
func (e *Editor) Surface() *renderer.Surface {
	return e.surface
}

// SetDecorations implements highlight.Editor. Handles from another
// surface and released handles are ignored.
func (e *Editor) SetDecorations(handle highlight.DecorationHandle, ranges []document.Range) {
	d, ok := handle.(*renderer.Decoration)
	if !ok {
		e.logger.Warn("foreign decoration handle %s", handle.ID())
		return
	}
	if err := e.surface.SetRanges(d, ranges); err != nil {
		e.logger.Debug("set ranges on %s: %v", d.ID(), err)
		return
	}
	if e.onChange != nil {
		e.onChange()
	}
}

var _ highlight.Editor = (*Editor)(nil)
