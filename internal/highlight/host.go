package highlight

import (
	"context"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/diagnostic"
	"github.com/dshills/veco/internal/document"
)

// DecorationHandle is a renderable decoration type owned by the host. It
// must not be used after Dispose.
type DecorationHandle interface {
	ID() string
	Dispose()
}

// Editor is the active text editor.
type Editor interface {
	// Document returns the current snapshot of the edited document.
	Document() document.Document
	// SetDecorations replaces the ranges painted with handle. An empty
	// list clears them.
	SetDecorations(handle DecorationHandle, ranges []document.Range)
}

// QuickPickItem is one entry of a quick pick prompt.
type QuickPickItem struct {
	Label  string
	Detail string
}

// Window is the host's UI surface.
type Window interface {
	// ActiveEditor returns the focused editor, or nil.
	ActiveEditor() Editor
	// CreateDecorationType creates a decoration type with style.
	CreateDecorationType(style config.Style) DecorationHandle
	ShowInformationMessage(msg string)
	ShowWarningMessage(msg string)
	ShowErrorMessage(msg string)
	// ShowQuickPick asks the user to pick one item. ok is false when the
	// prompt was dismissed.
	ShowQuickPick(ctx context.Context, items []QuickPickItem) (picked QuickPickItem, ok bool, err error)
}

// Workspace enumerates and opens workspace files.
type Workspace interface {
	// FindFiles returns at most max files matching include and not
	// exclude. An empty include list means every file.
	FindFiles(ctx context.Context, include, exclude []string, max int) ([]string, error)
	OpenTextDocument(ctx context.Context, path string) (document.Document, error)
	// RootPath is the primary folder; records are reported relative to it.
	RootPath() string
}

// StatusIndicator is a status bar entry.
type StatusIndicator interface {
	SetText(text string)
	SetTooltip(tooltip string)
	Show()
	Dispose()
}

// LogSurface is an append-only output panel.
type LogSurface interface {
	AppendLine(line string)
	Clear()
	Show()
	Dispose()
}

// DiagnosticSink receives problems keyed by document URI.
type DiagnosticSink interface {
	Set(uri string, diagnostics []diagnostic.Diagnostic)
	Delete(uri string)
}

// ConfigStore reads and persists the highlight settings.
type ConfigStore interface {
	Highlight() config.Highlight
	// Update writes key to the global settings when global is set, to the
	// workspace settings otherwise.
	Update(ctx context.Context, key string, value any, global bool) error
}

var _ DiagnosticSink = (*diagnostic.Collection)(nil)
var _ ConfigStore = (*config.Store)(nil)
