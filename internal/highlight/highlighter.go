package highlight

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/config/notify"
	"github.com/dshills/veco/internal/log"
	"github.com/dshills/veco/internal/tracing"
)

// User facing messages.
const (
	MsgEnableFirst = "Please enable the highlight module first"
	MsgNoResults   = "No results (not included file types and individual files are not searched)"
	searchAllHint  = "Search all supported annotations"
)

// Deps are the host collaborators a Highlighter drives.
type Deps struct {
	Window      Window
	Workspace   Workspace
	Config      ConfigStore
	Diagnostics DiagnosticSink
	Status      StatusIndicator
	Log         LogSurface
}

// Highlighter owns the keyword assembly, the decoration handles, the live
// scanner and the last search result.
type Highlighter struct {
	deps     Deps
	logger   *log.Logger
	tracer   trace.Tracer
	platform string
	debounce time.Duration
	assemble []AssembleOption

	state   *DecorationState
	scanner *Scanner
	search  *Search

	mu       sync.Mutex
	assembly *Assembly
	records  []AnnotationRecord
	disposed bool
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Highlighter) {
		h.logger = l
	}
}

// WithTracer sets the tracer for assembly, scans and searches.
func WithTracer(t trace.Tracer) Option {
	return func(h *Highlighter) {
		h.tracer = t
	}
}

// WithPlatform overrides the platform used to pick the locator format.
func WithPlatform(goos string) Option {
	return func(h *Highlighter) {
		h.platform = goos
	}
}

// WithScanDebounce sets the live scan debounce delay.
func WithScanDebounce(d time.Duration) Option {
	return func(h *Highlighter) {
		h.debounce = d
	}
}

// WithAssembleOptions passes options to every assembly.
func WithAssembleOptions(opts ...AssembleOption) Option {
	return func(h *Highlighter) {
		h.assemble = append(h.assemble, opts...)
	}
}

// New creates a Highlighter and puts the status indicator in its initial
// state. Call Init before scanning.
func New(deps Deps, opts ...Option) *Highlighter {
	h := &Highlighter{
		deps:     deps,
		logger:   log.NullLogger(),
		tracer:   otel.Tracer(instrumentationName),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.WithComponent("highlight")

	h.state = NewDecorationState(deps.Window, h.logger.WithComponent("decorations"))
	h.scanner = NewScanner(deps.Window, deps.Diagnostics, h.state, h.source,
		WithDebounce(h.debounce),
		WithScannerLogger(h.logger),
		WithScannerTracer(h.tracer),
	)
	h.search = NewSearch(deps.Workspace, deps.Status,
		WithSearchLogger(h.logger),
		WithSearchTracer(h.tracer),
	)

	deps.Status.SetText(StatusInitial)
	deps.Status.SetTooltip(StatusInitialTooltip)
	return h
}

func (h *Highlighter) source() (config.Highlight, *Assembly) {
	cfg := h.deps.Config.Highlight()
	h.mu.Lock()
	defer h.mu.Unlock()
	return cfg, h.assembly
}

// Init assembles the keywords from the current settings and syncs the
// decoration handles. A malformed pattern is shown to the user and the
// previous assembly stays in effect.
func (h *Highlighter) Init() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return ErrDisposed
	}

	cfg := h.deps.Config.Highlight()
	_, span := h.tracer.Start(context.Background(), tracing.SpanAssemble)
	defer span.End()

	a, err := Assemble(cfg, h.assemble...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assemble")
		h.logger.Error("assembling keywords: %v", err)
		h.deps.Window.ShowErrorMessage(err.Error())
		return err
	}
	span.SetAttributes(
		attribute.String(tracing.AttrMode, a.Mode.String()),
		attribute.Int(tracing.AttrKeys, len(a.Keys)),
	)

	if !a.Equal(h.assembly) {
		h.logger.Debug("assembled %d keywords in %s mode", len(a.Keys), a.Mode)
	}
	h.assembly = a
	h.state.Sync(a)
	return nil
}

// HandleConfigChange reacts to a settings change. While enabled the keywords
// are reassembled and a scan is triggered. While disabled nothing happens;
// the scan that followed disabling already cleared the decorations.
func (h *Highlighter) HandleConfigChange(change notify.Change) {
	if !change.Affects(config.Section) {
		return
	}
	if !h.deps.Config.Highlight().Enabled {
		return
	}
	if err := h.Init(); err != nil {
		return
	}
	h.TriggerUpdate()
}

// TriggerUpdate schedules a debounced scan of the active document.
func (h *Highlighter) TriggerUpdate() {
	h.scanner.Trigger()
}

// Scan scans the active document immediately.
func (h *Highlighter) Scan(ctx context.Context) (ScanResult, error) {
	return h.scanner.ScanNow(ctx)
}

// Flush runs a pending scan now.
func (h *Highlighter) Flush() {
	h.scanner.Flush()
}

// HandleDocumentClose drops the diagnostics of a closed document.
func (h *Highlighter) HandleDocumentClose(uri string) {
	h.deps.Diagnostics.Delete(uri)
}

// ToggleEnabled flips the enabled setting in the global settings and
// rescans.
func (h *Highlighter) ToggleEnabled(ctx context.Context) error {
	enabled := h.deps.Config.Highlight().Enabled
	if err := h.deps.Config.Update(ctx, config.KeyEnabled, !enabled, true); err != nil {
		msg := "Error enabling highlight"
		if enabled {
			msg = "Error disabling highlight"
		}
		h.logger.Error("%s: %v", msg, err)
		h.deps.Window.ShowErrorMessage(msg)
		return fmt.Errorf("toggle enabled: %w", err)
	}
	h.TriggerUpdate()
	return nil
}

// ListAnnotations asks which keyword to search for, searches the
// workspace and shows the result. In regex mode the override pattern is
// searched without asking.
func (h *Highlighter) ListAnnotations(ctx context.Context) (SearchResult, error) {
	cfg, a := h.source()
	if a == nil {
		h.logger.Warn("list annotations before init")
		return SearchResult{}, ErrNotInitialized
	}

	pattern := a.Pattern
	if strings.TrimSpace(cfg.KeywordsPattern) == "" {
		items := make([]QuickPickItem, 0, len(a.Keys)+1)
		items = append(items, QuickPickItem{Label: SearchAll, Detail: searchAllHint})
		for _, key := range a.Keys {
			items = append(items, QuickPickItem{Label: key})
		}
		picked, ok, err := h.deps.Window.ShowQuickPick(ctx, items)
		if err != nil {
			return SearchResult{}, err
		}
		if !ok {
			h.logger.Debug("no keyword picked")
			return SearchResult{State: SearchCanceled}, nil
		}
		if picked.Label != SearchAll {
			h.logger.Debug("searching for %q", picked.Label)
		}
		if pattern, err = a.SearchPattern(picked.Label); err != nil {
			return SearchResult{}, err
		}
	}

	h.setRecords(nil)
	result := h.search.Run(ctx, cfg, pattern)
	h.setRecords(result.Records)
	if result.State == SearchDone {
		h.ShowAnnotations()
	}
	return result, nil
}

func (h *Highlighter) setRecords(records []AnnotationRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = records
}

// ShowAnnotations renders the last search result to the log surface.
func (h *Highlighter) ShowAnnotations() {
	cfg := h.deps.Config.Highlight()
	if !cfg.Enabled {
		h.deps.Window.ShowWarningMessage(MsgEnableFirst)
		return
	}
	records := h.Annotations()
	if len(records) == 0 {
		h.deps.Window.ShowInformationMessage(MsgNoResults)
		return
	}

	h.deps.Log.Clear()
	for _, line := range RenderAnnotations(records, RenderOptions{Platform: h.platform, ToggleURI: cfg.ToggleURI}) {
		h.deps.Log.AppendLine(line)
	}
	h.deps.Log.Show()
}

// Annotations returns the records of the last search.
func (h *Highlighter) Annotations() []AnnotationRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]AnnotationRecord(nil), h.records...)
}

// Assembly returns the current assembly, or nil before Init.
func (h *Highlighter) Assembly() *Assembly {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.assembly
}

// Decorations returns the decoration state.
func (h *Highlighter) Decorations() *DecorationState {
	return h.state
}

// Dispose stops scanning and releases the decoration handles, the log
// surface and the status indicator.
func (h *Highlighter) Dispose() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.disposed = true
	h.mu.Unlock()

	h.scanner.Stop()
	h.state.Dispose()
	h.deps.Log.Dispose()
	h.deps.Status.Dispose()
}
