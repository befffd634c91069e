package highlight

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/debounce"
	"github.com/dshills/veco/internal/diagnostic"
	"github.com/dshills/veco/internal/document"
	"github.com/dshills/veco/internal/filter"
	"github.com/dshills/veco/internal/log"
	"github.com/dshills/veco/internal/tracing"
)

const instrumentationName = "github.com/dshills/veco/internal/highlight"

// DefaultDebounce is the quiet period before a triggered scan runs.
const DefaultDebounce = 100 * time.Millisecond

// Diagnostic messages and search labels are capped at these rune counts.
const (
	maxMessageLen = 160
	maxLabelLen   = 500
)

// DiagnosticSource is the source name on every emitted diagnostic.
const DiagnosticSource = "veco"

// Source returns the live settings and the current assembly.
type Source func() (config.Highlight, *Assembly)

// ScanResult describes one live scan.
type ScanResult struct {
	URI string
	// Skipped is set when nothing was applied: no active editor, no
	// assembly, an out of scope file, or an editor switch during the scan.
	Skipped bool
	Reason  string
	Matches int
	// Ranges holds the ranges pushed per key. Keys without matches map
	// to nil.
	Ranges      map[string][]document.Range
	Diagnostics []diagnostic.Diagnostic
}

// Scanner rescans the active document and pushes per-key ranges to the
// decoration handles.
type Scanner struct {
	window      Window
	diagnostics DiagnosticSink
	state       *DecorationState
	source      Source
	logger      *log.Logger
	tracer      trace.Tracer
	delay       time.Duration

	mu        sync.Mutex
	debouncer *debounce.Debouncer
	ctx       context.Context
	cancel    context.CancelFunc
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithDebounce sets the quiet period before a triggered scan.
func WithDebounce(d time.Duration) ScannerOption {
	return func(s *Scanner) {
		s.delay = d
	}
}

// WithScannerLogger sets the logger.
func WithScannerLogger(l *log.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = l
	}
}

// WithScannerTracer sets the tracer scans are recorded with.
func WithScannerTracer(t trace.Tracer) ScannerOption {
	return func(s *Scanner) {
		s.tracer = t
	}
}

// NewScanner creates a scanner. source is read at scan time, so a scan
// always sees the settings current when its timer fires.
func NewScanner(window Window, diagnostics DiagnosticSink, state *DecorationState, source Source, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		window:      window,
		diagnostics: diagnostics,
		state:       state,
		source:      source,
		logger:      log.NullLogger(),
		tracer:      otel.Tracer(instrumentationName),
		delay:       DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("scanner")
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.debouncer = debounce.New(s.delay, func() {
		if _, err := s.ScanNow(s.ctx); err != nil && s.ctx.Err() == nil {
			s.logger.Error("scan failed: %v", err)
		}
	})
	return s
}

// Trigger schedules a scan. A trigger while one is pending reschedules it.
func (s *Scanner) Trigger() {
	s.debouncer.Call()
}

// Pending reports whether a triggered scan has not run yet.
func (s *Scanner) Pending() bool {
	return s.debouncer.Pending()
}

// Flush runs a pending scan immediately.
func (s *Scanner) Flush() {
	s.debouncer.Flush()
}

// Stop drops any pending scan. Later triggers are ignored.
func (s *Scanner) Stop() {
	s.cancel()
	s.debouncer.Cancel()
}

// ScanNow scans the active document and applies the result.
func (s *Scanner) ScanNow(ctx context.Context) (ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return ScanResult{Skipped: true, Reason: "stopped"}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	editor := s.window.ActiveEditor()
	if editor == nil {
		return ScanResult{Skipped: true, Reason: "no active editor"}, nil
	}
	doc := editor.Document()
	cfg, a := s.source()
	result := ScanResult{URI: doc.URI()}
	if a == nil {
		result.Skipped, result.Reason = true, "not initialized"
		return result, ErrNotInitialized
	}
	if !filter.IsInScope(doc.FileName(), cfg.Include, cfg.Exclude) {
		s.logger.Debug("%s is out of scope", doc.FileName())
		result.Skipped, result.Reason = true, "out of scope"
		return result, nil
	}

	_, span := s.tracer.Start(ctx, tracing.SpanScan, trace.WithAttributes(
		attribute.String(tracing.AttrDocument, doc.URI()),
		attribute.String(tracing.AttrMode, a.Mode.String()),
	))
	defer span.End()

	matches, matchErr := a.Pattern.FindAll(doc.Text())
	if matchErr != nil {
		span.RecordError(matchErr)
		s.logger.Warn("matching %s stopped early: %v", doc.URI(), matchErr)
	}

	postDiagnostics := cfg.Enabled && cfg.EnableDiagnostics
	byKey := make(map[string][]document.Range)
	var problems []diagnostic.Diagnostic
	for _, m := range matches {
		key := a.MatchKey(m)
		if key == "" {
			continue
		}
		r := document.Range{Start: doc.PositionAt(m.Index), End: doc.PositionAt(m.End())}

		if postDiagnostics {
			if kw, ok := a.Keyword(m.Key); ok && kw.Severity != diagnostic.SeverityNone {
				problems = append(problems, diagnostic.Diagnostic{
					Range:    r,
					Severity: kw.Severity,
					Message:  lineFrom(doc.LineAt(r.Start.Line), r.Start.Character, maxMessageLen),
					Source:   DiagnosticSource,
				})
			}
		}

		byKey[key] = append(byKey[key], r)
		if a.Mode == ModeRegex {
			s.state.Ensure(key, a.DecorationStyle(key))
		}
	}
	result.Matches = len(matches)

	// The user may have switched editors while matching; the result only
	// belongs to the document it was computed from.
	if cur := s.window.ActiveEditor(); cur == nil || cur.Document().URI() != doc.URI() {
		s.logger.Debug("active editor changed during scan of %s", doc.URI())
		result.Skipped, result.Reason = true, "editor changed"
		return result, nil
	}

	result.Ranges = make(map[string][]document.Range)
	for _, key := range s.state.Keys() {
		h, ok := s.state.Handle(key)
		if !ok {
			continue
		}
		var ranges []document.Range
		if cfg.Enabled {
			ranges = byKey[key]
		}
		result.Ranges[key] = ranges
		editor.SetDecorations(h, ranges)
	}
	if problems == nil {
		problems = []diagnostic.Diagnostic{}
	}
	result.Diagnostics = problems
	s.diagnostics.Set(doc.URI(), problems)

	span.SetAttributes(attribute.Int(tracing.AttrMatches, len(matches)))
	if matchErr != nil {
		span.SetStatus(codes.Error, matchErr.Error())
	}
	s.logger.Debug("scanned %s: %d matches, %d problems", doc.URI(), len(matches), len(problems))
	return result, matchErr
}

// lineFrom returns line from rune column col to its end, capped at max
// runes and suffixed with "..." when cut.
func lineFrom(line string, col, max int) string {
	return truncate(document.RuneSlice(line, col, document.RuneLen(line)), max)
}

func truncate(s string, max int) string {
	if document.RuneLen(s) <= max {
		return s
	}
	return strings.TrimSpace(document.RuneSlice(s, 0, max)) + "..."
}
