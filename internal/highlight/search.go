package highlight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/document"
	"github.com/dshills/veco/internal/log"
	"github.com/dshills/veco/internal/tracing"
)

// Status bar texts.
const (
	StatusInitial        = "$(checklist) 0 Annotations"
	StatusInitialTooltip = "Click to show list annotations"
	statusSearching      = " Searching..."
	statusNoFiles        = "$(warning) No files found"
	statusError          = "$(error) Error listing annotations"
)

// SearchState is how a workspace search ended.
type SearchState int

const (
	// SearchDone visited every enumerated file.
	SearchDone SearchState = iota
	// SearchNoFiles found nothing to visit.
	SearchNoFiles
	// SearchFailed could not enumerate the workspace.
	SearchFailed
	// SearchCanceled never started: the keyword prompt was dismissed.
	SearchCanceled
)

func (s SearchState) String() string {
	switch s {
	case SearchDone:
		return "done"
	case SearchNoFiles:
		return "no files"
	case SearchFailed:
		return "failed"
	case SearchCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// AnnotationRecord is one matching line found by a workspace search.
// Columns count runes.
type AnnotationRecord struct {
	URI      string
	FileName string
	Line     int
	StartCol int
	EndCol   int
	Label    string
	Detail   string
}

// SearchResult is the outcome of one workspace search.
type SearchResult struct {
	State   SearchState
	Records []AnnotationRecord
	// Files is the number of files enumerated; Failed the number that
	// could not be opened.
	Files  int
	Failed int
	// Err is the enumeration failure for SearchFailed, ErrNoFiles for
	// SearchNoFiles, and the joined open failures otherwise.
	Err error
}

// Search scans the workspace file by file and reports progress through a
// status indicator. Files are visited sequentially so progress is monotonic.
type Search struct {
	ws     Workspace
	status StatusIndicator
	logger *log.Logger
	tracer trace.Tracer
}

// SearchOption configures a Search.
type SearchOption func(*Search)

// WithSearchLogger sets the logger.
func WithSearchLogger(l *log.Logger) SearchOption {
	return func(s *Search) {
		s.logger = l
	}
}

// WithSearchTracer sets the tracer searches are recorded with.
func WithSearchTracer(t trace.Tracer) SearchOption {
	return func(s *Search) {
		s.tracer = t
	}
}

// NewSearch creates a search over ws reporting to status.
func NewSearch(ws Workspace, status StatusIndicator, opts ...SearchOption) *Search {
	s := &Search{
		ws:     ws,
		status: status,
		logger: log.NullLogger(),
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("search")
	return s
}

// Run searches every in-scope file for pattern. Failing to open a file is
// logged and counted; the run continues. The context reaches enumeration
// and file opening only; a started run is not aborted.
func (s *Search) Run(ctx context.Context, cfg config.Highlight, pattern *Pattern) SearchResult {
	ctx, span := s.tracer.Start(ctx, tracing.SpanSearch, trace.WithAttributes(
		attribute.String(tracing.AttrKeyword, strings.Join(pattern.Keys(), ",")),
	))
	defer span.End()

	s.status.Show()
	s.status.SetText("$(zap) " + statusSearching)

	files, err := s.ws.FindFiles(ctx, cfg.Include, cfg.Exclude, cfg.MaxFilesForSearch)
	if err != nil {
		s.status.SetText(statusError)
		s.logger.Error("error finding files: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "enumerate")
		span.SetAttributes(attribute.String(tracing.AttrState, SearchFailed.String()))
		return SearchResult{State: SearchFailed, Err: &SearchError{Op: "enumerate", Err: err}}
	}
	if len(files) == 0 {
		s.status.SetText(statusNoFiles)
		s.logger.Warn("no files found (include=%v exclude=%v)", cfg.Include, cfg.Exclude)
		span.SetAttributes(attribute.String(tracing.AttrState, SearchNoFiles.String()))
		return SearchResult{State: SearchNoFiles, Err: ErrNoFiles}
	}

	result := SearchResult{State: SearchDone, Files: len(files)}
	var openErrs []error
	root := s.ws.RootPath()
	for i, path := range files {
		records, err := s.searchFile(ctx, path, root, pattern)
		if err != nil {
			s.status.SetText(statusError)
			s.logger.Error("error opening text document for %s: %v", path, err)
			result.Failed++
			openErrs = append(openErrs, &SearchError{Op: "open", Path: path, Err: err})
		}
		result.Records = append(result.Records, records...)

		progress := (i + 1) * 100 / len(files)
		s.status.SetText(fmt.Sprintf("$(zap) %d%% %s", progress, statusSearching))
	}

	n := len(result.Records)
	s.status.SetText(fmt.Sprintf("$(checklist) %d annotations", n))
	s.status.SetTooltip(fmt.Sprintf("%d annotations found", n))
	s.logger.Debug("%d annotations found", n)

	if len(openErrs) > 0 {
		result.Err = errors.Join(openErrs...)
	}
	span.SetAttributes(
		attribute.String(tracing.AttrState, SearchDone.String()),
		attribute.Int(tracing.AttrFiles, result.Files),
		attribute.Int(tracing.AttrFailed, result.Failed),
		attribute.Int(tracing.AttrAnnotations, n),
	)
	return result
}

func (s *Search) searchFile(ctx context.Context, path, root string, pattern *Pattern) ([]AnnotationRecord, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanSearchFile, trace.WithAttributes(
		attribute.String(tracing.AttrPath, path),
	))
	defer span.End()

	doc, err := s.ws.OpenTextDocument(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open")
		return nil, err
	}
	records := SearchDocument(doc, root, pattern, s.logger)
	span.SetAttributes(attribute.Int(tracing.AttrAnnotations, len(records)))
	return records, nil
}

// SearchDocument returns one record per line of doc that pattern matches,
// positioned at the line's first match. Detail paths are relative to root.
func SearchDocument(doc document.Document, root string, pattern *Pattern, logger *log.Logger) []AnnotationRecord {
	rel := doc.FileName()
	if root != "" {
		rel = strings.TrimPrefix(rel, strings.TrimSuffix(root, "/")+"/")
	}

	var records []AnnotationRecord
	for line := 0; line < doc.LineCount(); line++ {
		text := doc.LineAt(line)
		m, ok, err := pattern.FindFirst(text)
		if err != nil && logger != nil {
			logger.Warn("%s:%d: %v", doc.FileName(), line+1, err)
		}
		if !ok {
			continue
		}
		records = append(records, AnnotationRecord{
			URI:      doc.URI(),
			FileName: doc.FileName(),
			Line:     line,
			StartCol: m.Index,
			EndCol:   document.RuneLen(text),
			Label:    lineFrom(text, m.Index, maxLabelLen),
			Detail:   fmt.Sprintf("%s %d:%d", rel, line+1, m.Index+1),
		})
	}
	return records
}
