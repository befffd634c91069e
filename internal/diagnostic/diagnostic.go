// Package diagnostic holds problem entries keyed by document URI.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dshills/veco/internal/document"
)

// Severity mirrors the LSP diagnostic severities. SeverityNone marks keywords
// that never produce a diagnostic.
type Severity int

const (
	SeverityNone        Severity = 0
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// String returns the configuration name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "none"
	}
}

// ParseSeverity parses error|warning|information|hint|none.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "information", "info":
		return SeverityInformation, nil
	case "hint":
		return SeverityHint, nil
	case "none", "":
		return SeverityNone, nil
	default:
		return SeverityNone, fmt.Errorf("unknown diagnostic severity %q", s)
	}
}

// Diagnostic is one problem entry.
type Diagnostic struct {
	Range    document.Range
	Severity Severity
	Message  string
	Source   string
}

// FileDiagnostics holds the entries for one document with counts by severity.
type FileDiagnostics struct {
	URI         string
	Diagnostics []Diagnostic
	UpdatedAt   time.Time

	ErrorCount   int
	WarningCount int
	InfoCount    int
	HintCount    int
}

// Collection stores diagnostics per document URI. Set replaces the entries
// of a document wholesale.
type Collection struct {
	mu       sync.RWMutex
	name     string
	files    map[string]*FileDiagnostics
	onChange func(uri string, diagnostics []Diagnostic)
}

// Option configures a Collection.
type Option func(*Collection)

// WithChangeHandler registers a callback invoked after Set, Delete and Clear.
func WithChangeHandler(fn func(uri string, diagnostics []Diagnostic)) Option {
	return func(c *Collection) {
		c.onChange = fn
	}
}

// NewCollection creates an empty collection.
func NewCollection(name string, opts ...Option) *Collection {
	c := &Collection{
		name:  name,
		files: make(map[string]*FileDiagnostics),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the collection name used as diagnostic source.
func (c *Collection) Name() string {
	return c.name
}

// Set replaces the diagnostics of uri. An empty slice clears them.
func (c *Collection) Set(uri string, diagnostics []Diagnostic) {
	sorted := make([]Diagnostic, len(diagnostics))
	copy(sorted, diagnostics)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Before(sorted[j].Range.Start)
	})

	c.mu.Lock()
	if len(sorted) == 0 {
		delete(c.files, uri)
	} else {
		fd := &FileDiagnostics{URI: uri, Diagnostics: sorted, UpdatedAt: time.Now()}
		for _, d := range sorted {
			switch d.Severity {
			case SeverityError:
				fd.ErrorCount++
			case SeverityWarning:
				fd.WarningCount++
			case SeverityInformation:
				fd.InfoCount++
			case SeverityHint:
				fd.HintCount++
			}
		}
		c.files[uri] = fd
	}
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(uri, sorted)
	}
}

// Get returns a copy of the diagnostics for uri.
func (c *Collection) Get(uri string) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fd, ok := c.files[uri]
	if !ok {
		return nil
	}
	out := make([]Diagnostic, len(fd.Diagnostics))
	copy(out, fd.Diagnostics)
	return out
}

// File returns the aggregated entry for uri.
func (c *Collection) File(uri string) (FileDiagnostics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fd, ok := c.files[uri]
	if !ok {
		return FileDiagnostics{}, false
	}
	return *fd, true
}

// Has reports whether uri currently has diagnostics.
func (c *Collection) Has(uri string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.files[uri]
	return ok
}

// Delete removes all diagnostics of uri.
func (c *Collection) Delete(uri string) {
	c.mu.Lock()
	_, existed := c.files[uri]
	delete(c.files, uri)
	onChange := c.onChange
	c.mu.Unlock()

	if existed && onChange != nil {
		onChange(uri, nil)
	}
}

// Clear removes every entry.
func (c *Collection) Clear() {
	c.mu.Lock()
	uris := make([]string, 0, len(c.files))
	for uri := range c.files {
		uris = append(uris, uri)
	}
	c.files = make(map[string]*FileDiagnostics)
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		sort.Strings(uris)
		for _, uri := range uris {
			onChange(uri, nil)
		}
	}
}

// URIs returns the documents with diagnostics, sorted.
func (c *Collection) URIs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	uris := make([]string, 0, len(c.files))
	for uri := range c.files {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
