package highlight

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by operations that need an assembled
	// keyword map before Init has succeeded.
	ErrNotInitialized = errors.New("highlighter not initialized")

	// ErrDisposed is returned after Dispose.
	ErrDisposed = errors.New("highlighter disposed")

	// ErrNoFiles reports a search that found nothing to scan. Searches
	// return it only through SearchResult.Err; it is a state, not a failure.
	ErrNoFiles = errors.New("no files found")
)

// PatternError is a malformed keyword pattern. Key is empty when the error
// comes from the override pattern or the combined custom fragments.
type PatternError struct {
	Key     string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("invalid pattern %q for keyword %q: %v", e.Pattern, e.Key, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// SearchError is an I/O failure during a workspace search. Op is
// "enumerate" or "open".
type SearchError struct {
	Op   string
	Path string
	Err  error
}

func (e *SearchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// IsPatternError reports whether err is or wraps a *PatternError.
func IsPatternError(err error) bool {
	var pe *PatternError
	return errors.As(err, &pe)
}
