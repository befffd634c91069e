package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownKey indicates an option key outside the highlight section.
	ErrUnknownKey = errors.New("unknown setting")

	// ErrInvalidValue indicates a value of the wrong shape for its option.
	ErrInvalidValue = errors.New("invalid setting value")

	// ErrNoTarget indicates an update with no settings file to write to.
	ErrNoTarget = errors.New("no settings file for update target")

	// ErrUnsupportedFormat indicates a settings file extension we cannot write.
	ErrUnsupportedFormat = errors.New("unsupported settings file format")
)

// ParseError represents an error while reading or writing a settings file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Message describes the failure.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error in %s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
