package project

import (
	"errors"
	"fmt"
)

// Standard errors returned by the project packages.
var (
	// ErrNoFolders indicates a workspace without any root folder.
	ErrNoFolders = errors.New("workspace has no folders")

	// ErrNotInWorkspace indicates the path is outside every workspace folder.
	ErrNotInWorkspace = errors.New("path not in workspace")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrFileTooLarge indicates the file exceeds the maximum size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrBinaryFile indicates the file appears to be binary.
	ErrBinaryFile = errors.New("binary file")

	// ErrInvalidURI indicates a URI that is not a file:// URI.
	ErrInvalidURI = errors.New("invalid file URI")
)

// PathError represents an error associated with a file path.
type PathError struct {
	Op   string // Operation that failed (enumerate, open, read)
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a new PathError.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}

// IsNotInWorkspace returns true if the error indicates path is outside the workspace.
func IsNotInWorkspace(err error) bool {
	return errors.Is(err, ErrNotInWorkspace)
}
