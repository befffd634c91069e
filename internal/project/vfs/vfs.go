// Package vfs provides the read-only file system abstraction used by the
// workspace search.
//
// OSFS reads the real disk. MemFS holds files in memory and can be told to
// fail reads of selected paths, which the search tests use to exercise
// partial-failure handling.
package vfs

import (
	"io/fs"
	"time"
)

// VFS is the subset of file system operations the workspace needs.
type VFS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// WalkDir walks the file tree rooted at root in lexical order.
	WalkDir(root string, fn WalkDirFunc) error

	// Abs returns the absolute path.
	Abs(path string) (string, error)

	// Rel returns the relative path from base to target.
	Rel(basePath, targetPath string) (string, error)
}

// FileInfo describes a file or directory.
type FileInfo struct {
	path    string
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

// NewFileInfo creates a FileInfo from the given parameters.
func NewFileInfo(path, name string, size int64, mode fs.FileMode, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{
		path:    path,
		name:    name,
		size:    size,
		mode:    mode,
		modTime: modTime,
		isDir:   isDir,
	}
}

func (fi FileInfo) Path() string       { return fi.path }
func (fi FileInfo) Name() string       { return fi.name }
func (fi FileInfo) Size() int64        { return fi.size }
func (fi FileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi FileInfo) ModTime() time.Time { return fi.modTime }
func (fi FileInfo) IsDir() bool        { return fi.isDir }

// IsRegular returns true if this is a regular file.
func (fi FileInfo) IsRegular() bool { return fi.mode.IsRegular() }

// WalkDirFunc is the type of function called by WalkDir.
type WalkDirFunc func(path string, d DirEntry, err error) error

// DirEntry is a directory entry visited by WalkDir.
type DirEntry interface {
	Name() string
	IsDir() bool
	Info() (FileInfo, error)
}

type dirEntry struct {
	info FileInfo
}

// NewDirEntry creates a DirEntry from FileInfo.
func NewDirEntry(info FileInfo) DirEntry {
	return &dirEntry{info: info}
}

func (d *dirEntry) Name() string            { return d.info.Name() }
func (d *dirEntry) IsDir() bool             { return d.info.IsDir() }
func (d *dirEntry) Info() (FileInfo, error) { return d.info, nil }

// SkipDir is used as a return value from WalkDirFunc to indicate that
// the directory named in the call should be skipped.
var SkipDir = fs.SkipDir

// SkipAll is used as a return value from WalkDirFunc to indicate that
// all remaining files and directories should be skipped.
var SkipAll = fs.SkipAll
