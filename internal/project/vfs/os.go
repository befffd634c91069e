package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS implements VFS on the local disk.
type OSFS struct{}

// NewOSFS creates an OS-backed file system.
func NewOSFS() *OSFS {
	return &OSFS{}
}

var _ VFS = (*OSFS)(nil)

// ReadFile reads the entire file content.
func (f *OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file information.
func (f *OSFS) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return fromOS(path, info), nil
}

// WalkDir walks the tree rooted at root. Unreadable entries are reported to
// fn with a non-nil error.
func (f *OSFS) WalkDir(root string, fn WalkDirFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fn(path, nil, err)
		}
		info, err := d.Info()
		if err != nil {
			return fn(path, nil, err)
		}
		return fn(path, NewDirEntry(fromOS(path, info)), nil)
	})
}

// Abs returns the absolute path.
func (f *OSFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// Rel returns the relative path from base to target.
func (f *OSFS) Rel(basePath, targetPath string) (string, error) {
	return filepath.Rel(basePath, targetPath)
}

func fromOS(path string, info os.FileInfo) FileInfo {
	return NewFileInfo(path, info.Name(), info.Size(), info.Mode(), info.ModTime(), info.IsDir())
}
