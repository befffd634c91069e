package vfs

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

var errNotUnder = errors.New("target is not under base")

// MemFS implements VFS with an in-memory tree. Paths are slash separated and
// rooted at "/". Directories exist implicitly for every stored file.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu       sync.RWMutex
	files    map[string]*memFile
	failures map[string]error
	now      func() time.Time
}

type memFile struct {
	content []byte
	modTime time.Time
}

// NewMemFS creates an empty in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files:    make(map[string]*memFile),
		failures: make(map[string]error),
		now:      time.Now,
	}
}

var _ VFS = (*MemFS)(nil)

// AddFile stores content at filePath, replacing any previous content.
func (m *MemFS) AddFile(filePath, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[cleanPath(filePath)] = &memFile{content: []byte(content), modTime: m.now()}
}

// FailOn makes reads of filePath return err. A nil err clears the failure.
func (m *MemFS) FailOn(filePath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := cleanPath(filePath)
	if err == nil {
		delete(m.failures, p)
		return
	}
	m.failures[p] = err
}

// Remove deletes a file.
func (m *MemFS) Remove(filePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, cleanPath(filePath))
}

// Files returns every stored file path, sorted.
func (m *MemFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ReadFile returns a copy of the file content.
func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p := cleanPath(filePath)
	if err, ok := m.failures[p]; ok {
		return nil, &fs.PathError{Op: "read", Path: p, Err: err}
	}
	f, ok := m.files[p]
	if !ok {
		if m.isDirLocked(p) {
			return nil, &fs.PathError{Op: "read", Path: p, Err: errors.New("is a directory")}
		}
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(f.content))
	copy(out, f.content)
	return out, nil
}

// Stat returns file information.
func (m *MemFS) Stat(filePath string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statLocked(cleanPath(filePath))
}

func (m *MemFS) statLocked(p string) (FileInfo, error) {
	if f, ok := m.files[p]; ok {
		return NewFileInfo(p, path.Base(p), int64(len(f.content)), 0o644, f.modTime, false), nil
	}
	if m.isDirLocked(p) {
		return NewFileInfo(p, path.Base(p), 0, fs.ModeDir|0o755, time.Time{}, true), nil
	}
	return FileInfo{}, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

func (m *MemFS) isDirLocked(p string) bool {
	if p == "/" {
		return true
	}
	prefix := p + "/"
	for f := range m.files {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

// children returns the direct entries of dir, sorted by name.
func (m *MemFS) children(dir string) []FileInfo {
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}

	seen := make(map[string]bool)
	var out []FileInfo
	for f := range m.files {
		if !strings.HasPrefix(f, prefix) {
			continue
		}
		rest := f[len(prefix):]
		name, _, _ := strings.Cut(rest, "/")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		info, err := m.statLocked(path.Join(dir, name))
		if err == nil {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// WalkDir walks the tree rooted at root in lexical order.
func (m *MemFS) WalkDir(root string, fn WalkDirFunc) error {
	root = cleanPath(root)

	m.mu.RLock()
	info, err := m.statLocked(root)
	m.mu.RUnlock()
	if err != nil {
		return fn(root, nil, err)
	}

	err = m.walk(root, NewDirEntry(info), fn)
	if err == SkipDir || err == SkipAll {
		return nil
	}
	return err
}

func (m *MemFS) walk(dirPath string, d DirEntry, fn WalkDirFunc) error {
	if err := fn(dirPath, d, nil); err != nil {
		if err == SkipDir && d.IsDir() {
			return nil
		}
		return err
	}
	if !d.IsDir() {
		return nil
	}

	m.mu.RLock()
	entries := m.children(dirPath)
	m.mu.RUnlock()

	for _, entry := range entries {
		if err := m.walk(entry.Path(), NewDirEntry(entry), fn); err != nil {
			return err
		}
	}
	return nil
}

// Abs returns the cleaned rooted path.
func (m *MemFS) Abs(filePath string) (string, error) {
	return cleanPath(filePath), nil
}

// Rel returns the relative path from base to target. Target must lie under base.
func (m *MemFS) Rel(basePath, targetPath string) (string, error) {
	base := cleanPath(basePath)
	target := cleanPath(targetPath)
	if base == target {
		return ".", nil
	}
	prefix := base
	if prefix != "/" {
		prefix += "/"
	}
	if !strings.HasPrefix(target, prefix) {
		return "", errNotUnder
	}
	return target[len(prefix):], nil
}

func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
