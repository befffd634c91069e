// Package workspace provides the workspace folders the annotation search
// runs over: file enumeration with include/exclude globs and a result cap,
// and loading files as text documents.
package workspace

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dshills/veco/internal/document"
	"github.com/dshills/veco/internal/filter"
	"github.com/dshills/veco/internal/log"
	"github.com/dshills/veco/internal/project"
	"github.com/dshills/veco/internal/project/vfs"
)

// DefaultMaxFileSize is the largest file OpenTextDocument loads.
const DefaultMaxFileSize = 16 << 20

// Folder represents a single root folder of the workspace.
type Folder struct {
	// URI is the folder path as a URI (file://)
	URI string
	// Path is the local file system path
	Path string
	// Name is the display name for the folder
	Name string
}

// Workspace is a set of root folders on a file system.
type Workspace struct {
	mu      sync.RWMutex
	fs      vfs.VFS
	folders []Folder

	docs        *cache.Cache
	maxFileSize int64
	logger      *log.Logger
}

type cachedDocument struct {
	modTime time.Time
	size    int64
	doc     *document.TextDocument
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithFS sets the file system. The default is the local disk.
func WithFS(fs vfs.VFS) Option {
	return func(w *Workspace) {
		w.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(w *Workspace) {
		w.logger = l
	}
}

// WithDocumentCache sets how long loaded documents are reused while their
// size and modification time are unchanged. Zero disables caching.
func WithDocumentCache(ttl time.Duration) Option {
	return func(w *Workspace) {
		if ttl <= 0 {
			w.docs = nil
			return
		}
		w.docs = cache.New(ttl, 2*ttl)
	}
}

// WithMaxFileSize sets the largest file OpenTextDocument loads.
func WithMaxFileSize(n int64) Option {
	return func(w *Workspace) {
		w.maxFileSize = n
	}
}

// New creates a workspace over roots. The first root is the primary folder.
func New(roots []string, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		fs:          vfs.NewOSFS(),
		docs:        cache.New(5*time.Minute, 10*time.Minute),
		maxFileSize: DefaultMaxFileSize,
		logger:      log.NullLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("workspace")

	if len(roots) == 0 {
		return nil, project.ErrNoFolders
	}

	for _, root := range roots {
		abs, err := w.fs.Abs(root)
		if err != nil {
			return nil, project.NewPathError("open", root, err)
		}
		w.folders = append(w.folders, Folder{
			URI:  PathToURI(abs),
			Path: abs,
			Name: filepath.Base(abs),
		})
	}
	return w, nil
}

// Folders returns the root folders.
func (w *Workspace) Folders() []Folder {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Folder(nil), w.folders...)
}

// RootPath returns the path of the primary folder.
func (w *Workspace) RootPath() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.folders) == 0 {
		return ""
	}
	return w.folders[0].Path
}

// ContainingFolder returns the folder that contains path.
func (w *Workspace) ContainingFolder(path string) (Folder, bool) {
	abs, err := w.fs.Abs(path)
	if err != nil {
		return Folder{}, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, f := range w.folders {
		if _, err := w.relTo(f.Path, abs); err == nil {
			return f, true
		}
	}
	return Folder{}, false
}

// RelativePath returns path relative to its containing folder, slash
// separated. For multi-root workspaces the folder name is prefixed.
func (w *Workspace) RelativePath(path string) (string, error) {
	abs, err := w.fs.Abs(path)
	if err != nil {
		return "", err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, f := range w.folders {
		rel, err := w.relTo(f.Path, abs)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if len(w.folders) > 1 {
			rel = f.Name + "/" + rel
		}
		return rel, nil
	}
	return "", project.NewPathError("relative", path, project.ErrNotInWorkspace)
}

func (w *Workspace) relTo(root, abs string) (string, error) {
	rel, err := w.fs.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(filepath.ToSlash(rel), "../") {
		return "", project.ErrNotInWorkspace
	}
	return rel, nil
}

// FindFiles enumerates files under every folder whose folder-relative path
// matches include and not exclude, in lexical order, stopping after max
// files. max <= 0 yields no files. Unreadable subtrees are skipped; an
// unreadable folder root fails the enumeration.
func (w *Workspace) FindFiles(ctx context.Context, include, exclude []string, max int) ([]string, error) {
	if max <= 0 {
		return nil, nil
	}

	m, err := filter.NewMatcher(include, exclude)
	if err != nil {
		return nil, project.NewPathError("enumerate", filter.JoinGlobs(include), err)
	}

	var files []string
	for _, folder := range w.Folders() {
		root := folder.Path
		err := w.fs.WalkDir(root, func(path string, d vfs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if path == root {
					return err
				}
				w.logger.Debug("skipping %s: %v", path, err)
				return nil
			}

			rel, relErr := w.fs.Rel(root, path)
			if relErr != nil || rel == "." {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if m.Excluded(rel) {
					return vfs.SkipDir
				}
				return nil
			}
			if !m.Match(rel) {
				return nil
			}

			files = append(files, path)
			if len(files) >= max {
				return vfs.SkipAll
			}
			return nil
		})
		if err != nil && err != vfs.SkipAll {
			return nil, project.NewPathError("enumerate", root, err)
		}
		if len(files) >= max {
			break
		}
	}

	w.logger.Debug("found %d files (include=%s)", len(files), m.Include())
	return files, nil
}

// OpenTextDocument loads path as a text document. Documents are reused from
// the cache while the file size and modification time are unchanged.
func (w *Workspace) OpenTextDocument(ctx context.Context, path string) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := w.fs.Stat(path)
	if err != nil {
		return nil, project.NewPathError("open", path, err)
	}
	if info.IsDir() {
		return nil, project.NewPathError("open", path, project.ErrIsDirectory)
	}
	if w.maxFileSize > 0 && info.Size() > w.maxFileSize {
		return nil, project.NewPathError("open", path, project.ErrFileTooLarge)
	}

	if w.docs != nil {
		if v, ok := w.docs.Get(path); ok {
			c := v.(cachedDocument)
			if c.size == info.Size() && c.modTime.Equal(info.ModTime()) {
				return c.doc, nil
			}
		}
	}

	data, err := w.fs.ReadFile(path)
	if err != nil {
		return nil, project.NewPathError("open", path, err)
	}
	text, err := vfs.DecodeText(data)
	if err != nil {
		return nil, project.NewPathError("open", path, project.ErrBinaryFile)
	}

	doc := document.New(PathToURI(path), path, text)
	if w.docs != nil {
		w.docs.SetDefault(path, cachedDocument{modTime: info.ModTime(), size: info.Size(), doc: doc})
	}
	return doc, nil
}

// Invalidate drops a cached document.
func (w *Workspace) Invalidate(path string) {
	if w.docs != nil {
		w.docs.Delete(path)
	}
}

// CachedDocuments returns the number of cached documents.
func (w *Workspace) CachedDocuments() int {
	if w.docs == nil {
		return 0
	}
	return w.docs.ItemCount()
}

// PathToURI converts a file path to a file:// URI.
func PathToURI(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	absPath = filepath.ToSlash(absPath)
	if !strings.HasPrefix(absPath, "/") {
		// Windows drive paths: file:///C:/...
		absPath = "/" + absPath
	}

	u := url.URL{
		Scheme: "file",
		Path:   absPath,
	}
	return u.String()
}

// URIToPath converts a file:// URI to a file path.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", project.ErrInvalidURI
	}

	path := filepath.FromSlash(u.Path)

	// On Windows, remove leading slash if path starts with drive letter
	if len(path) >= 3 && (path[0] == '/' || path[0] == '\\') && path[2] == ':' {
		path = path[1:]
	}
	return path, nil
}
