package highlight

import (
	"sync"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/log"
)

type decorationEntry struct {
	handle DecorationHandle
	style  config.Style
}

// DecorationState owns the decoration handles, at most one per key. Keys
// keep the order they were first created in.
type DecorationState struct {
	mu      sync.Mutex
	window  Window
	logger  *log.Logger
	mode    Mode
	synced  bool
	keys    []string
	entries map[string]decorationEntry
}

// NewDecorationState creates an empty state creating handles through window.
func NewDecorationState(window Window, logger *log.Logger) *DecorationState {
	if logger == nil {
		logger = log.NullLogger()
	}
	return &DecorationState{
		window:  window,
		logger:  logger,
		entries: make(map[string]decorationEntry),
	}
}

// Sync aligns the handles with a. In keyword mode every assembled key gets a
// handle and handles of vanished keys are released. A handle whose style
// did not change is kept. Switching modes releases every handle; regex mode
// handles are created later by Ensure.
func (s *DecorationState) Sync(a *Assembly) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.synced && s.mode != a.Mode {
		s.logger.Debug("mode changed to %s, releasing %d decorations", a.Mode, len(s.keys))
		s.releaseLocked(nil)
	}
	s.mode = a.Mode
	s.synced = true

	if a.Mode == ModeRegex {
		// Regex mode shares one style; drop handles created with a stale one.
		s.releaseLocked(func(_ string, e decorationEntry) bool {
			return !e.style.Equal(a.RegexStyle)
		})
		return
	}

	live := make(map[string]bool, len(a.Keys))
	for _, key := range a.Keys {
		live[key] = true
	}
	s.releaseLocked(func(key string, e decorationEntry) bool {
		return !live[key] || !e.style.Equal(a.DecorationStyle(key))
	})
	for _, key := range a.Keys {
		s.ensureLocked(key, a.DecorationStyle(key))
	}
}

// Ensure returns the handle for key, creating it with style when missing.
func (s *DecorationState) Ensure(key string, style config.Style) DecorationHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(key, style)
}

func (s *DecorationState) ensureLocked(key string, style config.Style) DecorationHandle {
	if e, ok := s.entries[key]; ok {
		return e.handle
	}
	h := s.window.CreateDecorationType(style)
	s.entries[key] = decorationEntry{handle: h, style: style.Clone()}
	s.keys = append(s.keys, key)
	s.logger.Debug("created decoration %s for %q", h.ID(), key)
	return h
}

// releaseLocked disposes the entries drop selects, or all when drop is nil.
func (s *DecorationState) releaseLocked(drop func(string, decorationEntry) bool) {
	kept := s.keys[:0]
	for _, key := range s.keys {
		e := s.entries[key]
		if drop != nil && !drop(key, e) {
			kept = append(kept, key)
			continue
		}
		e.handle.Dispose()
		delete(s.entries, key)
	}
	s.keys = kept
}

// Handle returns the handle for key.
func (s *DecorationState) Handle(key string) (DecorationHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e.handle, ok
}

// Keys returns the keys holding a handle in creation order.
func (s *DecorationState) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

// Handles returns every handle in creation order.
func (s *DecorationState) Handles() []DecorationHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DecorationHandle, len(s.keys))
	for i, key := range s.keys {
		out[i] = s.entries[key].handle
	}
	return out
}

// Len returns the number of live handles.
func (s *DecorationState) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Dispose releases every handle.
func (s *DecorationState) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked(nil)
	s.synced = false
}
