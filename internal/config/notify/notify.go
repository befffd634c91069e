// Package notify delivers settings change events to subscribers.
//
// Subscribers register for a dotted section path and receive changes to the
// path itself, to anything below it, and every reload.
package notify

import (
	"sort"
	"strings"
	"sync"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeSet indicates a value was set or updated.
	ChangeSet ChangeType = iota

	// ChangeReload indicates a settings file was re-read.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a configuration change event.
type Change struct {
	// Path is the dotted path of the changed setting. Empty for reloads.
	Path string

	Type ChangeType

	OldValue any
	NewValue any

	// Source identifies where the change came from (a file path or "update").
	Source string
}

// Affects reports whether the change touches section, mirroring the host
// "affects configuration" check. Reloads affect every section.
func (c Change) Affects(section string) bool {
	if c.Type == ChangeReload || c.Path == "" {
		return true
	}
	return c.Path == section || isParentPath(section, c.Path) || isParentPath(c.Path, section)
}

// Observer is called when configuration changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type entry struct {
	path     string // "" for global observers
	observer Observer
}

// Notifier manages configuration change subscriptions. Delivery is
// synchronous and happens outside the internal lock, in subscription order.
type Notifier struct {
	mu        sync.RWMutex
	observers map[uint64]entry
	nextID    uint64
	closed    bool
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{observers: make(map[uint64]entry)}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribePath("", observer)
}

// SubscribePath registers an observer for changes at or below path. A change
// to a parent of path ("veco" for "veco.highlight") is delivered as well.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = entry{path: path, observer: observer}

	return &Subscription{id: id, notifier: n}
}

// Notify sends a change to all matching observers.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}

	ids := make([]uint64, 0, len(n.observers))
	for id, e := range n.observers {
		if e.path == "" || change.Affects(e.path) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.observers[id].observer
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(path string, oldValue, newValue any, source string) {
	n.Notify(Change{
		Path:     path,
		Type:     ChangeSet,
		OldValue: oldValue,
		NewValue: newValue,
		Source:   source,
	})
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{Type: ChangeReload, Source: source})
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Close stops delivery. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.observers = make(map[uint64]entry)
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// isParentPath checks if parent is a parent path of child.
// e.g., "veco" is parent of "veco.highlight".
func isParentPath(parent, child string) bool {
	if parent == "" {
		return child != ""
	}
	return len(child) > len(parent) && strings.HasPrefix(child, parent) && child[len(parent)] == '.'
}
