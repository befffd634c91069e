package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/config/notify"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	w, err := New(rec.handle, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("a: 2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return len(rec.snapshot()) >= 1 })
	time.Sleep(150 * time.Millisecond)

	events := rec.snapshot()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	abs, _ := filepath.Abs(path)
	if len(events[0].Paths) != 1 || events[0].Paths[0] != abs {
		t.Errorf("Paths = %v, want [%s]", events[0].Paths, abs)
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	rec := &recorder{}
	w, err := New(rec.handle, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() of a missing file in an existing dir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if n := len(rec.snapshot()); n != 0 {
		t.Fatalf("sibling write produced %d events", n)
	}

	if err := os.WriteFile(path, []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(rec.snapshot()) == 1 })
}

func TestWatcher_WatchUnwatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")

	w, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(a); err != nil {
		t.Errorf("second Watch() = %v, want nil", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatal(err)
	}
	if got := len(w.Files()); got != 2 {
		t.Errorf("Files() = %d entries, want 2", got)
	}

	if err := w.Unwatch(a); err != nil {
		t.Errorf("Unwatch() = %v", err)
	}
	if got := len(w.Files()); got != 1 {
		t.Errorf("Files() = %d entries, want 1", got)
	}

	if err := w.Watch(filepath.Join(dir, "missing", "c.yaml")); !os.IsNotExist(err) {
		t.Errorf("Watch() in missing dir = %v, want not-exist", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if err := w.Watch(a); err != ErrWatcherClosed {
		t.Errorf("Watch() after Close = %v, want ErrWatcherClosed", err)
	}
}

func TestWatchStore_ReloadsOnEdit(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(user, []byte("veco:\n  highlight:\n    enabled: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := config.NewStore(
		config.WithUserFile(user),
		config.WithWorkspaceFile(filepath.Join(dir, "ws", ".veco", "settings.yaml")),
	)
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	reloads := 0
	store.Notifier().SubscribePath(config.Section, func(c notify.Change) {
		if c.Type == notify.ChangeReload {
			mu.Lock()
			reloads++
			mu.Unlock()
		}
	})

	w, err := WatchStore(store, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("WatchStore() error = %v", err)
	}
	defer w.Close()

	if got := len(w.Files()); got != 1 {
		t.Fatalf("watching %d files, want 1 (workspace dir is missing)", got)
	}

	if err := os.WriteFile(user, []byte("veco:\n  highlight:\n    enabled: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return !store.Highlight().Enabled })
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return reloads >= 1
	})
}
