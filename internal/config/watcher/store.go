package watcher

import (
	"os"

	"github.com/dshills/veco/internal/config"
)

// WatchStore reloads store whenever one of its settings files changes. The
// store emits the reload notification to its subscribers. Files whose
// directory does not exist yet are skipped.
func WatchStore(store *config.Store, opts ...Option) (*Watcher, error) {
	w, err := New(func(ev Event) {
		for _, p := range ev.Paths {
			// The first successful reload picks up every file.
			if err := store.Reload(p); err == nil {
				return
			}
		}
	}, opts...)
	if err != nil {
		return nil, err
	}

	for _, f := range store.Files() {
		if err := w.Watch(f); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			_ = w.Close()
			return nil, err
		}
	}
	return w, nil
}
