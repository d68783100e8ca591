package ledger

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to the ledger file. It watches the state
// directory because the file is replaced by rename on every save.
type Watcher struct {
	watcher *fsnotify.Watcher
	store   *Store
	changes chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher for the store's ledger file.
func NewWatcher(store *Store) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: w,
		store:   store,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}, nil
}

// Changes delivers a value after the ledger file was written or replaced.
// Bursts of events are coalesced.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	if err := w.watcher.Add(w.store.Dir()); err != nil {
		return err
	}
	w.running = true

	go w.watch()
	return nil
}

func (w *Watcher) watch() {
	filename := filepath.Base(w.store.Path())

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				w.store.logger.Debug("ledger changed", "op", event.Op.String())
				select {
				case w.changes <- struct{}{}:
				default:
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.store.logger.Warn("ledger watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.done)
	return w.watcher.Close()
}
