// Package watch reports on-disk changes to the corpus file. It never reseeds;
// the index stays as seeded until an explicit reseed.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

type Operation int

const (
	Modified Operation = iota
	Created
	Removed
)

func (o Operation) String() string {
	switch o {
	case Created:
		return "created"
	case Removed:
		return "removed"
	default:
		return "modified"
	}
}

// Event is one observed change of the corpus file.
type Event struct {
	Path      string
	Operation Operation
}

// CorpusWatcher watches the directory holding the corpus file, so editors
// that replace the file by rename are still observed.
type CorpusWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	logger  *slog.Logger
}

func NewCorpusWatcher(path string, logger *slog.Logger) (*CorpusWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CorpusWatcher{watcher: w, path: abs, logger: logger}, nil
}

// Watch starts monitoring and emits events until ctx is done or Stop is called.
func (w *CorpusWatcher) Watch(ctx context.Context) (<-chan Event, error) {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return nil, err
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}

				var op Operation
				switch {
				case event.Has(fsnotify.Create):
					op = Created
				case event.Has(fsnotify.Write):
					op = Modified
				case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
					op = Removed
				default:
					continue
				}

				select {
				case events <- Event{Path: w.path, Operation: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("corpus watcher error", "error", err)
			}
		}
	}()

	return events, nil
}

func (w *CorpusWatcher) Stop() error {
	return w.watcher.Close()
}
