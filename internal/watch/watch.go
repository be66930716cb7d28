package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mgpai22/attool/internal/logging"
	"github.com/mgpai22/attool/internal/media"
)

// DefaultSettle is how long a new file must stay unchanged before it is
// handed off, so half-copied files are not processed.
const DefaultSettle = 2 * time.Second

// Handler processes one settled file. Errors are logged; watching goes on.
type Handler func(ctx context.Context, path string) error

type Option func(*Watcher)

func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

func WithClassifier(c *media.Classifier) Option {
	return func(w *Watcher) {
		w.classifier = c
	}
}

// Watcher feeds new media files in one directory to a Handler, one at a
// time, in the order they settle.
type Watcher struct {
	dir        string
	handler    Handler
	logger     *logging.Logger
	classifier *media.Classifier
	settle     time.Duration
	fsw        *fsnotify.Watcher

	pending map[string]time.Time
}

func New(dir string, handler Handler, logger *logging.Logger, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if logger == nil {
		logger = logging.NewNop()
	}

	w := &Watcher{
		dir:        dir,
		handler:    handler,
		logger:     logger.Named("watch"),
		classifier: media.DefaultClassifier(),
		settle:     DefaultSettle,
		fsw:        fsw,
		pending:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks until ctx is done or the underlying watcher fails. The
// handler runs on this goroutine, so events arriving meanwhile queue up.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Infow("Watching for new media", "dir", w.dir, "settle", w.settle.String())

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infow("Watcher stopped", "dir", w.dir)
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.observe(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Errorw("Watcher error", "error", err)

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) observe(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if !w.classifier.IsMedia(event.Name) {
			w.logger.Debugw("Ignoring non-media file", "path", event.Name)
			return
		}
		w.pending[event.Name] = time.Now()
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, event.Name)
	}
}

// flush hands off every file quiet for at least the settle time.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)

	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		delete(w.pending, path)

		w.logger.Infow("New media detected", "path", filepath.Base(path))
		if err := w.handler(ctx, path); err != nil {
			w.logger.Errorw("Failed to process file", "path", path, "error", err)
		}
	}
}
