package cliplib

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DebounceInterval is the minimum spacing between two events for the same file.
const DebounceInterval = 100 * time.Millisecond

// Watcher reports changed clip documents in the watched directories.
// Events carries cleaned file paths; both channels close after Close.
type Watcher struct {
	Events chan string
	Errors chan error

	watcher *fsnotify.Watcher
	log     *zap.Logger
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching dirs. The logger may be nil.
func NewWatcher(log *zap.Logger, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	if log == nil {
		log = zap.NewNop()
	}
	watcher := &Watcher{
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		watcher: w,
		log:     log,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Events)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !IsClipFile(event.Name) {
				continue
			}
			name := filepath.Clean(event.Name)
			now := time.Now()
			if t, ok := last[name]; ok && now.Sub(t) < DebounceInterval {
				continue
			}
			last[name] = now
			w.log.Debug("clip file changed", zap.String("path", name), zap.Stringer("op", event.Op))
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

// IsClipFile reports whether path has a YAML extension.
func IsClipFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
