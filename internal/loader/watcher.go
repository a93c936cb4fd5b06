package loader

import (
	"GopherView/internal/logger"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Editors usually write a file in several steps; wait for them to settle.
const reloadDelay = 200 * time.Millisecond

// Watcher reloads the session's model when its file changes on disk.
type Watcher struct {
	session *Session
	fs      *fsnotify.Watcher

	mu    sync.Mutex
	dir   string
	file  string
	timer *time.Timer
	done  chan struct{}

	closeOnce sync.Once
}

func NewWatcher(session *Session) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	w := &Watcher{session: session, fs: fs, done: make(chan struct{})}
	go w.run()
	return w, nil
}

// Watch follows path, replacing any previously watched file. The parent
// directory is watched so atomic renames are seen.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if dir != w.dir {
		if w.dir != "" {
			_ = w.fs.Remove(w.dir)
		}
		if err := w.fs.Add(dir); err != nil {
			w.dir, w.file = "", ""
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dir = dir
	}
	w.file = abs
	logger.Log.Debug("Watching model file", zap.String("path", abs))
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.changed(event.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("Model watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) changed(name string) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if abs != w.file {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDelay, func() {
		logger.Log.Info("Model file changed", zap.String("path", abs))
		w.session.Reload()
	})
}

// Close stops watching. Later calls return nil.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		close(w.done)
		err = w.fs.Close()
	})
	return err
}
