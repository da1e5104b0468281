// Package watch reports changes to a single file, coalescing bursts of
// writes into one notification.
package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 150 * time.Millisecond

type Config struct {
	Path     string
	Debounce time.Duration
}

// Watcher watches the directory of a file so that editors replacing the file
// by renaming are noticed too.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	changes  chan struct{}
	errs     chan error
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func DefaultConfig(path string) Config {
	return Config{Path: path, Debounce: DefaultDebounce}
}

func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, errors.New("watch: no path given")
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch: watching %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{
		path:     path,
		debounce: cfg.Debounce,
		fsw:      fsw,
		changes:  make(chan struct{}, 1),
		errs:     make(chan error, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Changes receives one value per settled burst of changes to the file.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Errors receives errors from the underlying watcher. Errors are dropped if
// nobody reads them.
func (w *Watcher) Errors() <-chan error { return w.errs }

func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		case <-fire:
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}
