// Package watch triggers gate re-runs when release files change.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce batches editor write bursts into a single trigger.
const DefaultDebounce = 250 * time.Millisecond

// Watcher invokes a callback when any of the watched files change.
type Watcher struct {
	paths    map[string]struct{}
	debounce time.Duration
	onChange func(path string)

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a watcher for the given files and starts delivering
// change notifications. Parent directories are watched rather than the
// files themselves: editors that save by rename-and-replace would
// otherwise detach the watch on the first save.
func New(paths []string, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		paths:    make(map[string]struct{}, len(paths)),
		debounce: DefaultDebounce,
		onChange: onChange,
		watcher:  fw,
		done:     make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		// Resolve the directory so event names match what fsnotify
		// reports on platforms where temp paths go through symlinks.
		if resolved, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
			abs = filepath.Join(resolved, filepath.Base(abs))
		}
		w.paths[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	go w.loop()

	return w, nil
}

// loop monitors the watched directories and debounces change events.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending string
	)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Clean(event.Name)
			if _, watched := w.paths[name]; !watched {
				continue
			}
			if event.Op&fsnotify.Create == 0 && event.Op&fsnotify.Write == 0 {
				continue
			}
			log.Debug().Str("file", name).Str("op", event.Op.String()).Msg("watched file changed")
			pending = name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			w.onChange(pending)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Debug().Err(err).Msg("file watcher error")
		}
	}
}

// Close stops the watcher and its delivery goroutine.
func (w *Watcher) Close() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}
