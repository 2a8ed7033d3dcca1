// Package watch implements §4.N's source registry watch: an fsnotify
// watcher over every configured root directory that debounces bursts of
// filesystem events and invokes a callback once activity settles, so the
// `watch` CLI subcommand can rerun enumeration (§4.G) and the phase
// pipeline (§2) without rebuilding on every single write.
//
// Grounded on the teacher's internal/indexing/watcher.go FileWatcher:
// recursive directory registration, a debounce timer reset on every event,
// and a context-cancelable run loop drained via sync.WaitGroup.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/debug"
)

// DefaultDebounce matches the teacher's default WatchDebounceMs.
const DefaultDebounce = 300 * time.Millisecond

// Watcher recursively watches a set of root directories and invokes OnChange
// once after a burst of filesystem events settles.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debounce  time.Duration
	onChange  func()
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a Watcher for roots. onChange is invoked from its own
// goroutine every time the debounce window elapses with no further events.
func New(roots []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{fsw: fsw, debounce: debounce, onChange: onChange, ctx: ctx, cancel: cancel}

	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			cancel()
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addRecursive registers fsw on dir and every subdirectory beneath it,
// matching the teacher's addWatches walk.
func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			_ = w.fsw.Add(path)
		}
		return nil
	})
}

// Start begins the debounced event loop.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop cancels the event loop and releases the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	w.cancel()
	w.fsw.Close()
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			debug.LogSchedule("watch event: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			if w.onChange != nil {
				w.onChange()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.LogSchedule("watch error: %v", err)
		}
	}
}
