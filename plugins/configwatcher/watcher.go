// Package configwatcher provides a component that watches a configuration
// file and announces changes to it.
//
// When the file is written or recreated, the watcher fires a configure_start
// event carrying the file path, followed by configure_stop once every
// listener has handled it. Bursts of writes are debounced into one pair of
// events.
package configwatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/hostd/pkg/lifecycle"
	"github.com/bft-labs/hostd/pkg/log"
)

// Name is the component name of a watcher.
const Name = "configwatcher"

// Config holds configuration options for the config watcher.
type Config struct {
	// Path is the file to watch. Its directory must exist when the
	// watcher starts.
	Path string

	// DebounceDelay is the delay to wait after a file change before
	// firing events.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Logger receives the watcher's log output.
	// Default: no-op
	Logger log.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:          path,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// Watcher is a lifecycle component watching one file.
type Watcher struct {
	*lifecycle.Base

	path          string
	debounceDelay time.Duration
	logger        log.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// New creates a watcher in StateNew.
func New(cfg Config, opts ...lifecycle.Option) *Watcher {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoopLogger()
	}

	w := &Watcher{
		path:          filepath.Clean(cfg.Path),
		debounceDelay: cfg.DebounceDelay,
		logger:        cfg.Logger,
	}
	opts = append([]lifecycle.Option{lifecycle.WithLogger(cfg.Logger)}, opts...)
	w.Base = lifecycle.New(Name, w, opts...)
	return w
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// OnInit checks the configuration.
func (w *Watcher) OnInit(g lifecycle.Gate) error {
	if w.path == "" || w.path == "." {
		return errors.New("configwatcher: no path configured")
	}
	return nil
}

// OnStart begins watching. A missing directory is not an error: the watcher
// marks itself failed and the rest of the host keeps starting.
func (w *Watcher) OnStart(g lifecycle.Gate) error {
	dir := filepath.Dir(w.path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		w.logger.Warn("config watcher disabled: directory not available",
			log.Component(g.Name()), log.String("dir", dir))
		return g.SetState(lifecycle.StateFailed)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// The directory is watched rather than the file, so that editors
	// replacing the file are seen.
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go w.watchLoop(ctx, fw)

	w.logger.Info("config watcher started", log.String("path", w.path))
	return g.SetState(lifecycle.StateStarting)
}

// OnStop stops watching and drops a pending debounced change.
func (w *Watcher) OnStop(g lifecycle.Gate) error {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	if w.debounce != nil {
		w.debounce.Stop()
		w.debounce = nil
	}
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()

	return g.SetState(lifecycle.StateStopping)
}

// OnDestroy does nothing; the watcher holds no resources once stopped.
func (w *Watcher) OnDestroy(g lifecycle.Gate) error {
	return nil
}

// watchLoop owns fw and closes it on return.
func (w *Watcher) watchLoop(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceNotify(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", log.String("path", w.path), log.Err(err))
		}
	}
}

func (w *Watcher) debounceNotify(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		w.notify()
	})
}

// notify fires the configure events. Listener errors are logged.
func (w *Watcher) notify() {
	w.logger.Debug("config file changed", log.String("path", w.path))

	if err := w.FireEvent(lifecycle.EventConfigureStart, w.path); err != nil {
		w.logger.Warn("configuration reload failed", log.String("path", w.path), log.Err(err))
	}
	if err := w.FireEvent(lifecycle.EventConfigureStop, w.path); err != nil {
		w.logger.Warn("configure_stop listener failed", log.String("path", w.path), log.Err(err))
	}
}

var _ lifecycle.Component = (*Watcher)(nil)
