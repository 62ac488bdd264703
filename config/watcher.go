package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dynastyops/valuekeeper/logging"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
)

const namedLogger = "cfgwatcher"

// Watcher watches the configuration file and notifies listeners on change.
type Watcher struct {
	log  *logging.Logger
	cfg  Config
	path string

	cfgUpdateListeners []func(Config)
	mu                 sync.Mutex
}

// NewFromFile instantiates a new watcher over the configuration file under
// rootPath.
func NewFromFile(ctx context.Context, log *logging.Logger, rootPath string) (*Watcher, error) {
	watcherlog := log.Named(namedLogger)
	// always report configuration changes, whatever the global level
	watcherlog.SetLevel(logging.DebugLevel)

	w := &Watcher{
		log:                watcherlog,
		cfg:                NewDefaultConfig(),
		path:               filepath.Join(rootPath, configFileName),
		cfgUpdateListeners: []func(Config){},
	}

	if err := w.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(w.path); err != nil {
		return nil, err
	}

	w.log.Info("config watcher started successfully",
		logging.String("config", w.path))

	go w.watch(ctx, watcher)

	return w, nil
}

// Get returns the last loaded configuration.
func (w *Watcher) Get() Config {
	w.mu.Lock()
	conf := w.cfg
	w.mu.Unlock()
	return conf
}

// OnConfigUpdate registers functions to be called when the configuration
// file changes.
func (w *Watcher) OnConfigUpdate(fns ...func(Config)) {
	w.mu.Lock()
	w.cfgUpdateListeners = append(w.cfgUpdateListeners, fns...)
	w.mu.Unlock()
}

func (w *Watcher) load() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	buf, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}
	if _, err := toml.Decode(string(buf), &w.cfg); err != nil {
		return err
	}
	return nil
}

func (w *Watcher) notify() {
	w.mu.Lock()
	cfg := w.cfg
	listeners := w.cfgUpdateListeners
	w.mu.Unlock()
	for _, f := range listeners {
		f(cfg)
	}
}

func (w *Watcher) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case event := <-watcher.Events:
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Rename == fsnotify.Rename {
				if event.Op&fsnotify.Rename == fsnotify.Rename {
					// editors often replace the file instead of writing it
					// in place, give the rename a moment to settle before
					// reading
					time.Sleep(50 * time.Millisecond)
				}
				w.log.Info("configuration updated", logging.String("event", event.Name))
				if err := w.load(); err != nil {
					w.log.Error("unable to load configuration", logging.Error(err))
					continue
				}
				w.notify()
			}
		case err := <-watcher.Errors:
			w.log.Error("config watcher received error event", logging.Error(err))
		case <-ctx.Done():
			return
		}
	}
}
