package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/codecore/internal/logging"
)

// DefaultDebounce is how long Watch waits for a burst of writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	debounce time.Duration
	logger   *logging.Logger
}

// WithDebounce sets the settle delay.
func WithDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(l *logging.Logger) WatchOption {
	return func(c *watchConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Watch calls fn with the reloaded config each time path changes, until
// ctx is done. A failed reload is passed to fn as an error and the watch
// continues. The parent directory is watched so that editors which replace
// the file on save are followed.
func Watch(ctx context.Context, path string, fn func(*Config, error), opts ...WatchOption) error {
	wc := watchConfig{debounce: DefaultDebounce, logger: logging.Nop()}
	for _, opt := range opts {
		opt(&wc)
	}
	log := wc.logger.WithComponent("config").WithField("path", path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := FormatFor(abs); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(wc.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("%s", ev.Op)
			timer.Reset(wc.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error: %v", err)

		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				log.Warn("reload failed: %v", err)
			} else {
				log.Info("reloaded")
			}
			fn(cfg, err)
		}
	}
}
