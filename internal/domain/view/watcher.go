package view

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/modulekit/internal/shared/utils"
)

// Watcher reloads an engine's pages when the files under a directory
// change.
type Watcher struct {
	engine  *Engine
	dir     string
	pattern string
	logger  *zap.Logger

	mu   sync.Mutex
	last string
}

// NewWatcher creates a watcher for dir, taking the current state of dir as
// already loaded.
func NewWatcher(engine *Engine, dir, pattern string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fp, err := Fingerprint(dir)
	if err != nil {
		return nil, err
	}
	return &Watcher{engine: engine, dir: dir, pattern: pattern, logger: logger, last: fp}, nil
}

// Fingerprint hashes the path, size and modification time of every file
// under dir.
func Fingerprint(dir string) (string, error) {
	var mu sync.Mutex
	var fields []string

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Removed while walking
			return nil
		}

		mu.Lock()
		fields = append(fields, fmt.Sprintf("%s:%d:%d", p, info.Size(), info.ModTime().UnixNano()))
		mu.Unlock()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	return utils.DefaultHasher().HashFields(fields...), nil
}

// Check reloads the engine when dir changed since the last check. A
// failed reload is not retried until dir changes again.
func (w *Watcher) Check() (bool, error) {
	fp, err := Fingerprint(w.dir)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if fp == w.last {
		return false, nil
	}
	w.last = fp

	if err := w.engine.Reload(os.DirFS(w.dir), w.pattern); err != nil {
		return false, err
	}
	return true, nil
}

// Run checks every interval until ctx ends.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reloaded, err := w.Check()
			if err != nil {
				w.logger.Warn("Failed to reload views", zap.String("dir", w.dir), zap.Error(err))
				continue
			}
			if reloaded {
				w.logger.Info("Views reloaded",
					zap.String("dir", w.dir),
					zap.Int("pages", len(w.engine.Pages())),
				)
			}
		}
	}
}
