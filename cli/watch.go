package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce is how long the dataset must stay quiet before onChange runs.
const watchDebounce = 500 * time.Millisecond

// watchDataset calls onChange after changes under root settle, until ctx is done.
// The root and every year directory are watched; new year directories are
// picked up as they appear.
func watchDataset(ctx context.Context, root string, logger *zap.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to read dataset directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			addWatch(watcher, filepath.Join(root, entry.Name()), logger)
		}
	}

	logger.Info("Watching dataset", zap.String("root", root))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) == filepath.Clean(root) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addWatch(watcher, event.Name, logger)
				}
			}
			logger.Debug("Dataset changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", zap.Error(err))

		case <-timer.C:
			onChange()
		}
	}
}

func addWatch(watcher *fsnotify.Watcher, dir string, logger *zap.Logger) {
	if err := watcher.Add(dir); err != nil {
		logger.Warn("Failed to watch directory", zap.String("dir", dir), zap.Error(err))
	}
}
