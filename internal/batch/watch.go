package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/adtconv/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is converted.
// Editors and extractors write tiles in several chunks.
const DefaultDebounce = 300 * time.Millisecond

// Watch converts matching files below cfg.InputDir whenever they are created
// or written, until ctx is cancelled. Subdirectories are watched too,
// including ones created while watching. onResult is called for every
// conversion.
func Watch(ctx context.Context, cfg Config, debounce time.Duration, onResult func(Result)) error {
	log := logger.Named("watch")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := addTree(w, cfg.InputDir); err != nil {
		return fmt.Errorf("watching %s: %w", cfg.InputDir, err)
	}
	log.Info("watching", zap.String("dir", cfg.InputDir), zap.String("pattern", cfg.Pattern))

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				if err := addTree(w, ev.Name); err != nil {
					log.Warn("watch dir failed", zap.String("dir", ev.Name), zap.Error(err))
					continue
				}
				// Files may land before the directory is watched.
				files, _ := Discover(ev.Name, cfg.Pattern)
				for _, f := range files {
					pending[f] = struct{}{}
				}
				if len(files) > 0 {
					timer.Reset(debounce)
				}
				continue
			}
			if !Match(cfg.Pattern, ev.Name) {
				continue
			}
			log.Debug("change", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			sort.Strings(files)
			clear(pending)

			for _, res := range Run(ctx, cfg, files) {
				if onResult != nil {
					onResult(res)
				}
			}
		}
	}
}

// addTree watches dir and every directory below it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(path)
	})
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
