// Package watch hot-reloads the scheduler's [scheduler]/[group.<name>]
// sections when the INI config file changes on disk, so the serve daemon
// can pick up a newly added or retimed group without a restart.
package watch

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"
)

// Run watches path for writes and calls reload after every change. It
// blocks until ctx is cancelled. fsnotify setup errors are returned
// immediately; per-event reload errors are logged and do not stop the
// watch loop.
func Run(ctx context.Context, path string, reload func(ctx context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := reload(ctx); err != nil {
				log.Printf("watch: reloading %s failed: %v", path, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		}
	}
}
