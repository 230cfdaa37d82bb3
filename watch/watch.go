// Package watch re-runs a build whenever Go sources change.
package watch

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/ztrue/tracerr"
)

// Watch calls build after every write to or creation of a .go file in one of
// dirs. Missing directories are skipped. It returns when ctx is done.
func Watch(ctx context.Context, dirs []string, build func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return tracerr.Wrap(err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if strings.HasSuffix(event.Name, ".go") && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				log.Printf("%s changed", event.Name)
				if err := build(); err != nil {
					log.Printf("check failed: %v", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		}
	}
}
