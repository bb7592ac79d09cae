package config

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/spymux/spymux/internal/watcher"
)

// Watch reloads the config file at path (DefaultPath when empty) whenever it
// changes and passes the result to onChange. Reload errors are logged and the
// change is ignored. It returns a function that stops watching.
func Watch(path string, onChange func(*Config)) (func(), error) {
	if path == "" {
		path = DefaultPath()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	w, err := watcher.New(func(events []watcher.Event) {
		cfg, err := Load(absPath)
		if err != nil {
			log.Printf("Error reloading config: %v", err)
			return
		}
		log.Printf("Reloaded config from %s (%d events)", absPath, len(events))
		if onChange != nil {
			onChange(cfg)
		}
	},
		watcher.WithDebounceDuration(500*time.Millisecond),
		watcher.WithErrorHandler(func(err error) {
			log.Printf("Config watcher: %v", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	if err := w.Add(absPath); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching config path %s: %w", absPath, err)
	}

	return func() {
		w.Close()
	}, nil
}
