package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nisalV/jaseci/manifest"
)

// watchLoop re-checks the manifest's sources whenever one changes. Change
// events are debounced so an editor save burst triggers a single check.
// Blocks until interrupted.
func watchLoop(m *manifest.Manifest, cfg checkConfig) error {
	matcher, err := m.Matcher()
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range m.SourceDirPaths() {
		if err := watchRecursive(fsw, dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	debounce := time.Duration(m.Check.DebounceMs) * time.Millisecond
	fmt.Printf("watching %s (debounce %s)\n", strings.Join(m.SourceDirPaths(), ", "), debounce)

	var (
		mu      sync.Mutex
		runMu   sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
	)

	recheck := func() {
		mu.Lock()
		changed := len(pending)
		pending = make(map[string]struct{})
		mu.Unlock()
		if changed == 0 {
			return
		}

		runMu.Lock()
		defer runMu.Unlock()
		paths, err := m.Sources()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		if cfg.verbose {
			fmt.Printf("%d changes, re-checking %d sources\n", changed, len(paths))
		}
		runCheck(paths, cfg)
	}

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		pending[path] = struct{}{}
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, recheck)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchRecursive(fsw, event.Name); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: cannot watch %s: %v\n", event.Name, err)
					}
					continue
				}
			}

			if !matcher.Match(event.Name) {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Remove == fsnotify.Remove ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				schedule(event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: watcher: %v\n", err)

		case <-sig:
			fmt.Println("\nstopping watch")
			return nil
		}
	}
}

// watchRecursive registers every directory under root; files inherit their
// directory's watch. Missing roots are skipped, matching Sources.
func watchRecursive(fsw *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
