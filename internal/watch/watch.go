// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher calls back once per burst of changes to the YAML files below Root.
type Watcher struct {
	Root     string
	Ignore   []string
	Debounce time.Duration
}

// Run calls onChange once at start and after every debounced change, until ctx is done.
// Errors returned by onChange are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error while creating watcher: %w", err)
	}

	defer watcher.Close()

	if err := w.addTree(watcher, w.Root); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	run := func() {
		if err := onChange(); err != nil {
			logrus.Error(err)
		}
	}

	run()

	var timer *time.Timer

	changed := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}

			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if w.ignored(event.Name) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if err := w.addIfDir(watcher, event.Name); err != nil {
					logrus.Warn(err)
				}
			}

			if !relevant(event) {
				continue
			}

			logrus.Debugf("%s: %s", event.Op, event.Name)

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(debounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logrus.Warnf("watch error: %v", err)
		}
	}
}

func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && (strings.HasPrefix(d.Name(), ".") || w.ignored(path)) {
			return filepath.SkipDir
		}

		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("error while watching %s: %w", path, err)
		}

		return nil
	})
}

func (w *Watcher) addIfDir(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil //nolint:nilerr // files and vanished entries need no watch.
	}

	return w.addTree(watcher, path)
}

func (w *Watcher) ignored(path string) bool {
	for _, ign := range w.Ignore {
		if path == ign || strings.HasPrefix(path, ign+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	ext := filepath.Ext(event.Name)

	return ext == ".yaml" || ext == ".yml"
}
