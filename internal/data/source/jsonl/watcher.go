package jsonl

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-automission-monitor/internal/util"
)

// dirWatcher signals when any record file below root changes. New
// subdirectories are picked up as they appear.
type dirWatcher struct {
	watcher *fsnotify.Watcher
	changed chan struct{}
	done    chan struct{}
}

func newDirWatcher(root string) (*dirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dw := &dirWatcher{
		watcher: w,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if err := dw.addTree(root); err != nil {
		w.Close()
		return nil, err
	}

	go dw.processEvents()
	return dw, nil
}

func (dw *dirWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return dw.watcher.Add(p)
		}
		return nil
	})
}

func (dw *dirWatcher) processEvents() {
	defer close(dw.done)
	for {
		select {
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if err := dw.addTree(event.Name); err == nil {
					dw.notify()
					continue
				}
			}
			if isRecordFile(event.Name) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				dw.notify()
			}

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error", util.F("error", err))
		}
	}
}

func (dw *dirWatcher) notify() {
	select {
	case dw.changed <- struct{}{}:
	default:
	}
}

// Changed fires at most once per burst the consumer has not yet seen.
func (dw *dirWatcher) Changed() <-chan struct{} {
	return dw.changed
}

func (dw *dirWatcher) Close() error {
	err := dw.watcher.Close()
	<-dw.done
	return err
}

func isRecordFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".jsonl")
}
