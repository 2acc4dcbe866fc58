// Package library watches the configured sample directories and keeps
// the source picker's file list current.
package library

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"cliptrim/internal/logging"
)

// EventKind says what happened to a sample file.
type EventKind int

const (
	Added EventKind = iota
	Removed
)

// Event reports a change in the sample library.
type Event struct {
	Kind EventKind
	Path string
}

// Library monitors directories for playable media files.
type Library struct {
	fsWatcher  *fsnotify.Watcher
	dirs       []string
	extensions map[string]bool
	log        *logging.Logger

	mu    sync.RWMutex
	files map[string]bool

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a library over the given directories. Extensions are
// lowercase with a leading dot.
func New(dirs, extensions []string, log *logging.Logger) (*Library, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Default()
	}

	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}

	return &Library{
		fsWatcher:  fsWatcher,
		dirs:       dirs,
		extensions: exts,
		log:        log.WithComponent("library"),
		files:      make(map[string]bool),
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
	}, nil
}

// Events returns the change channel.
func (l *Library) Events() <-chan Event {
	return l.events
}

// Files returns a sorted snapshot of the known sample files.
func (l *Library) Files() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.files))
	for f := range l.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Start scans the directories once and then begins watching them.
// Missing directories are skipped, not fatal.
func (l *Library) Start() error {
	for _, dir := range l.dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
			l.log.Debug("sample dir missing, skipping", "dir", abs)
			continue
		}
		if err := l.fsWatcher.Add(abs); err != nil {
			l.log.Warn("watch failed", "dir", abs, "error", err)
			continue
		}
		l.scanDir(abs)
	}

	l.wg.Add(1)
	go l.loop()
	return nil
}

// Stop ends watching and closes the event channel.
func (l *Library) Stop() {
	close(l.done)
	l.fsWatcher.Close()
	l.wg.Wait()
	close(l.events)
}

func (l *Library) scanDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if l.playable(path) {
			l.add(path)
		}
	}
}

func (l *Library) playable(path string) bool {
	return l.extensions[strings.ToLower(filepath.Ext(path))]
}

func (l *Library) add(path string) {
	l.mu.Lock()
	known := l.files[path]
	l.files[path] = true
	l.mu.Unlock()
	if !known {
		select {
		case l.events <- Event{Kind: Added, Path: path}:
		default:
			l.log.Warn("event channel full, dropping", "path", path)
		}
	}
}

func (l *Library) remove(path string) {
	l.mu.Lock()
	known := l.files[path]
	delete(l.files, path)
	l.mu.Unlock()
	if known {
		select {
		case l.events <- Event{Kind: Removed, Path: path}:
		default:
			l.log.Warn("event channel full, dropping", "path", path)
		}
	}
}

func (l *Library) loop() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case ev, ok := <-l.fsWatcher.Events:
			if !ok {
				return
			}
			if !l.playable(ev.Name) {
				continue
			}
			switch {
			case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
				l.add(ev.Name)
			case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
				l.remove(ev.Name)
			}
		case err, ok := <-l.fsWatcher.Errors:
			if !ok {
				return
			}
			l.log.Warn("watch error", "error", err)
		}
	}
}
