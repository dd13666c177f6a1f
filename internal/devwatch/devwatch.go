// Package devwatch monitors a device directory (normally /dev/input)
// and reports input device nodes appearing and disappearing, so the
// surrounding runtime can react to hotplug without polling.
package devwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op describes what happened to a device node.
type Op int

const (
	// Attached means a device node appeared.
	Attached Op = iota
	// Detached means a device node disappeared.
	Detached
)

func (op Op) String() string {
	switch op {
	case Attached:
		return "attached"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

// Event reports one hotplug observation.
type Event struct {
	Op        Op
	Path      string
	Timestamp time.Time
}

// Watcher watches a directory for event device nodes.
type Watcher struct {
	dir       string
	fsWatcher *fsnotify.Watcher

	events chan Event
	errors chan error

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// New creates a watcher over dir. Only nodes named event* are
// reported, matching the kernel's evdev naming.
func New(dir string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		dir:       dir,
		fsWatcher: fsWatcher,
		events:    make(chan Event, 16),
		errors:    make(chan error, 4),
		done:      make(chan struct{}),
	}, nil
}

// Events returns the channel hotplug events arrive on.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel watch errors arrive on.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching. Nodes already present are reported as
// attached so the caller sees a complete picture.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}

	w.wg.Add(1)
	go w.loop(entries)
	return nil
}

func (w *Watcher) loop(existing []os.DirEntry) {
	defer w.wg.Done()

	for _, entry := range existing {
		path := filepath.Join(w.dir, entry.Name())
		if !isEventNode(path) {
			continue
		}
		w.emit(Event{Op: Attached, Path: path, Timestamp: time.Now()})
	}

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !isEventNode(ev.Name) {
				continue
			}
			switch {
			case ev.Op.Has(fsnotify.Create):
				w.emit(Event{Op: Attached, Path: ev.Name, Timestamp: time.Now()})
			case ev.Op.Has(fsnotify.Remove):
				w.emit(Event{Op: Detached, Path: ev.Name, Timestamp: time.Now()})
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
		close(w.events)
		close(w.errors)
	})
	return err
}

func isEventNode(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "event")
}
