// Package watch re-decodes loose objects and the HEAD reflog as they change
// on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/odvcencio/objscope/pkg/debounce"
	"github.com/odvcencio/objscope/pkg/object"
	"github.com/odvcencio/objscope/pkg/repo"
)

// DefaultDebounce is the quiet period before a changed path is re-read.
const DefaultDebounce = 350 * time.Millisecond

// reflogKey is the debounce key for HEAD log changes; object keys are oids.
const reflogKey = "logs/HEAD"

type EventKind int

const (
	EventObject EventKind = iota + 1
	EventReflog
)

func (k EventKind) String() string {
	switch k {
	case EventObject:
		return "object"
	case EventReflog:
		return "reflog"
	default:
		return "unknown"
	}
}

// Event reports one re-read. Object events carry OID plus either Object or
// Err; reflog events carry the parsed HEAD log and its ghost candidates.
type Event struct {
	Kind    EventKind
	OID     object.OID
	Object  *object.Object
	Reflog  []repo.ReflogEntry
	Ghosts  []repo.ReflogEntry
	Err     error
	Elapsed time.Duration
}

type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// WithBuffer sets the event channel capacity.
func WithBuffer(n int) Option {
	return func(w *Watcher) { w.buffer = n }
}

// Watcher follows .git/objects and .git/logs of one repository.
type Watcher struct {
	repo   *repo.Repo
	delay  time.Duration
	log    *slog.Logger
	buffer int

	fs       *fsnotify.Watcher
	debounce *debounce.Group
	events   chan Event
	done     chan struct{}

	mu     sync.RWMutex // guards closed against in-flight sends
	closed bool
}

// New creates a Watcher and registers the object and log directories.
// Run must be called to start delivering events.
func New(r *repo.Repo, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		repo:   r,
		delay:  DefaultDebounce,
		log:    slog.Default(),
		buffer: 64,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.events = make(chan Event, w.buffer)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w.fs = fw
	w.debounce = debounce.New(w.delay, w.reload)

	for _, dir := range w.initialPaths() {
		w.log.Debug("adding path to FS watcher", slog.String("path", dir))
		if err := fw.Add(dir); err != nil {
			err := errors.Join(err, fw.Close())
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Events delivers re-read results. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) initialPaths() []string {
	objects := filepath.Join(w.repo.GitDir, "objects")
	paths := []string{objects}
	if fanouts, err := os.ReadDir(objects); err == nil {
		for _, d := range fanouts {
			if d.IsDir() && isFanout(d.Name()) {
				paths = append(paths, filepath.Join(objects, d.Name()))
			}
		}
	}
	logs := filepath.Join(w.repo.GitDir, "logs")
	if info, err := os.Stat(logs); err == nil && info.IsDir() {
		paths = append(paths, logs)
	}
	return paths
}

// Run processes file-system events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.debounce.Stop()
		if err := w.fs.Close(); err != nil {
			w.log.Error("watcher close", slog.Any("error", err))
		}
		close(w.done)
		w.mu.Lock()
		w.closed = true
		close(w.events)
		w.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if shouldIgnore(ev.Name) {
		return
	}
	w.log.Debug("fsnotify event",
		slog.String("op", ev.Op.String()),
		slog.String("path", ev.Name),
	)

	objects := filepath.Join(w.repo.GitDir, "objects")
	rel, err := filepath.Rel(objects, ev.Name)
	if err == nil && !strings.HasPrefix(rel, "..") {
		w.handleObjectPath(ev, rel)
		return
	}

	if filepath.Clean(ev.Name) == filepath.Join(w.repo.GitDir, "logs", "HEAD") {
		w.debounce.Trigger(reflogKey)
	}
}

func (w *Watcher) handleObjectPath(ev fsnotify.Event, rel string) {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	switch len(parts) {
	case 1:
		// A new fan-out directory: watch it and pick up anything written
		// before the watch was in place.
		if ev.Op&fsnotify.Create == 0 || !isFanout(parts[0]) {
			return
		}
		if err := w.fs.Add(ev.Name); err != nil {
			w.log.Error("watch fan-out dir", slog.String("path", ev.Name), slog.Any("error", err))
			return
		}
		entries, err := os.ReadDir(ev.Name)
		if err != nil {
			return
		}
		for _, e := range entries {
			if oid, ok := OIDFromPath(parts[0], e.Name()); ok {
				w.debounce.Trigger(string(oid))
			}
		}
	case 2:
		if oid, ok := OIDFromPath(parts[0], parts[1]); ok {
			w.debounce.Trigger(string(oid))
		}
	}
}

// reload runs on the debounce timer for one key.
func (w *Watcher) reload(key string) {
	start := time.Now()
	var ev Event
	if key == reflogKey {
		entries, err := w.repo.ReadHeadReflog()
		ev = Event{Kind: EventReflog, Reflog: entries, Ghosts: repo.FindGhosts(entries), Err: err}
	} else {
		oid := object.OID(key)
		obj, err := w.repo.DecodeObject(oid)
		if err != nil && !errors.Is(err, object.ErrNotFound) {
			w.log.Warn("could not decode object", slog.String("oid", key), slog.Any("error", err))
		}
		ev = Event{Kind: EventObject, OID: oid, Object: obj, Err: err}
	}
	ev.Elapsed = time.Since(start)

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// OIDFromPath joins a fan-out directory name and a file name into an
// object id, reporting false for anything that is not a loose object.
func OIDFromPath(dir, name string) (object.OID, bool) {
	if !isFanout(dir) {
		return "", false
	}
	oid := object.OID(dir + name)
	if !oid.Valid() {
		return "", false
	}
	return oid, true
}

func isFanout(name string) bool {
	return len(name) == 2 && object.OID(name+strings.Repeat("0", 38)).Valid()
}

func shouldIgnore(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "tmp_obj_") || strings.HasPrefix(base, ".tmp") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".ipc"
}
