// Package fswatch implements DirectoryObserver: a recursive change stream
// over a root directory that combines kernel-level notifications with
// periodic polling, because kernel notifications alone miss some
// in-place file writes on certain platforms while polling alone is too
// slow for interactive feedback.
package fswatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultPollInterval is the pull-source tick when none is configured.
const DefaultPollInterval = 1 * time.Second

// Observer watches one root directory and reports created/modified/deleted
// paths by diffing successive recursive snapshots. snap is touched only by
// the run goroutine once Start returns; mu guards pending (shared with
// Drain) and the fields Stop needs to reach from the caller's goroutine.
type Observer struct {
	PollInterval time.Duration
	Logger       zerolog.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	signals chan struct{} // debounce-free "go diff now" trigger; capacity 1

	resolvedRoot string
	snap         snapshot
	pending      map[string]ChangeRecord // dedup within a drain pass, keyed by path

	onChange func()
}

// NewObserver constructs an idle Observer. Call Start to begin watching.
func NewObserver() *Observer {
	return &Observer{PollInterval: DefaultPollInterval, pending: make(map[string]ChangeRecord)}
}

// Start begins observing root. onChange is invoked (possibly many times
// coalesced into one call) whenever new changes have been buffered;
// callers retrieve them with Drain. Start takes an initial snapshot
// synchronously so the very first diff against it only reports changes
// that happen after Start returns.
func (o *Observer) Start(root string, onChange func()) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("fswatch: starting on %q: %w", root, ErrRootNotADirectory)
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("fswatch: resolving %q: %w", root, ErrRootNotADirectory)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fswatch: opening notifications on %q: %w", root, ErrCannotOpenRoot)
	}
	if err := addWatchesRecursive(watcher, resolved); err != nil {
		watcher.Close()
		return fmt.Errorf("fswatch: watching %q: %w", root, ErrCannotOpenRoot)
	}

	initial, err := takeSnapshot(root)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("fswatch: initial snapshot of %q: %w", root, ErrCannotOpenRoot)
	}

	o.mu.Lock()
	o.resolvedRoot = resolved
	o.snap = initial
	o.pending = make(map[string]ChangeRecord)
	o.onChange = onChange
	o.done = make(chan struct{})
	o.signals = make(chan struct{}, 1)
	o.running = true
	o.mu.Unlock()

	go o.run(root, watcher)
	return nil
}

// Stop cancels the polling loop and the kernel source. Idempotent.
func (o *Observer) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	done := o.done
	o.mu.Unlock()

	close(done)
}

// Drain returns any buffered changes accumulated since the last Drain (or
// since Start) and resets the buffer.
func (o *Observer) Drain() []ChangeRecord {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.pending) == 0 {
		return nil
	}
	out := make([]ChangeRecord, 0, len(o.pending))
	for _, c := range o.pending {
		out = append(out, c)
	}
	o.pending = make(map[string]ChangeRecord)
	return out
}

// sendSignal does a non-blocking send; a pending signal already implies a
// diff will run soon, so a second send in the meantime is a no-op.
func (o *Observer) sendSignal() {
	o.mu.Lock()
	signals := o.signals
	o.mu.Unlock()
	if signals == nil {
		return
	}
	select {
	case signals <- struct{}{}:
	default:
	}
}

// run is the Observer's single owning goroutine: it is the only code that
// reads or writes snap, so no lock is needed around that field here;
// pending is also reached by Drain and is written under mu.
func (o *Observer) run(root string, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	o.mu.Lock()
	done := o.done
	interval := o.PollInterval
	o.mu.Unlock()
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case <-ticker.C:
			o.diffNow(root)

		case <-o.signals:
			o.diffNow(root)

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				// A newly created directory needs its own watch so writes
				// inside it are observed too.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			o.sendSignal()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			o.Logger.Debug().Err(err).Msg("fswatch: notification error")
		}
	}
}

// diffNow takes a fresh snapshot, diffs it against the stored one, merges
// any resulting changes into pending (last-write-wins per path within the
// current drain pass), and notifies the caller if anything changed. diff
// itself works in root-relative paths; diffNow rewrites each one to an
// absolute path under o.resolvedRoot before it is buffered, so callers
// never see a bare relative name.
func (o *Observer) diffNow(root string) {
	next, err := takeSnapshot(root)
	if err != nil {
		o.Logger.Debug().Err(err).Str("root", root).Msg("fswatch: snapshot enumeration failed, retrying next tick")
		return
	}

	now := time.Now()
	changes := diff(o.snap, next, now)
	o.snap = next

	if len(changes) == 0 {
		return
	}

	o.mu.Lock()
	for _, c := range changes {
		c.Path = filepath.Join(o.resolvedRoot, c.Path)
		o.pending[c.Path] = c
	}
	onChange := o.onChange
	o.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// addWatchesRecursive adds a kernel watch on root and every subdirectory
// beneath it. Individual Add failures are swallowed: a missing watch on
// one subtree degrades to polling for that subtree, it does not fail the
// whole Observer.
func addWatchesRecursive(watcher *fsnotify.Watcher, root string) error {
	if err := watcher.Add(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		_ = addWatchesRecursive(watcher, filepath.Join(root, e.Name()))
	}
	return nil
}
