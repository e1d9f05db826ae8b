package attention

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kylesnowschwartz/copilot-attnwatch/fswatch"
)

// DefaultDebounce is the quiet interval after the last change notification
// before a re-scan is dispatched.
const DefaultDebounce = 500 * time.Millisecond

// Subscriber receives the current attention-required conversation list
// after each coalesced burst of filesystem changes.
type Subscriber func(conversations []Conversation)

// Watcher is AttentionWatcher: it owns a fswatch.Observer, re-scans the
// root on every observed change (debounced), and dispatches to exactly one
// Subscriber per coalesced burst.
type Watcher struct {
	Debounce time.Duration
	Logger   zerolog.Logger

	mu         sync.Mutex
	observer   *fswatch.Observer
	root       string
	subscriber Subscriber
	startedAt  time.Time
	active     bool
	timer      *time.Timer
	signals    chan struct{}
	done       chan struct{}
}

// NewWatcher constructs an idle Watcher. Call Start to begin observing.
func NewWatcher() *Watcher {
	return &Watcher{Debounce: DefaultDebounce}
}

// Start begins observing root and records the monotonic watermark used by
// CurrentAttentionList to hide historical sessions. Fails with the
// Observer's start errors (root-not-a-directory, cannot-open-root).
func (w *Watcher) Start(root string, subscriber Subscriber) error {
	w.mu.Lock()
	if w.active {
		w.mu.Unlock()
		return nil
	}

	observer := fswatch.NewObserver()
	observer.Logger = w.Logger
	w.observer = observer
	w.root = root
	w.subscriber = subscriber
	w.startedAt = time.Now()
	w.signals = make(chan struct{}, 1)
	w.done = make(chan struct{})
	w.active = true
	done := w.done
	w.mu.Unlock()

	if err := observer.Start(root, w.scheduleScan); err != nil {
		w.mu.Lock()
		w.active = false
		w.mu.Unlock()
		return err
	}

	go w.run(done)
	return nil
}

// Stop cancels the Observer, the pending debounced scan (if any), and
// clears the watermark. Idempotent; safe to call from any context. After
// Stop returns, no further subscriber callbacks occur.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return
	}
	w.active = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	observer := w.observer
	done := w.done
	w.startedAt = time.Time{}
	w.mu.Unlock()

	close(done)
	if observer != nil {
		observer.Stop()
	}
}

// IsActive reports whether the Watcher is currently observing.
func (w *Watcher) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// CurrentAttentionList performs its own synchronous scan (it does not wait
// on the debounce timer) and returns conversations whose status is
// attention-required and whose log file postdates the start-time
// watermark.
func (w *Watcher) CurrentAttentionList() []Conversation {
	w.mu.Lock()
	root := w.root
	startedAt := w.startedAt
	active := w.active
	logger := w.Logger
	w.mu.Unlock()

	if !active {
		return nil
	}
	return scanAndFilter(root, startedAt, logger)
}

// scheduleScan is the Observer's onChange callback: it (re)starts the
// debounce timer. A timer firing sends a non-blocking signal that the run
// goroutine turns into a scan + dispatch.
func (w *Watcher) scheduleScan() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce(), w.sendSignal)
	w.mu.Unlock()
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

func (w *Watcher) sendSignal() {
	w.mu.Lock()
	signals := w.signals
	w.mu.Unlock()
	if signals == nil {
		return
	}
	select {
	case signals <- struct{}{}:
	default:
	}
}

// run is the Watcher's single owning goroutine: it is the only code that
// invokes the subscriber, so invocations are serialized by construction.
func (w *Watcher) run(done chan struct{}) {
	w.mu.Lock()
	signals := w.signals
	w.mu.Unlock()

	for {
		select {
		case <-done:
			return
		case <-signals:
			w.mu.Lock()
			root := w.root
			startedAt := w.startedAt
			subscriber := w.subscriber
			logger := w.Logger
			active := w.active
			w.mu.Unlock()
			if !active {
				return
			}
			conversations := scanAndFilter(root, startedAt, logger)
			if subscriber != nil {
				subscriber(conversations)
			}
		}
	}
}
