package attention_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kylesnowschwartz/copilot-attnwatch/attention"
)

const waitingForUserBody = `{"type":"user-message"}` + "\n" +
	`{"type":"assistant-turn-start"}` + "\n" +
	`{"type":"assistant-message","data":{"content":"I've completed the task."}}` + "\n" +
	`{"type":"assistant-turn-end"}` + "\n"

func TestWatcher_StartFailsOnNonDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "not-a-dir")
	writeFile(t, file, "x")

	w := attention.NewWatcher()
	if err := w.Start(file, func([]attention.Conversation) {}); err == nil {
		t.Fatal("expected Start to fail for a non-directory root")
	}
}

func TestWatcher_SurfacesAttentionRequiredConversationCreatedAfterStart(t *testing.T) {
	root := t.TempDir()

	w := attention.NewWatcher()
	w.Debounce = 30 * time.Millisecond

	var mu sync.Mutex
	var lastDelivery []attention.Conversation
	delivered := make(chan struct{}, 8)

	err := w.Start(root, func(convs []attention.Conversation) {
		mu.Lock()
		lastDelivery = convs
		mu.Unlock()
		select {
		case delivered <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if !w.IsActive() {
		t.Fatal("expected watcher to be active after Start")
	}

	writeFile(t, filepath.Join(root, "conv-1.jsonl"), waitingForUserBody)

	select {
	case <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a subscriber dispatch")
	}

	mu.Lock()
	convs := lastDelivery
	mu.Unlock()

	found := false
	for _, c := range convs {
		if c.ID == "conv-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("delivered conversations = %+v, want conv-1 present", convs)
	}
}

func TestWatcher_WatermarkHidesPreExistingConversations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "old.jsonl"), waitingForUserBody)

	w := attention.NewWatcher()
	if err := w.Start(root, func([]attention.Conversation) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	got := w.CurrentAttentionList()
	for _, c := range got {
		if c.ID == "old" {
			t.Errorf("pre-existing conversation %q should be hidden by the start-time watermark", c.ID)
		}
	}
}

func TestWatcher_StopIsIdempotentAndDeactivates(t *testing.T) {
	root := t.TempDir()
	w := attention.NewWatcher()
	if err := w.Start(root, func([]attention.Conversation) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Stop()
	w.Stop()
	if w.IsActive() {
		t.Error("expected watcher to be inactive after Stop")
	}
}

func TestWatcher_CurrentAttentionListOnInactiveWatcherIsEmpty(t *testing.T) {
	w := attention.NewWatcher()
	if got := w.CurrentAttentionList(); got != nil {
		t.Errorf("got %+v, want nil for a watcher that was never started", got)
	}
}
