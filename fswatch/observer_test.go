package fswatch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kylesnowschwartz/copilot-attnwatch/fswatch"
)

func TestStart_RootNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	o := fswatch.NewObserver()
	if err := o.Start(file, func() {}); err == nil {
		t.Fatal("expected Start to fail for a non-directory root")
	}
}

func TestStart_MissingRoot(t *testing.T) {
	o := fswatch.NewObserver()
	if err := o.Start(filepath.Join(t.TempDir(), "does-not-exist"), func() {}); err == nil {
		t.Fatal("expected Start to fail for a missing root")
	}
}

func TestObserver_DetectsNewFile(t *testing.T) {
	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	wantPath := filepath.Join(resolved, "conv-1.jsonl")

	o := fswatch.NewObserver()
	o.PollInterval = 30 * time.Millisecond

	notified := make(chan struct{}, 8)
	if err := o.Start(dir, func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer o.Stop()

	if err := os.WriteFile(filepath.Join(dir, "conv-1.jsonl"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-notified:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	changes := o.Drain()
	found := false
	for _, c := range changes {
		if c.Path == wantPath && c.Kind == fswatch.ChangeCreated {
			found = true
		}
	}
	if !found {
		t.Fatalf("Drain() = %+v, want a created record for %s", changes, wantPath)
	}
}

func TestObserver_DrainResetsBuffer(t *testing.T) {
	dir := t.TempDir()
	o := fswatch.NewObserver()
	o.PollInterval = 20 * time.Millisecond

	notified := make(chan struct{}, 8)
	if err := o.Start(dir, func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer o.Stop()

	if err := os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-notified:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out")
	}
	first := o.Drain()
	if len(first) == 0 {
		t.Fatal("expected at least one change on first drain")
	}
	if second := o.Drain(); len(second) != 0 {
		t.Fatalf("second Drain() = %+v, want empty after reset", second)
	}
}

func TestObserver_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	o := fswatch.NewObserver()
	if err := o.Start(dir, func() {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	o.Stop()
	o.Stop()
}
