// Package attention implements AttentionWatcher: it owns a DirectoryObserver,
// re-scans conversations under a root on each observed change, runs the
// status analyzer over each one, debounces bursty notifications, and
// surfaces only conversations that newly need the user's attention since
// Start was called.
package attention

import (
	"time"

	"github.com/kylesnowschwartz/copilot-attnwatch/status"
	"github.com/kylesnowschwartz/copilot-attnwatch/workspace"
)

// StorageKind distinguishes a folder-backed conversation from a bare
// top-level .jsonl file.
type StorageKind string

const (
	StorageFolder StorageKind = "folder"
	StorageFlat   StorageKind = "flat"
)

// Conversation is a value synthesized fresh on every scan; it carries no
// identity beyond its ID, which is stable only within one scan pass.
type Conversation struct {
	ID           string
	StorageKind  StorageKind
	EventCount   int
	LastModified time.Time
	Metadata     workspace.Meta
	HasMetadata  bool
	Status       status.Status
}
