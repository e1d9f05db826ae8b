package fswatch

import "time"

// ChangeKind classifies one detected filesystem delta.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"

	// ChangeRenamed is reserved for a future identity-preserving diff.
	// No code path in this package emits it yet; a kernel-reported rename
	// surfaces here as a (deleted, created) pair and callers must
	// tolerate that.
	ChangeRenamed ChangeKind = "renamed"
)

// ChangeRecord is one item in the Observer's output stream.
type ChangeRecord struct {
	Path       string // absolute path, rooted under the Observer's resolved watch root
	Kind       ChangeKind
	DetectedAt time.Time
}
