package fswatch

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// entry is one item in a snapshot: everything the diff routine needs to
// decide whether a path changed.
type entry struct {
	modTime time.Time
	size    int64
	isDir   bool
}

// snapshot is a full recursive enumeration of a root, keyed by the path
// relative to the (symlink-resolved) root. The empty relative path (the
// root itself) is never a key.
type snapshot map[string]entry

// takeSnapshot walks root recursively, resolving root itself through any
// symlinks first so that aliased paths (e.g. macOS's /tmp -> /private/tmp)
// do not produce phantom deltas between ticks. Individual symlinked
// children are followed to their target's metadata; a broken symlink is
// skipped rather than failing the whole snapshot.
func takeSnapshot(root string) (snapshot, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, err
	}

	snap := make(snapshot)
	walkErr := filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Swallowed by the caller's tick-level retry semantics; continuing
			// the walk gives the best partial snapshot available.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(resolved, path)
		if relErr != nil || rel == "." {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, statErr := os.Stat(path)
			if statErr != nil {
				// Broken symlink: skip, do not record.
				return nil
			}
			snap[rel] = entry{modTime: target.ModTime(), size: target.Size(), isDir: target.IsDir()}
			if target.IsDir() {
				// Do not descend into a symlinked directory: walking the
				// resolved root already covers it if it lives under root,
				// and descending risks an infinite loop for self-referential
				// links.
				return filepath.SkipDir
			}
			return nil
		}

		snap[rel] = entry{modTime: info.ModTime(), size: info.Size(), isDir: info.IsDir()}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return snap, nil
}

// diff compares two snapshots and returns the ChangeRecords implied by the
// transition from old to next, stamped with now. A key present in next but
// not old is created; present in both but differing in mtime or size is
// modified; present in old but not next is deleted. renamed is never
// produced here; reserved for a future identity-preserving diff. Paths in
// the returned records are root-relative; diffNow rewrites them to
// absolute before they leave the package.
func diff(old, next snapshot, now time.Time) []ChangeRecord {
	var out []ChangeRecord

	for rel, ne := range next {
		oe, existed := old[rel]
		switch {
		case !existed:
			out = append(out, ChangeRecord{Path: rel, Kind: ChangeCreated, DetectedAt: now})
		case !oe.modTime.Equal(ne.modTime) || oe.size != ne.size:
			out = append(out, ChangeRecord{Path: rel, Kind: ChangeModified, DetectedAt: now})
		}
	}

	for rel := range old {
		if _, stillPresent := next[rel]; !stillPresent {
			out = append(out, ChangeRecord{Path: rel, Kind: ChangeDeleted, DetectedAt: now})
		}
	}

	return out
}
