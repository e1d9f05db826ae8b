package attention

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kylesnowschwartz/copilot-attnwatch/logevents"
	"github.com/kylesnowschwartz/copilot-attnwatch/status"
	"github.com/kylesnowschwartz/copilot-attnwatch/workspace"
)

const eventsFileName = "events.jsonl"
const metaFileName = "workspace.yaml"
const jsonlSuffix = ".jsonl"

// scan enumerates root's immediate children (one level deep) and returns
// a Conversation for each entry it can parse. An entry that fails to
// parse is skipped, not fatal to the whole scan.
func scan(root string, logger zerolog.Logger) ([]Conversation, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var out []Conversation
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}

		if e.IsDir() {
			conv, ok := scanFolder(root, e.Name(), logger)
			if ok {
				out = append(out, conv)
			}
			continue
		}

		if strings.HasSuffix(e.Name(), jsonlSuffix) {
			conv, ok := scanFlatFile(root, e.Name(), logger)
			if ok {
				out = append(out, conv)
			}
		}
	}
	return out, nil
}

func scanFolder(root, name string, logger zerolog.Logger) (Conversation, bool) {
	dir := filepath.Join(root, name)
	eventsPath := filepath.Join(dir, eventsFileName)

	info, err := os.Stat(eventsPath)
	if err != nil {
		// Not a conversation folder (no events.jsonl) — not an error, just
		// not a match.
		return Conversation{}, false
	}

	events, err := logevents.ParseFile(eventsPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", eventsPath).Msg("attention: skipping conversation, failed to read events")
		return Conversation{}, false
	}

	meta, hasMeta, err := workspace.Load(filepath.Join(dir, metaFileName))
	if err != nil {
		logger.Warn().Err(err).Str("path", dir).Msg("attention: failed to read workspace metadata, proceeding without it")
	}

	return Conversation{
		ID:           name,
		StorageKind:  StorageFolder,
		EventCount:   len(events),
		LastModified: info.ModTime(),
		Metadata:     meta,
		HasMetadata:  hasMeta,
		Status:       status.Analyze(events),
	}, true
}

func scanFlatFile(root, name string, logger zerolog.Logger) (Conversation, bool) {
	path := filepath.Join(root, name)
	info, err := os.Stat(path)
	if err != nil {
		return Conversation{}, false
	}

	events, err := logevents.ParseFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("attention: skipping conversation, failed to read events")
		return Conversation{}, false
	}

	return Conversation{
		ID:           strings.TrimSuffix(name, jsonlSuffix),
		StorageKind:  StorageFlat,
		EventCount:   len(events),
		LastModified: info.ModTime(),
		Status:       status.Analyze(events),
	}, true
}
