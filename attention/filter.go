package attention

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// scanAndFilter runs scan, sorts the result by LastModified descending,
// then narrows it to conversations that are attention-required and whose
// log postdates the start-time watermark. A scan error (e.g. the root
// itself disappeared) yields an empty list rather than a panic; the next
// debounced scan retries.
func scanAndFilter(root string, startedAt time.Time, logger zerolog.Logger) []Conversation {
	all, err := scan(root, logger)
	if err != nil {
		logger.Debug().Err(err).Str("root", root).Msg("attention: scan failed, will retry on next change")
		return nil
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].LastModified.After(all[j].LastModified)
	})

	var attention []Conversation
	for _, c := range all {
		if !c.Status.Code.IsAttentionRequired() {
			continue
		}
		if c.LastModified.Before(startedAt) {
			continue
		}
		attention = append(attention, c)
	}
	return attention
}
