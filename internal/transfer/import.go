package transfer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hectorm/xstreamify/internal/models"
)

// ImportFormatError means the document as a whole is unusable (not JSON, or
// not an array). The import is aborted entirely; individual bad records
// inside a valid array are skipped instead.
type ImportFormatError struct {
	Reason string
}

func (e *ImportFormatError) Error() string {
	return fmt.Sprintf("invalid import document: %s", e.Reason)
}

// MergeStats summarizes what an import did.
type MergeStats struct {
	Inserted int `json:"inserted"`
	Replaced int `json:"replaced"`
	Skipped  int `json:"skipped"`
}

// Parse decodes an import document into movie records. Elements that are not
// objects or lack a non-empty title are counted as skipped, not fatal.
func Parse(data []byte) ([]*models.MovieRecord, int, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, 0, &ImportFormatError{Reason: "document must be a JSON array"}
	}

	now := time.Now().UnixMilli()
	var records []*models.MovieRecord
	skipped := 0

	for _, raw := range elements {
		var record models.MovieRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			skipped++
			continue
		}
		record.Title = strings.TrimSpace(record.Title)
		if record.Title == "" {
			skipped++
			continue
		}
		if record.AddedAt <= 0 {
			record.AddedAt = now
		}
		records = append(records, &record)
	}

	return records, skipped, nil
}

// Merge folds incoming records into the existing collection. Per incoming
// record: an id match replaces that record in place; otherwise a normalized
// title match replaces the record while preserving its id; otherwise the
// record is inserted, with a fresh id when it arrived without one. The
// existing collection's order is preserved; inserts append.
func Merge(existing, incoming []*models.MovieRecord) ([]*models.MovieRecord, MergeStats) {
	merged := models.CloneMovies(existing)

	byID := make(map[string]int, len(merged))
	byTitle := make(map[string]int, len(merged))
	for i, m := range merged {
		byID[m.ID] = i
		// When records share a normalized title, the first one wins title
		// matches; later duplicates are only reachable by id.
		key := titleKey(m.Title)
		if _, seen := byTitle[key]; !seen {
			byTitle[key] = i
		}
	}

	var stats MergeStats
	for _, in := range incoming {
		record := in.Clone()

		if pos, ok := byID[record.ID]; ok && record.ID != "" {
			// A retitling replace must stop the old title from matching
			// this position, or a later incoming record bearing the old
			// title would overwrite the record just placed here.
			oldKey := titleKey(merged[pos].Title)
			newKey := titleKey(record.Title)
			if p, indexed := byTitle[oldKey]; indexed && p == pos && oldKey != newKey {
				delete(byTitle, oldKey)
			}
			merged[pos] = record
			if _, seen := byTitle[newKey]; !seen {
				byTitle[newKey] = pos
			}
			stats.Replaced++
			continue
		}

		if pos, ok := byTitle[titleKey(record.Title)]; ok {
			record.ID = merged[pos].ID
			merged[pos] = record
			stats.Replaced++
			continue
		}

		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		merged = append(merged, record)
		byID[record.ID] = len(merged) - 1
		key := titleKey(record.Title)
		if _, seen := byTitle[key]; !seen {
			byTitle[key] = len(merged) - 1
		}
		stats.Inserted++
	}

	return merged, stats
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
