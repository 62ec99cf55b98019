package sharded

import (
	"context"
	"encoding/json"
	"fmt"

	"gocloud.dev/blob"
)

// Entry is one search index row: enough to render a search result and locate
// the shard file holding the full record.
type Entry struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	FirstReleaseDate *float64 `json:"first_release_date"`
	FileNumber       int      `json:"file_number"`
}

// BuildIndex walks records in sequence order and produces one Entry per
// record that passes validation, plus the count of records that were skipped.
// A record is skipped when it is not a JSON object, lacks a scalar id, lacks
// a non-empty name, or repeats an id seen earlier in the sequence. Skipped
// records still occupy their position in the shard files.
//
// FileNumber is derived from the record's position in the full sequence, not
// its position among valid records: a lookup must resolve to the shard file
// the raw record actually lives in.
func BuildIndex(records []Record, shardSize int) ([]Entry, int) {
	seen := make(map[string]struct{}, len(records))
	entries := make([]Entry, 0, len(records))
	skipped := 0

	for i, r := range records {
		f, ok := probe(r)
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[f.id]; dup {
			skipped++
			continue
		}
		seen[f.id] = struct{}{}

		entries = append(entries, Entry{
			ID:               f.id,
			Name:             f.name,
			FirstReleaseDate: f.releaseDate,
			FileNumber:       i/shardSize + 1,
		})
	}

	return entries, skipped
}

// WriteIndex serializes entries to the search index artifact in the bucket.
// The write is skipped when the stored index is already identical.
func WriteIndex(ctx context.Context, bucket *blob.Bucket, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal search index: %w", err)
	}
	if _, err := writeIfChanged(ctx, bucket, IndexName, data); err != nil {
		return fmt.Errorf("write search index: %w", err)
	}
	return nil
}
