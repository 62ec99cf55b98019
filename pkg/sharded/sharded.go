package sharded

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Artifact names within the bucket.
const (
	ManifestName = "index.json"
	IndexName    = "search_index.json"
	CombinedName = "all_games.json"
)

// ShardName returns the artifact name for the 1-based shard number n.
func ShardName(n int) string {
	return fmt.Sprintf("games_%d.json", n)
}

// Manifest summarizes a completed write. It is always derived from the same
// sequence the shard files were cut from, so its counts match the shards
// actually present in the bucket.
type Manifest struct {
	TotalGames   int    `json:"total_games"`
	TotalFiles   int    `json:"total_files"`
	LastUpdated  string `json:"last_updated"`
	GamesPerFile int    `json:"games_per_file"`
}

// Options configures a sharded write.
type Options struct {
	ShardSize int
	Combined  bool // also write the full sequence as all_games.json

	now func() time.Time
}

// Option is a functional option for configuring sharded operations.
type Option func(*Options)

// WithShardSize sets the maximum number of records per shard file.
func WithShardSize(n int) Option {
	return func(o *Options) {
		o.ShardSize = n
	}
}

// WithCombined enables writing the full record sequence as a single
// all_games.json artifact in addition to the shard files.
func WithCombined(combined bool) Option {
	return func(o *Options) {
		o.Combined = combined
	}
}

// withNow overrides the manifest timestamp source. Test hook.
func withNow(now func() time.Time) Option {
	return func(o *Options) {
		o.now = now
	}
}

// Write splits records into contiguous shard files of at most ShardSize
// records each, writes them plus the manifest to the bucket, and returns the
// manifest. Shards are numbered 1..ceil(len(records)/ShardSize) with no gaps;
// the last shard may be smaller.
//
// Any serialization or storage error aborts the write: a partial shard set
// with a mismatched manifest must never be considered valid output.
func Write(ctx context.Context, bucket *blob.Bucket, records []Record, options ...Option) (*Manifest, error) {
	opts := Options{now: time.Now}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.ShardSize <= 0 {
		return nil, errors.New("sharded: shard size must be positive")
	}

	total := len(records)
	files := (total + opts.ShardSize - 1) / opts.ShardSize

	for n := 1; n <= files; n++ {
		start := (n - 1) * opts.ShardSize
		end := start + opts.ShardSize
		if end > total {
			end = total
		}

		data, err := json.Marshal(records[start:end])
		if err != nil {
			return nil, fmt.Errorf("marshal shard %d: %w", n, err)
		}
		if _, err := writeIfChanged(ctx, bucket, ShardName(n), data); err != nil {
			return nil, fmt.Errorf("write shard %d: %w", n, err)
		}
	}

	if opts.Combined {
		data, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("marshal combined file: %w", err)
		}
		if _, err := writeIfChanged(ctx, bucket, CombinedName, data); err != nil {
			return nil, fmt.Errorf("write combined file: %w", err)
		}
	}

	manifest := &Manifest{
		TotalGames:   total,
		TotalFiles:   files,
		LastUpdated:  opts.now().UTC().Format("2006-01-02T15:04:05Z"),
		GamesPerFile: opts.ShardSize,
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if _, err := writeIfChanged(ctx, bucket, ManifestName, data); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	return manifest, nil
}

// writeIfChanged writes data to key unless the stored content is already
// byte-identical. Reports whether a write happened. Skipping identical
// content keeps the downstream publishing step quiet when nothing changed.
func writeIfChanged(ctx context.Context, bucket *blob.Bucket, key string, data []byte) (bool, error) {
	existing, err := bucket.ReadAll(ctx, key)
	if err != nil && !isNotExist(err) {
		return false, err
	}
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err := bucket.WriteAll(ctx, key, data, nil); err != nil {
		return false, err
	}
	return true, nil
}

// isNotExist returns true if the error indicates the object doesn't exist.
func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}
