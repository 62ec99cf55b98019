package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"gocloud.dev/blob"

	"github.com/Paapzz/Gamelist/internal/api"
	"github.com/Paapzz/Gamelist/internal/collector"
	"github.com/Paapzz/Gamelist/internal/config"
	"github.com/Paapzz/Gamelist/internal/logging"
	"github.com/Paapzz/Gamelist/internal/progress"
	"github.com/Paapzz/Gamelist/pkg/sharded"
)

// Options configures a pipeline run.
type Options struct {
	// Config provides all pipeline parameters.
	Config config.Config

	// Logger is an optional structured logger.
	Logger *slog.Logger

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// Run executes one full fetch/shard/index cycle against the bucket.
//
// Collection failure aborts the run before anything is written; output
// failures abort mid-write, leaving the external publishing step to decide
// what to do with the staging area. On success the bucket holds a consistent
// shard set, manifest, and search index derived from one record sequence.
func Run(ctx context.Context, bucket *blob.Bucket, opts Options) error {
	cfg := opts.Config
	logger := logging.Default(opts.Logger).With("component", "pipeline")

	if opts.Progress != nil {
		opts.Progress.Start()
	}

	client := api.NewClient(api.Options{
		BaseURL: cfg.Endpoint,
		Timeout: cfg.RequestTimeout,
		Retry: api.Policy{
			Attempts:   cfg.Retry.Attempts,
			Backoff:    cfg.Retry.Backoff,
			MaxBackoff: cfg.Retry.MaxBackoff,
		},
	})

	coll := collector.New(client, collector.Options{
		MaxRecords:  cfg.MaxRecords,
		PageSize:    cfg.PageSize,
		MaxAttempts: cfg.OuterAttempts,
		PageRetries: cfg.PageRetries,
		PageDelay:   cfg.PageDelay,
		RetryDelay:  cfg.RetryDelay,
		Cooldown:    cfg.Cooldown,
		Progress:    opts.Progress,
	}, opts.Logger)

	records, err := coll.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect records: %w", err)
	}

	entries, skipped := sharded.BuildIndex(records, cfg.ShardSize)

	manifest, err := sharded.Write(ctx, bucket, records,
		sharded.WithShardSize(cfg.ShardSize),
		sharded.WithCombined(cfg.Combined),
	)
	if err != nil {
		return fmt.Errorf("write shards: %w", err)
	}

	if err := sharded.WriteIndex(ctx, bucket, entries); err != nil {
		return err
	}

	logger.Info("run complete",
		"records", manifest.TotalGames,
		"shards", manifest.TotalFiles,
		"index_entries", len(entries),
		"index_skipped", skipped,
	)
	if opts.Progress != nil {
		opts.Progress.SetShards(manifest.TotalFiles)
		opts.Progress.SetSkipped(skipped)
		opts.Progress.Finish()
	}

	return nil
}
