package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Paapzz/Gamelist/internal/logging"
	"github.com/Paapzz/Gamelist/internal/progress"
	"github.com/Paapzz/Gamelist/pkg/sharded"
)

// ErrNoRecords is returned when every collection attempt yields zero records.
// This is the only fatal collection outcome: once anything has been
// accumulated, the pipeline proceeds with what it has.
var ErrNoRecords = errors.New("collector: no records collected")

// PageFetcher fetches one page of records at an offset. *api.Client satisfies
// this; tests use scripted fakes.
type PageFetcher interface {
	FetchPage(ctx context.Context, offset, limit int) ([]sharded.Record, error)
}

// Options configures collection.
type Options struct {
	// MaxRecords is the hard cap on the accumulated sequence.
	MaxRecords int

	// PageSize is the number of records requested per page.
	PageSize int

	// MaxAttempts is how many full passes from offset 0 to make while zero
	// records have been accumulated.
	MaxAttempts int

	// PageRetries is how many times a failed offset is retried in place
	// before the pass is abandoned. These retries sit above the transport's
	// own retry ceiling and do not count against MaxAttempts.
	PageRetries int

	// PageDelay is the politeness pause between successive pages.
	PageDelay time.Duration

	// RetryDelay is the pause before retrying a failed offset.
	RetryDelay time.Duration

	// Cooldown is the pause between empty passes.
	Cooldown time.Duration

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxRecords:  400000,
		PageSize:    500,
		MaxAttempts: 10,
		PageRetries: 3,
		PageDelay:   400 * time.Millisecond,
		RetryDelay:  5 * time.Second,
		Cooldown:    time.Minute,
	}
}

// Collector accumulates the full record sequence from paginated fetches.
// It is the sole writer of the sequence; once Collect returns, the sequence
// is frozen and handed to the output stages read-only.
type Collector struct {
	fetcher PageFetcher
	opts    Options
	logger  *slog.Logger

	// sleep implements all pauses; replaced in tests for determinism.
	sleep func(context.Context, time.Duration) error
}

// New creates a collector around the given fetcher.
func New(fetcher PageFetcher, opts Options, logger *slog.Logger) *Collector {
	logger = logging.Default(logger)
	return &Collector{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger.With("component", "collector"),
		sleep:   sleepCtx,
	}
}

// Collect runs paginated fetching until the dataset ends or the record cap
// is reached, and returns the accumulated sequence truncated to MaxRecords.
// While zero records have been accumulated, a pass is retried from offset 0
// after a cooldown, up to MaxAttempts; only an all-passes-empty outcome is
// an error.
func (c *Collector) Collect(ctx context.Context) ([]sharded.Record, error) {
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		records, err := c.pass(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			if len(records) > c.opts.MaxRecords {
				records = records[:c.opts.MaxRecords]
			}
			c.logger.Info("collection finished", "records", len(records), "attempt", attempt)
			return records, nil
		}

		c.logger.Warn("pass yielded no records",
			"attempt", attempt, "max_attempts", c.opts.MaxAttempts)
		if attempt < c.opts.MaxAttempts {
			if err := c.sleep(ctx, c.opts.Cooldown); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrNoRecords, c.opts.MaxAttempts)
}

// pass is one full pagination sweep from offset 0. A fetch failure pauses and
// retries the same offset; after PageRetries consecutive failures the pass
// ends with whatever has been accumulated so far. An empty page means the end
// of the dataset.
func (c *Collector) pass(ctx context.Context) ([]sharded.Record, error) {
	var records []sharded.Record
	offset := 0
	failures := 0

	for len(records) < c.opts.MaxRecords {
		page, err := c.fetcher.FetchPage(ctx, offset, c.opts.PageSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			if failures > c.opts.PageRetries {
				c.logger.Error("offset exhausted, ending pass",
					"offset", offset, "records", len(records), "error", err)
				return records, nil
			}
			c.logger.Warn("page fetch failed, retrying offset",
				"offset", offset, "failures", failures, "error", err)
			if err := c.sleep(ctx, c.opts.RetryDelay); err != nil {
				return nil, err
			}
			continue
		}
		failures = 0

		if len(page) == 0 {
			c.logger.Debug("empty page, end of dataset", "offset", offset)
			break
		}

		records = append(records, page...)
		if c.opts.Progress != nil {
			c.opts.Progress.PageFetched(offset, len(page))
		}
		c.logger.Debug("page fetched",
			"offset", offset, "page_records", len(page), "total", len(records))

		offset += c.opts.PageSize
		if len(records) >= c.opts.MaxRecords {
			break
		}
		if err := c.sleep(ctx, c.opts.PageDelay); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
