package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/Paapzz/Gamelist/internal/collector"
	"github.com/Paapzz/Gamelist/internal/config"
	"github.com/Paapzz/Gamelist/internal/pipeline"
	"github.com/Paapzz/Gamelist/internal/progress"
)

func runOnce(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)

	configPath := fs.String("config", "", "YAML config file")
	endpoint := fs.String("endpoint", "", "Dataset endpoint URL")
	output := fs.String("output", "", "Output bucket URL or local directory")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: gamelist run [options]

Fetch the full dataset from the endpoint and write games_<n>.json shards,
index.json, and search_index.json to the output location.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(*configPath, *endpoint, *output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[gamelist] Received interrupt, shutting down...")
		cancel()
	}()

	logger := newLogger(*verbose)

	bucket, err := openBucket(ctx, cfg.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer bucket.Close()

	var reporter *progress.Reporter
	if !*quiet {
		reporter = progress.NewReporter(progress.Options{Source: cfg.Endpoint})
	}

	err = pipeline.Run(ctx, bucket, pipeline.Options{
		Config:   cfg,
		Logger:   logger,
		Progress: reporter,
	})
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, collector.ErrNoRecords):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitFetchFailed
	case errors.Is(err, context.Canceled):
		return ExitGeneralError
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
}

// loadConfig builds the effective configuration: defaults, then the YAML
// file, then environment variables, then flag overrides.
func loadConfig(path, endpoint, output string) (config.Config, error) {
	cfg := config.Default()

	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	cfg = cfg.Merge(config.Config{Endpoint: endpoint, Output: output})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openBucket opens the output location: a gocloud bucket URL (s3://, gs://,
// file://) or a plain local directory, which is created if missing.
func openBucket(ctx context.Context, spec string) (*blob.Bucket, error) {
	if strings.Contains(spec, "://") {
		return blob.OpenBucket(ctx, spec)
	}
	if err := os.MkdirAll(spec, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return fileblob.OpenBucket(spec, nil)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
