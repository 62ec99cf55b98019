package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"

	"github.com/Paapzz/Gamelist/internal/pipeline"
)

func runSchedule(args []string) int {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)

	configPath := fs.String("config", "", "YAML config file")
	endpoint := fs.String("endpoint", "", "Dataset endpoint URL")
	output := fs.String("output", "", "Output bucket URL or local directory")
	cronExpr := fs.String("cron", "0 3 * * *", "Cron expression for pipeline runs")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: gamelist schedule [options]

Run the pipeline on a cron schedule until interrupted. Overlapping runs are
never started; a tick that fires while a run is in flight is rescheduled.

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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(*verbose)

	bucket, err := openBucket(ctx, cfg.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer bucket.Close()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create scheduler: %v\n", err)
		return ExitGeneralError
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(*cronExpr, false),
		gocron.NewTask(func() {
			logger.Info("scheduled run starting", "cron", *cronExpr)
			if err := pipeline.Run(ctx, bucket, pipeline.Options{
				Config: cfg,
				Logger: logger,
			}); err != nil {
				logger.Error("scheduled run failed", "error", err)
				return
			}
			logger.Info("scheduled run finished")
		}),
		gocron.WithName("gamelist-run"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: schedule job: %v\n", err)
		return ExitInvalidArgs
	}

	scheduler.Start()
	logger.Info("scheduler started", "cron", *cronExpr)

	<-ctx.Done()
	fmt.Fprintln(os.Stderr, "\n[gamelist] Received interrupt, shutting down...")
	if err := scheduler.Shutdown(); err != nil {
		logger.Error("scheduler shutdown", "error", err)
		return ExitGeneralError
	}
	return ExitSuccess
}
