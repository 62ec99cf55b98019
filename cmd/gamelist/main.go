// Command gamelist runs the games dataset pipeline: fetch the full paginated
// dataset, re-shard it into fixed-size JSON files, and write a manifest and
// search index alongside them.
//
// Logging:
//   - Base logger is created here with output format and level
//   - Logger is passed to all components via dependency injection
//   - No global slog configuration
package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitFetchFailed  = 3
	ExitStorageError = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "run":
		return runOnce(cmdArgs)
	case "schedule":
		return runSchedule(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: gamelist <command> [options]

Commands:
  run       Fetch the dataset once and write shard/index artifacts
  schedule  Run the pipeline on a cron schedule until interrupted

Run 'gamelist <command> -h' for command-specific help.`)
}
