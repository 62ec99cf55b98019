// Package config defines configuration structures for the gamelist pipeline.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (GAMELIST_ prefix)
//   - YAML configuration file
//
// Defaults are compiled in; a run needs nothing beyond the dataset endpoint.
//
//	endpoint: https://example.com/games
//	output: data
//	page_size: 500
//	max_records: 400000
//	shard_size: 10000
//	outer_attempts: 10
//	page_delay: 400ms
//	cooldown: 1m
//	retry:
//	  attempts: 5
//	  backoff: 1s
//	  max_backoff: 30s
package config
