// Package pipeline wires the fetch/shard/index stages into one run.
//
// Control flow is Collector -> (Sharder, Indexer): both output stages consume
// the same frozen record sequence, and neither depends on the other's output.
// The whole run is single-threaded; the only external cancellation mechanism
// is the caller's context.
package pipeline
