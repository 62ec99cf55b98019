// Package progress provides human-readable progress reporting for pipeline runs.
//
// The reporter tracks page and record counts during collection, plus shard
// and index-skip counts from the output stage, and prints a run summary.
// It is purely observational: nothing in the pipeline depends on its state.
package progress
