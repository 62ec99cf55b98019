// Package sharded writes a game dataset as a set of fixed-size JSON shard
// files plus lookup artifacts, suitable for serving as static assets.
//
// The record sequence is split into contiguous shards of at most ShardSize
// records. Shard membership is determined purely by a record's position in
// the sequence, so the sequence order must never change between sharding and
// index construction. The package is storage-agnostic via gocloud.dev/blob.
//
// # Writing
//
// Use [Write] to persist the shard files and the [Manifest]:
//
//	manifest, err := sharded.Write(ctx, bucket, records,
//	    sharded.WithShardSize(10000),
//	)
//
// Use [BuildIndex] and [WriteIndex] for the search index:
//
//	entries, skipped := sharded.BuildIndex(records, 10000)
//	err := sharded.WriteIndex(ctx, bucket, entries)
//
// Writes are skipped when the stored artifact is already byte-identical, so
// an unchanged dataset produces no storage churn.
//
// # Storage Layout
//
//	{bucket}/games_1.json       first shard (records 0..ShardSize-1)
//	{bucket}/games_2.json       second shard
//	{bucket}/index.json         manifest
//	{bucket}/search_index.json  search index
//	{bucket}/all_games.json     full sequence (only with WithCombined)
//
// # Manifest Format
//
//	{
//	  "total_games": 123456,
//	  "total_files": 13,
//	  "last_updated": "2025-01-15T10:30:00Z",
//	  "games_per_file": 10000
//	}
package sharded
