package sharded

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func openTestBucket(t *testing.T, ctx context.Context) *blob.Bucket {
	t.Helper()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { bucket.Close() })
	return bucket
}

func testRecords(n int) []Record {
	records := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, Record(fmt.Sprintf(`{"id":%d,"name":"Game %d"}`, i, i)))
	}
	return records
}

func readShard(t *testing.T, ctx context.Context, bucket *blob.Bucket, n int) []map[string]any {
	t.Helper()
	data, err := bucket.ReadAll(ctx, ShardName(n))
	if err != nil {
		t.Fatalf("read shard %d: %v", n, err)
	}
	var got []map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal shard %d: %v", n, err)
	}
	return got
}

func TestWrite(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t, ctx)

	// 7 records at shard size 3: shards of 3, 3, 1
	records := testRecords(7)
	manifest, err := Write(ctx, bucket, records, WithShardSize(3))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if manifest.TotalGames != 7 {
		t.Errorf("expected total_games 7, got %d", manifest.TotalGames)
	}
	if manifest.TotalFiles != 3 {
		t.Errorf("expected total_files 3, got %d", manifest.TotalFiles)
	}
	if manifest.GamesPerFile != 3 {
		t.Errorf("expected games_per_file 3, got %d", manifest.GamesPerFile)
	}

	// Every record must land in shard floor(i/3)+1 and shard sizes must sum
	// to the record total.
	total := 0
	for n := 1; n <= manifest.TotalFiles; n++ {
		shard := readShard(t, ctx, bucket, n)
		total += len(shard)
		for j, rec := range shard {
			wantID := float64((n-1)*3 + j + 1)
			if rec["id"] != wantID {
				t.Errorf("shard %d position %d: expected id %v, got %v", n, j, wantID, rec["id"])
			}
		}
	}
	if total != len(records) {
		t.Errorf("shard sizes sum to %d, want %d", total, len(records))
	}

	// No shard past the last one.
	if exists, _ := bucket.Exists(ctx, ShardName(4)); exists {
		t.Error("unexpected shard 4")
	}
}

func TestWriteExactMultiple(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t, ctx)

	manifest, err := Write(ctx, bucket, testRecords(6), WithShardSize(3))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if manifest.TotalFiles != 2 {
		t.Errorf("expected total_files 2, got %d", manifest.TotalFiles)
	}
	if got := readShard(t, ctx, bucket, 2); len(got) != 3 {
		t.Errorf("expected last shard of 3, got %d", len(got))
	}
}

func TestWriteManifest(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t, ctx)

	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	_, err := Write(ctx, bucket, testRecords(5), WithShardSize(3), withNow(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := bucket.ReadAll(ctx, ManifestName)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if manifest.LastUpdated != "2025-01-15T10:30:00Z" {
		t.Errorf("expected last_updated 2025-01-15T10:30:00Z, got %s", manifest.LastUpdated)
	}
	if manifest.TotalGames != 5 || manifest.TotalFiles != 2 {
		t.Errorf("unexpected manifest counts: %+v", manifest)
	}
}

func TestWriteCombined(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t, ctx)

	records := testRecords(5)
	if _, err := Write(ctx, bucket, records, WithShardSize(2), WithCombined(true)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := bucket.ReadAll(ctx, CombinedName)
	if err != nil {
		t.Fatalf("read combined file: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal combined file: %v", err)
	}
	if len(got) != len(records) {
		t.Errorf("expected %d records in combined file, got %d", len(records), len(got))
	}
}

func TestWriteInvalidShardSize(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t, ctx)

	if _, err := Write(ctx, bucket, testRecords(1)); err == nil {
		t.Error("expected error for missing shard size")
	}
	if _, err := Write(ctx, bucket, testRecords(1), WithShardSize(-1)); err == nil {
		t.Error("expected error for negative shard size")
	}
}

func TestWriteMalformedRecord(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t, ctx)

	records := []Record{Record(`{"id":1,"name":"ok"}`), Record(`{not json`)}
	if _, err := Write(ctx, bucket, records, WithShardSize(10)); err == nil {
		t.Error("expected serialization error for malformed raw record")
	}
}

func TestWriteIfChanged(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t, ctx)

	data := []byte(`{"a":1}`)
	wrote, err := writeIfChanged(ctx, bucket, "key.json", data)
	if err != nil {
		t.Fatalf("writeIfChanged: %v", err)
	}
	if !wrote {
		t.Error("expected first write to happen")
	}

	wrote, err = writeIfChanged(ctx, bucket, "key.json", data)
	if err != nil {
		t.Fatalf("writeIfChanged: %v", err)
	}
	if wrote {
		t.Error("expected identical content to be skipped")
	}

	wrote, err = writeIfChanged(ctx, bucket, "key.json", []byte(`{"a":2}`))
	if err != nil {
		t.Fatalf("writeIfChanged: %v", err)
	}
	if !wrote {
		t.Error("expected changed content to be written")
	}
}
