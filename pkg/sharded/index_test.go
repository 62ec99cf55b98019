package sharded

import (
	"context"
	"encoding/json"
	"testing"

	_ "gocloud.dev/blob/memblob"
)

func TestBuildIndex(t *testing.T) {
	records := []Record{
		Record(`{"id":1,"name":"Alpha","first_release_date":1136073600}`),
		Record(`{"id":2,"name":"Beta"}`),
		Record(`{"id":"x3","name":"Gamma","first_release_date":null}`),
	}

	entries, skipped := BuildIndex(records, 2)
	if skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", skipped)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if entries[0].ID != "1" || entries[0].Name != "Alpha" {
		t.Errorf("unexpected entry 0: %+v", entries[0])
	}
	if entries[0].FirstReleaseDate == nil || *entries[0].FirstReleaseDate != 1136073600 {
		t.Errorf("expected release date 1136073600, got %v", entries[0].FirstReleaseDate)
	}
	if entries[1].FirstReleaseDate != nil {
		t.Errorf("expected nil release date, got %v", entries[1].FirstReleaseDate)
	}
	if entries[2].ID != "x3" {
		t.Errorf("expected string id preserved, got %q", entries[2].ID)
	}

	// shard size 2: positions 0,1 -> file 1; position 2 -> file 2
	wantFiles := []int{1, 1, 2}
	for i, e := range entries {
		if e.FileNumber != wantFiles[i] {
			t.Errorf("entry %d: expected file_number %d, got %d", i, wantFiles[i], e.FileNumber)
		}
	}
}

func TestBuildIndexSkipsInvalid(t *testing.T) {
	records := []Record{
		Record(`{"id":1,"name":"Valid"}`),
		Record(`{"name":"No ID"}`),
		Record(`{"id":2,"name":""}`),
		Record(`{"id":3}`),
		Record(`"not an object"`),
		Record(`[1,2,3]`),
		Record(`null`),
		Record(`{"id":null,"name":"Null ID"}`),
		Record(`{"id":{"nested":true},"name":"Object ID"}`),
	}

	entries, skipped := BuildIndex(records, 100)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(entries), entries)
	}
	if entries[0].ID != "1" {
		t.Errorf("expected id 1, got %q", entries[0].ID)
	}
	if skipped != 8 {
		t.Errorf("expected 8 skipped, got %d", skipped)
	}
}

func TestBuildIndexDedup(t *testing.T) {
	records := []Record{
		Record(`{"id":7,"name":"First"}`),
		Record(`{"id":7,"name":"Second"}`),
		Record(`{"id":"7","name":"Third"}`),
	}

	entries, skipped := BuildIndex(records, 100)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	// First occurrence wins; "7" as a string normalizes to the same id.
	if entries[0].Name != "First" {
		t.Errorf("expected first occurrence to win, got %q", entries[0].Name)
	}
	if skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", skipped)
	}
}

// Records skipped by validation still occupy their shard position, so entries
// after them keep the file number of the unfiltered sequence.
func TestBuildIndexFileNumberUsesUnfilteredPosition(t *testing.T) {
	records := []Record{
		Record(`{"id":1,"name":"A"}`),
		Record(`{"id":2,"name":"B"}`),
		Record(`{"id":3}`), // no name: skipped, but holds position 2
		Record(`{"id":4,"name":"D"}`),
		Record(`{"id":5,"name":"E"}`),
	}

	entries, skipped := BuildIndex(records, 3)
	if skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", skipped)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	want := map[string]int{"1": 1, "2": 1, "4": 2, "5": 2}
	for _, e := range entries {
		if want[e.ID] != e.FileNumber {
			t.Errorf("id %s: expected file_number %d, got %d", e.ID, want[e.ID], e.FileNumber)
		}
	}
}

func TestWriteIndex(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t, ctx)

	date := 1136073600.0
	entries := []Entry{
		{ID: "1", Name: "Alpha", FirstReleaseDate: &date, FileNumber: 1},
		{ID: "2", Name: "Beta", FileNumber: 1},
	}
	if err := WriteIndex(ctx, bucket, entries); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}

	data, err := bucket.ReadAll(ctx, IndexName)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal index: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0]["id"] != "1" || got[0]["file_number"] != 1.0 {
		t.Errorf("unexpected entry 0: %v", got[0])
	}
	if got[0]["first_release_date"] != date {
		t.Errorf("expected first_release_date %v, got %v", date, got[0]["first_release_date"])
	}
	// Absent date serializes as explicit null.
	if v, ok := got[1]["first_release_date"]; !ok || v != nil {
		t.Errorf("expected null first_release_date, got %v (present=%v)", v, ok)
	}
}

func TestWriteIndexEmpty(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t, ctx)

	if err := WriteIndex(ctx, bucket, []Entry{}); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	data, err := bucket.ReadAll(ctx, IndexName)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected empty array, got %s", data)
	}
}
