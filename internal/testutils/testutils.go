// Package testutils provides shared test infrastructure.
package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"gocloud.dev/blob"

	"github.com/Paapzz/Gamelist/pkg/sharded"
)

// GameJSON returns a record object with an id, name, and release date.
func GameJSON(id int, name string, releaseDate int64) sharded.Record {
	return sharded.Record(fmt.Sprintf(
		`{"id":%d,"name":%q,"first_release_date":%d}`, id, name, releaseDate))
}

// Games returns n sequential records with ids 1..n.
func Games(n int) []sharded.Record {
	records := make([]sharded.Record, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, GameJSON(i, fmt.Sprintf("Game %d", i), int64(1000000000+i)))
	}
	return records
}

// PageHandler serves records paginated by offset/limit query parameters, the
// way the dataset endpoint does. Offsets past the end return an empty array.
func PageHandler(records []sharded.Record) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		if err != nil || offset < 0 {
			http.Error(w, "bad offset", http.StatusBadRequest)
			return
		}
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}

		end := offset + limit
		if offset > len(records) {
			offset = len(records)
		}
		if end > len(records) {
			end = len(records)
		}

		w.Header().Set("Content-Type", "application/json")
		data, _ := json.Marshal(records[offset:end])
		w.Write(data)
	}
}

// ReadJSON reads a bucket key and unmarshals it into v.
func ReadJSON(t *testing.T, ctx context.Context, bucket *blob.Bucket, key string, v any) {
	t.Helper()

	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal %s: %v", key, err)
	}
}
