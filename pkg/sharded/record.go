package sharded

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Record is one raw game object as returned by the source API. Records are
// carried verbatim: shard files contain exactly the JSON that was fetched,
// whether or not the record passes index validation.
type Record = json.RawMessage

// indexFields holds the few values the search index extracts from a record.
type indexFields struct {
	id          string
	name        string
	releaseDate *float64
}

// probe extracts index fields from a record. ok is false when the record is
// not a JSON object, has no id coercible to a string, or has no non-empty
// string name.
func probe(r Record) (indexFields, bool) {
	dec := json.NewDecoder(bytes.NewReader(r))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return indexFields{}, false
	}

	id, ok := coerceID(obj["id"])
	if !ok {
		return indexFields{}, false
	}

	name, ok := obj["name"].(string)
	if !ok || name == "" {
		return indexFields{}, false
	}

	f := indexFields{id: id, name: name}
	if n, ok := obj["first_release_date"].(json.Number); ok {
		if v, err := n.Float64(); err == nil {
			f.releaseDate = &v
		}
	}

	return f, true
}

// coerceID normalizes a scalar id value to its string form.
// Objects, arrays, null, and absent values are rejected.
func coerceID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", false
		}
		return id, true
	case json.Number:
		return id.String(), true
	case bool:
		return strconv.FormatBool(id), true
	default:
		return "", false
	}
}
