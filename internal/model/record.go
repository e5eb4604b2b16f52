package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TableRecord is a mapping from JsonPath to a JSON scalar value
// (null | bool | int64 | float64 | string). Arrays and nested objects
// are never present as values: objects are flattened into dotted
// JsonPaths by the handler, and arrays open new table scopes instead of
// being stored.
//
// Backed by an ordered map so iteration order matches insertion order —
// the JSON sink relies on this for deterministic output (invariant 6).
type TableRecord struct {
	entries *orderedmap.OrderedMap[string, recordEntry]
}

type recordEntry struct {
	path  JsonPath
	value any
}

// NewTableRecord returns an empty record.
func NewTableRecord() *TableRecord {
	return &TableRecord{entries: orderedmap.New[string, recordEntry]()}
}

// Set records value at path, overwriting any prior value at the same
// path without disturbing its position in insertion order.
func (r *TableRecord) Set(path JsonPath, value any) {
	r.entries.Set(path.Key(), recordEntry{path: path.Clone(), value: value})
}

// Get returns the value stored at path, if any.
func (r *TableRecord) Get(path JsonPath) (any, bool) {
	e, ok := r.entries.Get(path.Key())
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Len returns the number of distinct paths recorded.
func (r *TableRecord) Len() int {
	if r.entries == nil {
		return 0
	}
	return r.entries.Len()
}

// RecordPair is one (path, value) pair of a TableRecord, yielded in
// insertion order by Each.
type RecordPair struct {
	Path  JsonPath
	Value any
}

// Each calls fn once per (path, value) pair in insertion order.
func (r *TableRecord) Each(fn func(RecordPair)) {
	if r.entries == nil {
		return
	}
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		fn(RecordPair{Path: pair.Value.path, Value: pair.Value.value})
	}
}
