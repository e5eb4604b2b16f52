// Package model holds the data types shared by every stage of the
// ingestion pipeline: JsonPath, TablePath, TableRecord and TableLocation.
package model

import "strings"

// pathSep joins the keys of a JsonPath into its canonical map-key form.
// Chosen to be a byte that cannot appear in a JSON object key typed by a
// human (the ASCII unit separator), so canonicalization never collides
// two distinct paths.
const pathSep = "\x1f"

// tablePathSep joins the canonical forms of the JsonPaths making up a
// TablePath. Distinct from pathSep so a TablePath's string form can never
// be mistaken for a JsonPath's.
const tablePathSep = "\x1e"

// JsonPath is an ordered sequence of object keys identifying a scalar
// position within a single table's row shape. Arrays never appear in a
// JsonPath — crossing an array opens a new TablePath scope instead.
type JsonPath []string

// Key returns the canonical, comparable string form of the path, used
// wherever a JsonPath must be a map key.
func (p JsonPath) Key() string {
	return strings.Join(p, pathSep)
}

// Clone returns an independent copy of the path.
func (p JsonPath) Clone() JsonPath {
	out := make(JsonPath, len(p))
	copy(out, p)
	return out
}

// Equal reports structural equality.
func (p JsonPath) Equal(other JsonPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// TablePath is an ordered sequence of JsonPaths, one per nested array
// crossed from the document root to the current scope. The empty
// TablePath denotes the root table.
type TablePath []JsonPath

// Key returns the canonical, comparable string form of the table path.
func (t TablePath) Key() string {
	parts := make([]string, len(t))
	for i, p := range t {
		parts[i] = p.Key()
	}
	return strings.Join(parts, tablePathSep)
}

// Clone returns an independent copy of the table path.
func (t TablePath) Clone() TablePath {
	out := make(TablePath, len(t))
	for i, p := range t {
		out[i] = p.Clone()
	}
	return out
}

// Parent returns the TablePath with its last JsonPath removed — the
// table that contains the array this TablePath points at. Calling
// Parent on the root TablePath (len 0) returns the root TablePath again.
func (t TablePath) Parent() TablePath {
	if len(t) == 0 {
		return t
	}
	return t[:len(t)-1]
}
