// Package api holds the serializable representation of a discovered
// database schema — the shapes written to schema.json and handed
// between the schema registry and every table sink. Kept separate from
// internal/schema's mutable registry the same way the teacher keeps its
// wire-format Topology/Node types in its own api package, apart from the
// internal code that builds and mutates them.
package api

// ColumnKind tags which variant a ColumnSchema is.
type ColumnKind int

const (
	// ColumnPrimaryKey is the synthetic object_id column, always at
	// position 0 in every table.
	ColumnPrimaryKey ColumnKind = iota
	// ColumnForeignKey is the synthetic parent_object_id column, always
	// at position 1 in every table.
	ColumnForeignKey
	// ColumnSource is a column discovered from the source document.
	ColumnSource
)

// SourceColumn is a column discovered from the source document: a type
// lattice over the JSON scalar types observed at SourcePath, shrinking
// monotonically as conflicting types are seen (spec §3 invariant 5).
type SourceColumn struct {
	SourcePath []string
	IsNullable bool
	IsNull     bool
	IsBool     bool
	IsI64      bool
	IsF64      bool
	// ExampleValues holds up to 5 non-null example values, in
	// first-observation order.
	ExampleValues []any
}

// ColumnSchema is a tagged variant: PrimaryKey | ForeignKey | SourceColumn.
type ColumnSchema struct {
	Kind   ColumnKind
	Source *SourceColumn // non-nil iff Kind == ColumnSource
}

// TableSchema describes one discovered table: its name, the TablePath
// (as a slice of JsonPaths, each a slice of strings) it was discovered
// at, and its columns in first-observation insertion order.
type TableSchema struct {
	Name    string
	Path    [][]string
	Columns []ColumnSchema
}

// DatabaseSchema is the ordered collection of every table discovered
// during a run.
type DatabaseSchema struct {
	Tables []TableSchema
}

// ToJSONValue builds the plain map[string]any/[]any tree that
// github.com/ohler55/ojg/oj serializes as schema.json — built by hand
// rather than leaning on ojg's struct-reflection or a custom
// MarshalJSON hook, so the tagged-union ColumnSchema shape of spec §6
// ({"PrimaryKey":null} / {"SourceColumn":{...}}) is explicit and
// doesn't depend on any struct-tag convention ojg may or may not share
// with encoding/json.
func (d DatabaseSchema) ToJSONValue() any {
	tables := make([]any, len(d.Tables))
	for i, t := range d.Tables {
		tables[i] = t.toJSONValue()
	}
	return map[string]any{"tables": tables}
}

func (t TableSchema) toJSONValue() any {
	path := make([]any, len(t.Path))
	for i, p := range t.Path {
		path[i] = stringsToAny(p)
	}
	columns := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = c.toJSONValue()
	}
	return map[string]any{
		"name":    t.Name,
		"path":    path,
		"columns": columns,
	}
}

func (c ColumnSchema) toJSONValue() any {
	switch c.Kind {
	case ColumnPrimaryKey:
		return map[string]any{"PrimaryKey": nil}
	case ColumnForeignKey:
		return map[string]any{"ForeignKey": nil}
	default:
		return map[string]any{"SourceColumn": c.Source.toJSONValue()}
	}
}

func (s *SourceColumn) toJSONValue() any {
	return map[string]any{
		"source_path":    stringsToAny(s.SourcePath),
		"is_nullable":    s.IsNullable,
		"is_null":        s.IsNull,
		"is_bool":        s.IsBool,
		"is_i64":         s.IsI64,
		"is_f64":         s.IsF64,
		"example_values": s.ExampleValues,
	}
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
