// Package schema holds the mutable schema registry of spec §4.4: table
// and column discovery, the per-column type lattice update rule, and the
// borrow/return discipline that hands a table's schema to its sink for
// the duration of a run.
package schema

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/agentic-research/jsontotables/api"
	"github.com/agentic-research/jsontotables/internal/errs"
	"github.com/agentic-research/jsontotables/internal/model"
)

// MutableTableSchema is one table's live, growing schema: the column
// list a sink narrows via Update as it writes rows, indexed by JsonPath
// key for O(1) column lookup.
type MutableTableSchema struct {
	schema api.TableSchema
	index  *orderedmap.OrderedMap[string, int] // JsonPath.Key() -> index into schema.Columns
}

func newMutableTableSchema(name string, path model.TablePath) *MutableTableSchema {
	rawPath := make([][]string, len(path))
	for i, p := range path {
		rawPath[i] = []string(p.Clone())
	}
	return &MutableTableSchema{
		schema: api.TableSchema{
			Name: name,
			Path: rawPath,
			Columns: []api.ColumnSchema{
				{Kind: api.ColumnPrimaryKey},
				{Kind: api.ColumnForeignKey},
			},
		},
		index: orderedmap.New[string, int](),
	}
}

// Name returns the table's assigned name ("table_<k>").
func (m *MutableTableSchema) Name() string { return m.schema.Name }

// Columns returns the table's current column list: PrimaryKey and
// ForeignKey first, then SourceColumns in first-observation order.
func (m *MutableTableSchema) Columns() []api.ColumnSchema { return m.schema.Columns }

// Snapshot returns the table's current serializable form.
func (m *MutableTableSchema) Snapshot() api.TableSchema { return m.schema }

// Update applies spec §4.4's per-record lattice update: every
// (path, value) pair in rec either registers a brand new SourceColumn or
// narrows the matching column's type lattice. Narrowing is a literal
// AND/OR over the observed value's Go type, independent of any other
// field in the same column — is_bool only stays true while every value
// ever seen at that path was a bool, null included.
func (m *MutableTableSchema) Update(rec *model.TableRecord) {
	rec.Each(func(pair model.RecordPair) {
		key := pair.Path.Key()
		idx, ok := m.index.Get(key)
		if !ok {
			idx = len(m.schema.Columns)
			m.index.Set(key, idx)
			m.schema.Columns = append(m.schema.Columns, api.ColumnSchema{
				Kind: api.ColumnSource,
				Source: &api.SourceColumn{
					SourcePath: []string(pair.Path.Clone()),
					IsNull:     true,
					IsBool:     true,
					IsI64:      true,
					IsF64:      true,
				},
			})
		}
		narrow(m.schema.Columns[idx].Source, pair.Value)
	})
}

func narrow(col *api.SourceColumn, value any) {
	isNull := value == nil
	_, isBool := value.(bool)
	_, isI64 := value.(int64)
	_, isF64 := value.(float64)

	col.IsNullable = col.IsNullable || isNull
	col.IsNull = col.IsNull && isNull
	col.IsBool = col.IsBool && isBool
	col.IsI64 = col.IsI64 && isI64
	col.IsF64 = col.IsF64 && isF64

	if !isNull && len(col.ExampleValues) < 5 {
		col.ExampleValues = append(col.ExampleValues, value)
	}
}

// Registry is the database-wide table directory of spec §4.4: it
// creates tables on first sight of a TablePath and enforces that a
// TableSchema has exactly one holder at a time — either the registry
// itself, or the sink that borrowed it.
type Registry struct {
	tables    []*MutableTableSchema // nil at index i means table i is currently borrowed
	pathToIdx *orderedmap.OrderedMap[string, int]
	borrowed  int
}

// NewRegistry returns an empty registry. Tables are created lazily, in
// whichever order their TablePath is first borrowed — a table whose
// own record only completes after a nested array's (e.g. the document
// root, whose own row can only close once every key including a
// nested array has been walked) is registered after that array's
// table, not before it.
func NewRegistry() *Registry {
	return &Registry{pathToIdx: orderedmap.New[string, int]()}
}

// BorrowTableSchema returns the TableSchema for path, creating it (with
// the fixed PrimaryKey/ForeignKey columns of spec §4.4) on first sight,
// and removes it from the registry for the duration of the borrow.
func (r *Registry) BorrowTableSchema(path model.TablePath) (*MutableTableSchema, error) {
	key := path.Key()
	idx, ok := r.pathToIdx.Get(key)
	if !ok {
		idx = len(r.tables)
		r.pathToIdx.Set(key, idx)
		r.tables = append(r.tables, newMutableTableSchema(fmt.Sprintf("table_%d", idx), path))
	}

	ts := r.tables[idx]
	if ts == nil {
		return nil, fmt.Errorf("%w: table %q already borrowed", errs.ErrBorrowViolation, key)
	}
	r.tables[idx] = nil
	r.borrowed++
	return ts, nil
}

// ReturnTableSchema hands a previously borrowed TableSchema back to the
// registry.
func (r *Registry) ReturnTableSchema(path model.TablePath, ts *MutableTableSchema) error {
	key := path.Key()
	idx, ok := r.pathToIdx.Get(key)
	if !ok {
		return fmt.Errorf("%w: returning unknown table %q", errs.ErrBorrowViolation, key)
	}
	if r.tables[idx] != nil {
		return fmt.Errorf("%w: table %q was not borrowed", errs.ErrBorrowViolation, key)
	}
	r.tables[idx] = ts
	r.borrowed--
	return nil
}

// EnsureAllTablesReturned fails loudly if any table is still borrowed —
// called once at close, spec §4.4.
func (r *Registry) EnsureAllTablesReturned() error {
	if r.borrowed != 0 {
		return fmt.Errorf("%w: %d table(s) still borrowed at close", errs.ErrBorrowViolation, r.borrowed)
	}
	return nil
}

// DatabaseSchema snapshots every table in insertion order into the
// serializable DTO written as schema.json. Every table must have been
// returned first.
func (r *Registry) DatabaseSchema() (api.DatabaseSchema, error) {
	tables := make([]api.TableSchema, len(r.tables))
	for i, ts := range r.tables {
		if ts == nil {
			return api.DatabaseSchema{}, fmt.Errorf("%w: table index %d still borrowed", errs.ErrBorrowViolation, i)
		}
		tables[i] = ts.Snapshot()
	}
	return api.DatabaseSchema{Tables: tables}, nil
}
