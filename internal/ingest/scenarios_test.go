package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/jsontotables/internal/model"
	"github.com/agentic-research/jsontotables/internal/schema"
	"github.com/agentic-research/jsontotables/internal/tokenizer"
)

type emitted struct {
	loc model.TableLocation
	rec *model.TableRecord
}

// runDocument drives one document through the handler exactly as the
// driver does, local ids only (no remapping), collecting every emitted
// record in document order.
func runDocument(t *testing.T, doc []byte) []emitted {
	t.Helper()
	var out []emitted
	handler := NewNestedObjectHandler(func(loc model.TableLocation, rec *model.TableRecord) {
		out = append(out, emitted{loc: loc, rec: rec})
	})
	err := tokenizer.NewAdapter(handler).Parse(doc)
	require.NoError(t, err)
	return out
}

func recordValues(rec *model.TableRecord) map[string]any {
	out := map[string]any{}
	rec.Each(func(p model.RecordPair) { out[p.Path.Key()] = p.Value })
	return out
}

// S1: {} -> one record, root table, pk=0 fk=0, no source columns.
func TestScenarioS1EmptyObject(t *testing.T) {
	out := runDocument(t, []byte(`{}`))
	require.Len(t, out, 1)
	assert.Equal(t, model.TablePath(nil), out[0].loc.TablePath)
	assert.Equal(t, int32(0), out[0].loc.ObjectID)
	assert.Equal(t, int32(0), out[0].loc.ParentObjectID)
	assert.Equal(t, 0, out[0].rec.Len())
}

// S2: [] -> zero records anywhere.
func TestScenarioS2EmptyArray(t *testing.T) {
	out := runDocument(t, []byte(`[]`))
	assert.Len(t, out, 0)
}

// S3: [1,2,3] -> a single table with 3 rows, pk 0..2, fk 0, one
// anonymous scalar column (JsonPath{}).
func TestScenarioS3ScalarArray(t *testing.T) {
	out := runDocument(t, []byte(`[1,2,3]`))
	require.Len(t, out, 3)

	tablePath := out[0].loc.TablePath
	require.Len(t, tablePath, 1)
	assert.Equal(t, model.JsonPath{}, tablePath[0])

	for i, e := range out {
		assert.Equal(t, tablePath, e.loc.TablePath, "every row belongs to the same table")
		assert.Equal(t, int32(i), e.loc.ObjectID)
		assert.Equal(t, int32(0), e.loc.ParentObjectID)
	}

	v0, ok := out[0].rec.Get(model.JsonPath{})
	require.True(t, ok)
	assert.Equal(t, int64(1), v0)
	v2, _ := out[2].rec.Get(model.JsonPath{})
	assert.Equal(t, int64(3), v2)
}

// S4: {"a":[{"x":1},{"x":2}]} -> the root's own row (1, empty) and the
// nested "a" table's two rows (x=1 fk=0, x=2 fk=0), independent of
// which table a sink ends up numbering table_0 vs table_1 — see
// DESIGN.md's Open Question entry on table numbering order.
func TestScenarioS4NestedArray(t *testing.T) {
	out := runDocument(t, []byte(`{"a":[{"x":1},{"x":2}]}`))
	require.Len(t, out, 3)

	var rootRows, arrayRows []emitted
	for _, e := range out {
		if len(e.loc.TablePath) == 0 {
			rootRows = append(rootRows, e)
		} else {
			arrayRows = append(arrayRows, e)
		}
	}

	require.Len(t, rootRows, 1)
	assert.Equal(t, int32(0), rootRows[0].loc.ObjectID)
	assert.Equal(t, int32(0), rootRows[0].loc.ParentObjectID)
	assert.Equal(t, 0, rootRows[0].rec.Len())

	require.Len(t, arrayRows, 2)
	assert.Equal(t, model.TablePath{{"a"}}, arrayRows[0].loc.TablePath)
	assert.Equal(t, int32(0), arrayRows[0].loc.ObjectID)
	assert.Equal(t, int32(0), arrayRows[0].loc.ParentObjectID)
	assert.Equal(t, int64(1), recordValues(arrayRows[0].rec)[model.JsonPath{"x"}.Key()])

	assert.Equal(t, int32(1), arrayRows[1].loc.ObjectID)
	assert.Equal(t, int32(0), arrayRows[1].loc.ParentObjectID)
	assert.Equal(t, int64(2), recordValues(arrayRows[1].rec)[model.JsonPath{"x"}.Key()])
}

// S5: {"a":[{"y":1},{"y":"s"}]} -> column y's type lattice collapses to
// all-false once both an int and a string have been observed at the
// same path.
func TestScenarioS5MixedTypeColumn(t *testing.T) {
	out := runDocument(t, []byte(`{"a":[{"y":1},{"y":"s"}]}`))

	reg := schema.NewRegistry()
	var arrayTable *schema.MutableTableSchema
	for _, e := range out {
		if len(e.loc.TablePath) == 0 {
			continue
		}
		if arrayTable == nil {
			var err error
			arrayTable, err = reg.BorrowTableSchema(e.loc.TablePath)
			require.NoError(t, err)
		}
		arrayTable.Update(e.rec)
	}
	require.NotNil(t, arrayTable)

	cols := arrayTable.Columns()
	found := false
	for _, c := range cols {
		if c.Source == nil {
			continue
		}
		if model.JsonPath(c.Source.SourcePath).Key() != (model.JsonPath{"y"}).Key() {
			continue
		}
		found = true
		assert.False(t, c.Source.IsI64)
		assert.False(t, c.Source.IsBool)
		assert.False(t, c.Source.IsF64)
		assert.False(t, c.Source.IsNull)
		assert.False(t, c.Source.IsNullable)
		assert.Equal(t, []any{int64(1), "s"}, c.Source.ExampleValues)
	}
	assert.True(t, found, "column y must be discovered")
}

// S6: the same shape ingested from two input files, through the shared
// Remapper, advances the parent table's global id counter across
// sessions — file 2's child rows must carry parent_object_id 1, not 0,
// because the arena tree's reuse of the same scope across array
// re-entries (not relevant within one file here) and the remapper's
// cross-session counters (relevant across files) both keep ids dense
// and monotonic for the whole run.
func TestScenarioS6CrossFileRemap(t *testing.T) {
	doc := []byte(`{"a":[{"x":1},{"x":2}]}`)

	remapper := NewRemapper(false)

	var globalLocs []model.TableLocation
	for range 2 {
		session := remapper.OpenSession()
		handler := NewNestedObjectHandler(func(loc model.TableLocation, rec *model.TableRecord) {
			g, err := session.Remap(loc)
			require.NoError(t, err)
			globalLocs = append(globalLocs, g)
		})
		require.NoError(t, tokenizer.NewAdapter(handler).Parse(doc))
		session.Close()
	}
	require.NoError(t, remapper.Close())

	var childLocs []model.TableLocation
	for _, l := range globalLocs {
		if len(l.TablePath) != 0 {
			childLocs = append(childLocs, l)
		}
	}
	require.Len(t, childLocs, 4)
	assert.Equal(t, []int32{0, 1, 2, 3}, []int32{
		childLocs[0].ObjectID, childLocs[1].ObjectID, childLocs[2].ObjectID, childLocs[3].ObjectID,
	})
	assert.Equal(t, int32(0), childLocs[0].ParentObjectID)
	assert.Equal(t, int32(0), childLocs[1].ParentObjectID)
	assert.Equal(t, int32(1), childLocs[2].ParentObjectID, "file 2's rows must parent to the global root id 1")
	assert.Equal(t, int32(1), childLocs[3].ParentObjectID)
}
