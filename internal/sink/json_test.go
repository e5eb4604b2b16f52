package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/jsontotables/internal/model"
)

func TestJsonPathToStrEmptyPathIsList(t *testing.T) {
	assert.Equal(t, "list", jsonPathToStr(model.JsonPath{}))
}

func TestJsonPathToStrReversesAndJoins(t *testing.T) {
	assert.Equal(t, "b_in_a", jsonPathToStr(model.JsonPath{"a", "b"}))
}

func TestJsonPathToStrProtectsIDPrefixCollision(t *testing.T) {
	// A source key literally named "id_foo" must not collide with the
	// synthetic "id_<table>" primary-key field json.go attaches to every
	// record.
	assert.Equal(t, "idid_foo", jsonPathToStr(model.JsonPath{"id_foo"}))
}

func TestJsonPathToStrDoublesInRun(t *testing.T) {
	// A key literally containing "_in_" must not be mistaken for the
	// path-element join separator once mangled.
	got := escapeNestedKeyElement("a_in_b")
	assert.Equal(t, "a_inin_b", got)
}

func TestJsonPathToStrReservesEmptyAndListSentinels(t *testing.T) {
	// "" is the empty-key sentinel itself; a literal key spelled "empty"
	// or "list" must escape to something else so it can never collide.
	assert.Equal(t, "empty", escapeNestedKeyElement(""))
	assert.Equal(t, "emptyempty", escapeNestedKeyElement("empty"))
	assert.Equal(t, "listlist", escapeNestedKeyElement("list"))
}

func TestTablePathToStrAppendsRootName(t *testing.T) {
	got := tablePathToStr("root", model.TablePath{{"a"}})
	assert.Equal(t, "a_lin_root", got)
}

func TestTablePathToStrRootTableIsJustRootName(t *testing.T) {
	got := tablePathToStr("root", nil)
	assert.Equal(t, "root", got)
}

func TestJSONSinkWritesNestedObjectAndIDColumns(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "data.json")
	s := NewJSONSink("root", outPath)

	rootLoc := model.TableLocation{TablePath: nil, ObjectID: 0, ParentObjectID: 0}
	require.NoError(t, s.Write(rootLoc, model.NewTableRecord()))

	childLoc := model.TableLocation{TablePath: model.TablePath{{"a"}}, ObjectID: 0, ParentObjectID: 0}
	rec := model.NewTableRecord()
	rec.Set(model.JsonPath{"x"}, int64(1))
	require.NoError(t, s.Write(childLoc, rec))

	require.NoError(t, s.Close())

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))

	rootRows, ok := parsed["root"].([]any)
	require.True(t, ok)
	require.Len(t, rootRows, 1)

	childRows, ok := parsed["a_lin_root"].([]any)
	require.True(t, ok)
	require.Len(t, childRows, 1)
	row := childRows[0].(map[string]any)
	assert.Equal(t, float64(1), row["x"])
	assert.Equal(t, float64(0), row["id_a_lin_root"])
	assert.Equal(t, float64(0), row["id_root"])
}
