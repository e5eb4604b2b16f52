package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/jsontotables/internal/model"
)

func TestCSVFieldEscapeEmptyString(t *testing.T) {
	assert.Equal(t, `""`, csvFieldEscape(""))
}

func TestCSVFieldEscapePassesPlainStringThrough(t *testing.T) {
	assert.Equal(t, "hello", csvFieldEscape("hello"))
}

func TestCSVFieldEscapeQuotesEmbeddedComma(t *testing.T) {
	assert.Equal(t, `"a,b"`, csvFieldEscape("a,b"))
}

func TestCSVFieldEscapeQuotesEmbeddedNewline(t *testing.T) {
	assert.Equal(t, "\"a\nb\"", csvFieldEscape("a\nb"))
}

func TestCSVFieldEscapeDoublesEmbeddedQuote(t *testing.T) {
	assert.Equal(t, `"a""b"`, csvFieldEscape(`a"b`))
}

func TestCSVFieldDistinguishesNullFromScalar(t *testing.T) {
	assert.Equal(t, "", csvField(nil))
	assert.Equal(t, "true", csvField(true))
	assert.Equal(t, "5", csvField(int64(5)))
	assert.Equal(t, `""`, csvField(""))
}

func TestCSVSinkWritesRowsAndSchema(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVSink(dir)
	require.NoError(t, err)

	root := model.TableLocation{TablePath: nil, ObjectID: 0, ParentObjectID: 0}
	rec := model.NewTableRecord()
	require.NoError(t, s.Write(root, rec))

	child := model.TableLocation{TablePath: model.TablePath{{"a"}}, ObjectID: 0, ParentObjectID: 0}
	rec1 := model.NewTableRecord()
	rec1.Set(model.JsonPath{"x"}, int64(1))
	require.NoError(t, s.Write(child, rec1))

	child2 := model.TableLocation{TablePath: model.TablePath{{"a"}}, ObjectID: 1, ParentObjectID: 0}
	rec2 := model.NewTableRecord()
	rec2.Set(model.JsonPath{"x"}, int64(2))
	require.NoError(t, s.Write(child2, rec2))

	require.NoError(t, s.Close())

	rootCSV, err := os.ReadFile(filepath.Join(dir, "data", "table_0.csv"))
	require.NoError(t, err)
	assert.Equal(t, "0,0\n", string(rootCSV))

	childCSV, err := os.ReadFile(filepath.Join(dir, "data", "table_1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "0,0,1\n1,0,2\n", string(childCSV))

	_, err = os.Stat(filepath.Join(dir, "schema.json"))
	require.NoError(t, err)
}

func TestCSVSinkRejectsNonEmptyOutputDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "stray.txt"), []byte("x"), 0o644))

	_, err := NewCSVSink(dir)
	assert.Error(t, err)
}
