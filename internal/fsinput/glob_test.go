package fsinput

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReadsMatchedFiles(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "a.json", []byte(`{"a":1}`), 0o644))
	require.NoError(t, util.WriteFile(fs, "b.json", []byte(`{"b":2}`), 0o644))
	require.NoError(t, util.WriteFile(fs, "c.txt", []byte(`ignored`), 0o644))

	inputs, err := Resolve(fs, []string{"*.json"}, func(path string, err error) {
		t.Fatalf("unexpected per-file error for %s: %v", path, err)
	})
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	byName := map[string][]byte{}
	for _, in := range inputs {
		byName[in.Name] = in.Data
	}
	assert.Equal(t, []byte(`{"a":1}`), byName["a.json"])
	assert.Equal(t, []byte(`{"b":2}`), byName["b.json"])
}

func TestResolveDeduplicatesOverlappingPatterns(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "a.json", []byte(`{}`), 0o644))

	inputs, err := Resolve(fs, []string{"*.json", "a.*"}, func(string, error) {})
	require.NoError(t, err)
	assert.Len(t, inputs, 1)
}

func TestResolveFailsOnMalformedPattern(t *testing.T) {
	fs := memfs.New()
	_, err := Resolve(fs, []string{"["}, func(string, error) {})
	assert.Error(t, err)
}
