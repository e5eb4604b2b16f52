package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJsonPathKeyDistinguishesPaths(t *testing.T) {
	a := JsonPath{"a", "b"}
	b := JsonPath{"a", "bc"}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestJsonPathEqual(t *testing.T) {
	a := JsonPath{"x", "y"}
	b := JsonPath{"x", "y"}
	c := JsonPath{"x", "z"}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestJsonPathCloneIndependent(t *testing.T) {
	a := JsonPath{"x"}
	b := a.Clone()
	b[0] = "y"
	assert.Equal(t, "x", a[0])
}

func TestTablePathParentOfRootIsRoot(t *testing.T) {
	var root TablePath
	assert.Equal(t, root, root.Parent())
}

func TestTablePathParentDropsLastElement(t *testing.T) {
	tp := TablePath{{"a"}, {"b"}}
	assert.Equal(t, TablePath{{"a"}}, tp.Parent())
}

func TestTablePathKeyDistinguishesNesting(t *testing.T) {
	tp1 := TablePath{{"a"}, {"b"}}
	tp2 := TablePath{{"a", "b"}}
	assert.NotEqual(t, tp1.Key(), tp2.Key())
}
