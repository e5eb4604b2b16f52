// Package ingest holds the core of the pipeline: the nested-object SAX
// handler (C2), the id remapper (C3) and the driver that ties the
// tokenizer, handler, remapper and sink together for one or many input
// files.
package ingest

import "github.com/agentic-research/jsontotables/internal/model"

// scopeNode is one arena entry of the ObjectHandlerTree: an open array
// scope. Scopes are never destroyed once created — re-entering the same
// child key from the same parent node reuses the same scopeNode, which
// is what keeps its object-id counter monotonic across sibling
// traversals (spec §4.2's rationale for an arena tree over a stack).
type scopeNode struct {
	rec       *model.TableRecord
	pathStack []string // within-object JsonPath stack; empty means "between objects"

	nextObjectID  int32
	lastEmittedID int32 // -1 until this scope has emitted at least one record

	parent   int // index into the tree's arena; a node is its own parent only at the root
	children map[string]int
}

func newScopeNode(parent int) *scopeNode {
	return &scopeNode{
		rec:           model.NewTableRecord(),
		lastEmittedID: -1,
		parent:        parent,
		children:      make(map[string]int),
	}
}

// lastEmittedOrZero implements spec §4.2's fixed parent_object_id rule:
// the parent scope's most recently emitted object_id, or 0 if it has not
// emitted one yet (including "no parent", i.e. the document root). This
// is spec.md §9's explicit resolution of the original source's several
// inconsistent parent-id formulas, not the original's own "parent's
// in-progress counter" behavior.
func (n *scopeNode) lastEmittedOrZero() int32 {
	if n == nil || n.lastEmittedID < 0 {
		return 0
	}
	return n.lastEmittedID
}

// ObjectHandlerTree is the arena-allocated tree of open array scopes
// described in spec §4.2. Traversal is tracked both by the current
// node's arena index and by a parallel slice of JsonPaths (currentPath)
// so full TablePath reads are O(1).
type ObjectHandlerTree struct {
	arena      []*scopeNode
	currentID  int
	currentPath []model.JsonPath
}

// NewObjectHandlerTree returns a tree containing only the root scope
// (the document's own table, TablePath == nil).
func NewObjectHandlerTree() *ObjectHandlerTree {
	root := newScopeNode(0)
	return &ObjectHandlerTree{arena: []*scopeNode{root}}
}

func (t *ObjectHandlerTree) current() *scopeNode {
	return t.arena[t.currentID]
}

func (t *ObjectHandlerTree) parent() *scopeNode {
	cur := t.current()
	if cur.parent == t.currentID {
		return nil
	}
	return t.arena[cur.parent]
}

// TablePath returns the traversal path from root to the current scope.
func (t *ObjectHandlerTree) TablePath() model.TablePath {
	if len(t.currentPath) == 0 {
		return nil
	}
	out := make(model.TablePath, len(t.currentPath))
	copy(out, t.currentPath)
	return out
}

// GoDown descends into (creating if absent) the child scope reached by
// crossing an array at childKey, the within-object path at the moment
// start_array fired.
func (t *ObjectHandlerTree) GoDown(childKey model.JsonPath) {
	key := childKey.Key()
	t.currentPath = append(t.currentPath, childKey.Clone())

	cur := t.current()
	if childID, ok := cur.children[key]; ok {
		t.currentID = childID
		return
	}

	childID := len(t.arena)
	cur.children[key] = childID
	t.arena = append(t.arena, newScopeNode(t.currentID))
	t.currentID = childID
}

// GoUp ascends to the parent scope.
func (t *ObjectHandlerTree) GoUp() {
	cur := t.current()
	t.currentID = cur.parent
	if len(t.currentPath) > 0 {
		t.currentPath = t.currentPath[:len(t.currentPath)-1]
	}
}
