package ingest

import (
	"github.com/agentic-research/jsontotables/internal/model"
	"github.com/agentic-research/jsontotables/internal/tokenizer"
)

// Consumer receives one (TableLocation, TableRecord) pair per emitted
// record, in document order.
type Consumer func(model.TableLocation, *model.TableRecord)

// NestedObjectHandler implements tokenizer.Handler over an
// ObjectHandlerTree, flattening nested JSON objects into TableRecords
// and opening a new table scope at every array, exactly as spec §4.2
// describes.
type NestedObjectHandler struct {
	tree     *ObjectHandlerTree
	consumer Consumer
}

// NewNestedObjectHandler returns a handler for a single input document,
// forwarding every emitted record to consumer.
func NewNestedObjectHandler(consumer Consumer) *NestedObjectHandler {
	return &NestedObjectHandler{tree: NewObjectHandlerTree(), consumer: consumer}
}

func (h *NestedObjectHandler) Null() tokenizer.Status   { return h.value(nil) }
func (h *NestedObjectHandler) Bool(b bool) tokenizer.Status   { return h.value(b) }
func (h *NestedObjectHandler) Int(i int64) tokenizer.Status   { return h.value(i) }
func (h *NestedObjectHandler) Double(f float64) tokenizer.Status { return h.value(f) }
func (h *NestedObjectHandler) String(s string) tokenizer.Status { return h.value(s) }

func (h *NestedObjectHandler) MapKey(key string) tokenizer.Status {
	cur := h.tree.current()
	if len(cur.pathStack) == 0 {
		// A map_key event always follows a start_map, which already
		// pushed a placeholder slot; defensively guard against a
		// tokenizer that violates the event grammar.
		cur.pathStack = append(cur.pathStack, key)
		return tokenizer.Continue
	}
	cur.pathStack[len(cur.pathStack)-1] = key
	return tokenizer.Continue
}

func (h *NestedObjectHandler) StartMap() tokenizer.Status {
	cur := h.tree.current()
	cur.pathStack = append(cur.pathStack, "")
	return tokenizer.Continue
}

func (h *NestedObjectHandler) EndMap() tokenizer.Status {
	cur := h.tree.current()
	cur.pathStack = cur.pathStack[:len(cur.pathStack)-1]
	if len(cur.pathStack) == 0 {
		h.tryEmit()
	}
	return tokenizer.Continue
}

func (h *NestedObjectHandler) StartArray() tokenizer.Status {
	cur := h.tree.current()
	childKey := model.JsonPath(append([]string(nil), cur.pathStack...))
	h.tree.GoDown(childKey)
	return tokenizer.Continue
}

func (h *NestedObjectHandler) EndArray() tokenizer.Status {
	// No try-emit here: the enclosing scope only ever completes through
	// a StartMap/EndMap pair (handled by EndMap) or a bare scalar
	// (handled by value). A scope that was never opened via StartMap —
	// the document root when the document itself is an array, or any
	// array-of-arrays scope — has an already-empty path stack purely
	// because it was never touched, not because it just finished an
	// object; try-emitting here would misread that as a completed empty
	// record (spec §8's S2 scenario: `[]` must emit zero records).
	h.tree.GoUp()
	return tokenizer.Continue
}

func (h *NestedObjectHandler) value(v any) tokenizer.Status {
	cur := h.tree.current()
	path := model.JsonPath(append([]string(nil), cur.pathStack...))
	cur.rec.Set(path, v)
	if len(cur.pathStack) == 0 {
		h.tryEmit()
	}
	return tokenizer.Continue
}

// tryEmit emits the current scope's in-progress record iff it is
// complete (within-object path stack empty) — spec §4.2's "try-emit".
func (h *NestedObjectHandler) tryEmit() {
	cur := h.tree.current()
	if len(cur.pathStack) != 0 {
		return
	}

	rec := cur.rec
	cur.rec = model.NewTableRecord()

	objectID := cur.nextObjectID
	cur.nextObjectID++
	cur.lastEmittedID = objectID

	loc := model.TableLocation{
		TablePath:      h.tree.TablePath(),
		ObjectID:       objectID,
		ParentObjectID: h.tree.parent().lastEmittedOrZero(),
	}
	h.consumer(loc, rec)
}
