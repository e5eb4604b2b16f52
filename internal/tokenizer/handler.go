// Package tokenizer adapts github.com/buger/jsonparser's callback-driven
// parse into the push-style SAX event alphabet the ingestion core is
// written against (spec §4.1): null, bool, int, double, string, map_key,
// start_map, end_map, start_array, end_array.
package tokenizer

// Status is returned by every Handler method. The ingestion core never
// returns Abort — the contract exists because the tokenizer interface is
// pinned independently of any one consumer, and a future handler (or a
// debug harness) may want to short-circuit a malformed or oversized
// document.
type Status int

const (
	// Continue tells the adapter to keep driving the parse.
	Continue Status = iota
	// Abort tells the adapter to stop walking into further values; the
	// closing events of containers already open are still forwarded.
	Abort
)

// Handler receives tokenizer events in document order. Implementations
// must not retain the string passed to String/MapKey beyond the call —
// the adapter may reuse the backing buffer on the next call.
type Handler interface {
	Null() Status
	Bool(b bool) Status
	Int(i int64) Status
	Double(f float64) Status
	String(s string) Status
	MapKey(key string) Status
	StartMap() Status
	EndMap() Status
	StartArray() Status
	EndArray() Status
}
