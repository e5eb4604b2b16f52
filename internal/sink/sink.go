// Package sink holds the four Sink implementations of spec §4.5 — CSV,
// JSON, stdout, and a SQLite domain-stack extension — plus the shared
// Sink contract the driver writes through.
package sink

import (
	"github.com/agentic-research/jsontotables/internal/model"
)

// Sink is the abstract table-writer contract of spec §4.5: write one
// record at a time, mutating the corresponding table's schema as it
// goes, then flush and release everything on Close.
type Sink interface {
	Write(loc model.TableLocation, rec *model.TableRecord) error
	Close() error
}
