// Package errs holds the five error kinds of spec §7, shared by every
// stage of the pipeline so callers can errors.Is against one kind
// regardless of which package raised it.
package errs

import "errors"

// The five error kinds of spec §7. Each is a sentinel; call sites wrap
// it with fmt.Errorf("...: %w", ErrX) so errors.Is still matches while
// the message carries file/table-specific detail, the convention used
// throughout the corpus this port is grounded on.
var (
	// ErrInputIO is an open/read failure on an input file. A per-file
	// read failure is non-fatal: internal/fsinput reports it and skips
	// that file before the driver runs. A malformed glob pattern or
	// config file is reported with this kind too, and is fatal.
	ErrInputIO = errors.New("input io error")

	// ErrParse is a tokenizer rejection of malformed bytes. Fatal.
	ErrParse = errors.New("parse error")

	// ErrOutputIO is a sink's failure to create/open/write/flush an
	// output artifact, or a non-empty/uncreatable output directory.
	// Fatal.
	ErrOutputIO = errors.New("output io error")

	// ErrSchemaViolation means a record contained an array or object
	// value after flattening — should be impossible; indicates a bug in
	// the handler. Fatal.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrBorrowViolation means a TableSchema was returned without being
	// borrowed, or a database was closed with a schema still borrowed
	// (or, in strict mode, that the id remapper's own invariants were
	// violated). Fatal; indicates a bug.
	ErrBorrowViolation = errors.New("borrow violation")
)
