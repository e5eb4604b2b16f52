package sink

import (
	"os"
	"path/filepath"

	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/jsontotables/api"
	"github.com/agentic-research/jsontotables/internal/errs"
)

// writeSchemaJSON pretty-prints a DatabaseSchema to <outputDir>/schema.json,
// shared by every sink variant that owns its own registry (CSV, SQLite).
func writeSchemaJSON(outputDir string, db api.DatabaseSchema) error {
	data, err := oj.Marshal(db.ToJSONValue(), 2)
	if err != nil {
		return errWrapf(errs.ErrOutputIO, "marshaling schema.json: %v", err)
	}
	path := filepath.Join(outputDir, "schema.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errWrapf(errs.ErrOutputIO, "writing %s: %v", path, err)
	}
	return nil
}
