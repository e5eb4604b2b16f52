package sink

import (
	"fmt"
	"os"

	"github.com/agentic-research/jsontotables/internal/errs"
)

func errWrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{kind}, args...)...)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errWrapf(errs.ErrOutputIO, "writing %s: %v", path, err)
	}
	return nil
}
