package ingest

import (
	"fmt"

	"github.com/agentic-research/jsontotables/internal/errs"
	"github.com/agentic-research/jsontotables/internal/model"
	"github.com/agentic-research/jsontotables/internal/sink"
	"github.com/agentic-research/jsontotables/internal/tokenizer"
)

// Input pairs a diagnostic name (the resolved input path) with the
// bytes already read from it. Reading happens in internal/fsinput,
// upstream of Run, so an InputIO failure never reaches the driver.
type Input struct {
	Name string
	Data []byte
}

// OnSuccess is called once per input, after it has been fully ingested,
// with the number of records emitted from it.
type OnSuccess func(name string, count int)

// Run implements the driver loop of spec §4.6: create one remapper shared
// by all inputs, then for every input open a session, drive the
// tokenizer through a NestedObjectHandler whose consumer remaps ids and
// writes to sink, close the session, and report success. A parse or
// sink-write failure aborts the whole run — only per-file InputIO
// failures (handled upstream, before Run is ever called) are non-fatal.
func Run(inputs []Input, strict bool, s sink.Sink, onSuccess OnSuccess) error {
	remapper := NewRemapper(strict)

	for _, in := range inputs {
		count := 0
		session := remapper.OpenSession()

		var writeErr error
		consumer := func(loc model.TableLocation, rec *model.TableRecord) {
			if writeErr != nil {
				return
			}
			globalLoc, err := session.Remap(loc)
			if err != nil {
				writeErr = err
				return
			}
			if err := s.Write(globalLoc, rec); err != nil {
				writeErr = err
				return
			}
			count++
		}

		handler := NewNestedObjectHandler(consumer)
		adapter := tokenizer.NewAdapter(handler)
		parseErr := adapter.Parse(in.Data)
		session.Close()

		if parseErr != nil {
			return fmt.Errorf("%w: parsing %s: %v", errs.ErrParse, in.Name, parseErr)
		}
		if writeErr != nil {
			return writeErr
		}

		onSuccess(in.Name, count)
	}

	if err := remapper.Close(); err != nil {
		return err
	}
	return s.Close()
}
