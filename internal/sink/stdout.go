package sink

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentic-research/jsontotables/internal/model"
)

// StdoutSink is the debug variant of spec §4.5.3: one "{loc}: {rec}"
// line per record, written to the given writer (stdout in the CLI).
type StdoutSink struct {
	w io.Writer
}

// NewStdoutSink returns a sink writing debug lines to w.
func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{w: w}
}

func (s *StdoutSink) Write(loc model.TableLocation, rec *model.TableRecord) error {
	var fields []string
	rec.Each(func(pair model.RecordPair) {
		fields = append(fields, fmt.Sprintf("%v: %v", pair.Path, pair.Value))
	})
	_, err := fmt.Fprintf(s.w, "%+v: {%s}\n", loc, strings.Join(fields, ", "))
	return err
}

func (s *StdoutSink) Close() error { return nil }
