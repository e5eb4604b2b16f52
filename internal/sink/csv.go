package sink

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentic-research/jsontotables/api"
	"github.com/agentic-research/jsontotables/internal/errs"
	"github.com/agentic-research/jsontotables/internal/model"
	"github.com/agentic-research/jsontotables/internal/schema"
)

// csvFieldQuote wraps s in double quotes, doubling any quote already
// inside it — ported rule-for-rule from the original csv_field_quote.
func csvFieldQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// csvFieldEscape applies spec §6's CSV dialect: quote-wrap iff the field
// is empty or contains a quote, comma, or newline; otherwise pass
// through unescaped. Ported rule-for-rule from the original
// csv_field_escape, which is also why this isn't encoding/csv — that
// package never quotes an empty field, making an empty string
// indistinguishable from a null one.
func csvFieldEscape(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, "\",\n") {
		return csvFieldQuote(s)
	}
	return s
}

// csvField renders one record value as its CSV cell, applying escaping
// only to strings — bool/number canonical forms never contain a
// delimiter, and a missing/null value becomes the bare empty field.
func csvField(v any) string {
	s, isString := canonicalScalarString(v)
	if isString {
		return csvFieldEscape(s)
	}
	return s
}

type csvTable struct {
	file   *os.File
	writer *bufio.Writer
	schema *schema.MutableTableSchema
}

// CSVSink is the CSV variant of spec §4.5.1: one file per discovered
// TablePath under <outputDir>/data/, no header row, plus a pretty
// schema.json sibling written on Close.
type CSVSink struct {
	outputDir string
	dataDir   string
	registry  *schema.Registry
	tables    map[string]*csvTable
	order     []model.TablePath // table creation order, for deterministic close
}

// NewCSVSink requires outputDir/data to not exist or be empty, creating
// it if absent, per spec §6's pre-create rule.
func NewCSVSink(outputDir string) (*CSVSink, error) {
	dataDir := filepath.Join(outputDir, "data")
	if err := ensureEmptyDir(dataDir); err != nil {
		return nil, err
	}
	return &CSVSink{
		outputDir: outputDir,
		dataDir:   dataDir,
		registry:  schema.NewRegistry(),
		tables:    make(map[string]*csvTable),
	}, nil
}

func ensureEmptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return errWrapf(errs.ErrOutputIO, "creating %s: %v", dir, mkErr)
		}
		return nil
	case err != nil:
		return errWrapf(errs.ErrOutputIO, "reading %s: %v", dir, err)
	case len(entries) != 0:
		return errWrapf(errs.ErrOutputIO, "%s is not empty", dir)
	}
	return nil
}

func (s *CSVSink) tableFor(path model.TablePath) (*csvTable, error) {
	key := path.Key()
	if t, ok := s.tables[key]; ok {
		return t, nil
	}

	ts, err := s.registry.BorrowTableSchema(path)
	if err != nil {
		return nil, err
	}

	filename := filepath.Join(s.dataDir, ts.Name()+".csv")
	f, err := os.Create(filename)
	if err != nil {
		return nil, errWrapf(errs.ErrOutputIO, "creating %s: %v", filename, err)
	}

	t := &csvTable{file: f, writer: bufio.NewWriter(f), schema: ts}
	s.tables[key] = t
	s.order = append(s.order, path.Clone())
	return t, nil
}

// Write narrows the table's schema then projects the record across its
// column list in insertion order — PrimaryKey/ForeignKey from loc, every
// SourceColumn from the record (or an empty field if absent).
func (s *CSVSink) Write(loc model.TableLocation, rec *model.TableRecord) error {
	t, err := s.tableFor(loc.TablePath)
	if err != nil {
		return err
	}
	t.schema.Update(rec)

	cols := t.schema.Columns()
	fields := make([]string, len(cols))
	for i, col := range cols {
		switch col.Kind {
		case api.ColumnPrimaryKey:
			fields[i] = strconv.FormatInt(int64(loc.ObjectID), 10)
		case api.ColumnForeignKey:
			fields[i] = strconv.FormatInt(int64(loc.ParentObjectID), 10)
		default:
			v, _ := rec.Get(model.JsonPath(col.Source.SourcePath))
			fields[i] = csvField(v)
		}
	}

	if _, err := t.writer.WriteString(strings.Join(fields, ",")); err != nil {
		return errWrapf(errs.ErrOutputIO, "writing row to %s: %v", t.schema.Name(), err)
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return errWrapf(errs.ErrOutputIO, "writing row to %s: %v", t.schema.Name(), err)
	}
	return nil
}

// Close flushes every open file, returns every TableSchema to the
// registry, and serializes schema.json.
func (s *CSVSink) Close() error {
	for _, path := range s.order {
		t := s.tables[path.Key()]
		if err := t.writer.Flush(); err != nil {
			return errWrapf(errs.ErrOutputIO, "flushing %s: %v", t.schema.Name(), err)
		}
		if err := t.file.Close(); err != nil {
			return errWrapf(errs.ErrOutputIO, "closing %s: %v", t.schema.Name(), err)
		}
		if err := s.registry.ReturnTableSchema(path, t.schema); err != nil {
			return err
		}
	}
	if err := s.registry.EnsureAllTablesReturned(); err != nil {
		return err
	}

	db, err := s.registry.DatabaseSchema()
	if err != nil {
		return err
	}
	return writeSchemaJSON(s.outputDir, db)
}
