package sink

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/jsontotables/api"
	"github.com/agentic-research/jsontotables/internal/errs"
	"github.com/agentic-research/jsontotables/internal/model"
	"github.com/agentic-research/jsontotables/internal/schema"
)

// sqliteTable tracks one physical table's prepared insert statement —
// rebuilt whenever the schema registry narrows/grows its column list,
// since a new SourceColumn changes the statement's placeholder count.
type sqliteTable struct {
	schema  *schema.MutableTableSchema
	stmt    *sql.Stmt
	numCols int
}

// SQLiteSink is the domain-stack extension of §4.5.4: one physical
// table per discovered TablePath, bulk-loaded with the same
// PRAGMA/transaction-batching tuning the teacher's SQLiteWriter uses for
// its node graph, repurposed here for dynamically-shaped relational
// rows instead of a fixed node/ref schema.
type SQLiteSink struct {
	db        *sql.DB
	tx        *sql.Tx
	registry  *schema.Registry
	outputDir string
	batchSize int
	rows      int

	tables map[string]*sqliteTable
	order  []model.TablePath
}

// NewSQLiteSink opens (creating if absent) the SQLite database at
// dbPath, applies the teacher's bulk-load PRAGMAs, and begins the first
// batch transaction. batchSize <= 0 falls back to the teacher's default
// of 10,000 rows per transaction.
func NewSQLiteSink(dbPath, outputDir string, batchSize int) (*SQLiteSink, error) {
	if batchSize <= 0 {
		batchSize = 10000
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errWrapf(errs.ErrOutputIO, "opening sqlite %s: %v", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, errWrapf(errs.ErrOutputIO, "tuning sqlite %s: %v", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, errWrapf(errs.ErrOutputIO, "tuning sqlite %s: %v", dbPath, err)
	}

	s := &SQLiteSink{
		db:        db,
		registry:  schema.NewRegistry(),
		outputDir: outputDir,
		batchSize: batchSize,
		tables:    make(map[string]*sqliteTable),
	}
	if err := s.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) beginTx() error {
	tx, err := s.db.Begin()
	if err != nil {
		return errWrapf(errs.ErrOutputIO, "beginning sqlite transaction: %v", err)
	}
	s.tx = tx
	// Prepared statements belong to the committed transaction; every
	// existing table re-prepares against the fresh one here, and a table
	// created later prepares in tableFor.
	for key, t := range s.tables {
		stmt, err := prepareInsert(tx, t.schema)
		if err != nil {
			return err
		}
		t.stmt = stmt
		t.numCols = len(t.schema.Columns())
		s.tables[key] = t
	}
	return nil
}

func prepareInsert(tx *sql.Tx, ts *schema.MutableTableSchema) (*sql.Stmt, error) {
	cols := ts.Columns()
	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		switch col.Kind {
		case api.ColumnPrimaryKey:
			names[i] = "pk"
		case api.ColumnForeignKey:
			names[i] = "fk"
		default:
			names[i] = fmt.Sprintf("col_%d", i)
		}
		placeholders[i] = "?"
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ts.Name(), strings.Join(names, ", "), strings.Join(placeholders, ", "))
	stmt, err := tx.Prepare(q)
	if err != nil {
		return nil, errWrapf(errs.ErrOutputIO, "preparing insert for %s: %v", ts.Name(), err)
	}
	return stmt, nil
}

// tableFor lazily creates the physical table for path with only its pk
// and fk columns; addColumnIfGrown later adds one TEXT column per
// SourceColumn, since the type lattice is only known after the fact and
// SQLite is dynamically typed per cell regardless.
func (s *SQLiteSink) tableFor(path model.TablePath) (*sqliteTable, error) {
	key := path.Key()
	if t, ok := s.tables[key]; ok {
		return t, nil
	}

	ts, err := s.registry.BorrowTableSchema(path)
	if err != nil {
		return nil, err
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (pk INTEGER PRIMARY KEY, fk INTEGER)", ts.Name())
	if _, err := s.tx.Exec(ddl); err != nil {
		return nil, errWrapf(errs.ErrOutputIO, "creating table %s: %v", ts.Name(), err)
	}

	stmt, err := prepareInsert(s.tx, ts)
	if err != nil {
		return nil, err
	}

	t := &sqliteTable{schema: ts, stmt: stmt, numCols: len(ts.Columns())}
	s.tables[key] = t
	s.order = append(s.order, path.Clone())
	return t, nil
}

// addColumnIfGrown issues ALTER TABLE ADD COLUMN for every SourceColumn
// the schema gained since this table's last insert statement was
// prepared, then re-prepares the insert against the widened shape.
func (s *SQLiteSink) addColumnIfGrown(t *sqliteTable) error {
	cols := t.schema.Columns()
	if len(cols) == t.numCols {
		return nil
	}
	for i := t.numCols; i < len(cols); i++ {
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN col_%d TEXT", t.schema.Name(), i)
		if _, err := s.tx.Exec(alter); err != nil {
			return errWrapf(errs.ErrOutputIO, "altering table %s: %v", t.schema.Name(), err)
		}
	}
	stmt, err := prepareInsert(s.tx, t.schema)
	if err != nil {
		return err
	}
	_ = t.stmt.Close()
	t.stmt = stmt
	t.numCols = len(cols)
	return nil
}

func (s *SQLiteSink) Write(loc model.TableLocation, rec *model.TableRecord) error {
	t, err := s.tableFor(loc.TablePath)
	if err != nil {
		return err
	}
	t.schema.Update(rec)
	if err := s.addColumnIfGrown(t); err != nil {
		return err
	}

	cols := t.schema.Columns()
	args := make([]any, len(cols))
	for i, col := range cols {
		switch col.Kind {
		case api.ColumnPrimaryKey:
			args[i] = loc.ObjectID
		case api.ColumnForeignKey:
			args[i] = loc.ParentObjectID
		default:
			v, _ := rec.Get(model.JsonPath(col.Source.SourcePath))
			str, _ := canonicalScalarString(v)
			args[i] = str
		}
	}
	if _, err := t.stmt.Exec(args...); err != nil {
		return errWrapf(errs.ErrOutputIO, "inserting into %s: %v", t.schema.Name(), err)
	}

	s.rows++
	if s.rows >= s.batchSize {
		if err := s.commitTx(); err != nil {
			return err
		}
		if err := s.beginTx(); err != nil {
			return err
		}
		s.rows = 0
	}
	return nil
}

func (s *SQLiteSink) commitTx() error {
	for _, t := range s.tables {
		if t.stmt != nil {
			_ = t.stmt.Close()
		}
	}
	if err := s.tx.Commit(); err != nil {
		return errWrapf(errs.ErrOutputIO, "committing sqlite transaction: %v", err)
	}
	return nil
}

// Close commits the final transaction, returns every borrowed schema,
// and serializes schema.json exactly as the CSV sink does — a second
// output artifact alongside the database file, not a replacement.
func (s *SQLiteSink) Close() error {
	if err := s.commitTx(); err != nil {
		_ = s.db.Close()
		return err
	}

	for _, path := range s.order {
		t := s.tables[path.Key()]
		if err := s.registry.ReturnTableSchema(path, t.schema); err != nil {
			_ = s.db.Close()
			return err
		}
	}
	if err := s.registry.EnsureAllTablesReturned(); err != nil {
		_ = s.db.Close()
		return err
	}

	db, err := s.registry.DatabaseSchema()
	if err != nil {
		_ = s.db.Close()
		return err
	}
	if err := writeSchemaJSON(s.outputDir, db); err != nil {
		_ = s.db.Close()
		return err
	}

	if err := s.db.Close(); err != nil {
		return errWrapf(errs.ErrOutputIO, "closing sqlite db: %v", err)
	}
	return nil
}
