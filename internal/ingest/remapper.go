package ingest

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/agentic-research/jsontotables/internal/errs"
	"github.com/agentic-research/jsontotables/internal/model"
)

// Remapper globalizes the per-file local id spaces C2 allocates: every
// input file gets its own Session with a fresh, empty translation table,
// but all sessions share the same per-TablePath global counters, so a
// parent-child relationship from one file never collides with another
// file's ids while every table's ids stay dense across the whole run.
//
// Remap calls are not safe for concurrent use; the §5 parallel extension
// serializes them through a single coordinator goroutine instead of
// locking here.
type Remapper struct {
	tables *orderedmap.OrderedMap[string, *int32]        // table path key -> next global id
	seen   *orderedmap.OrderedMap[string, *roaring.Bitmap] // strict mode only; global ids assigned per table across all sessions

	strict        bool
	nextSessionID int
}

// NewRemapper returns an empty remapper. When strict is true, every
// remap additionally verifies key-uniqueness as it happens, and Close
// verifies id-density for every table across the whole run — spec
// §4.3's strict-mode extension.
func NewRemapper(strict bool) *Remapper {
	r := &Remapper{tables: orderedmap.New[string, *int32]()}
	r.strict = strict
	if strict {
		r.seen = orderedmap.New[string, *roaring.Bitmap]()
	}
	return r
}

// Close verifies, in strict mode, that every table's assigned global ids
// form a dense range {0, ..., n-1} (spec §8 invariant 5). It is a no-op
// when strict mode is off.
func (r *Remapper) Close() error {
	if !r.strict {
		return nil
	}
	for pair := r.seen.Oldest(); pair != nil; pair = pair.Next() {
		bm := pair.Value
		if bm.IsEmpty() {
			continue
		}
		n := bm.GetCardinality()
		maxID := bm.Maximum()
		if uint64(maxID)+1 != n {
			return fmt.Errorf("%w: table %q has %d assigned ids but max id %d (ids are not dense)",
				errs.ErrBorrowViolation, pair.Key, n, maxID)
		}
	}
	return nil
}

// Session is the per-input-file translation context described in
// spec §4.3: the same local object_id always maps to the same global id
// within one session, and sessions opened later see ids continuing
// where earlier sessions (for the same table) left off.
type Session struct {
	id       int
	remapper *Remapper
	local    *orderedmap.OrderedMap[string, *orderedmap.OrderedMap[int32, int32]]
}

// OpenSession starts a new translation context.
func (r *Remapper) OpenSession() *Session {
	s := &Session{
		id:       r.nextSessionID,
		remapper: r,
		local:    orderedmap.New[string, *orderedmap.OrderedMap[int32, int32]](),
	}
	r.nextSessionID++
	return s
}

// Close discards the session's translation maps. Global state (the
// per-table counters, and in strict mode the seen-id bitmaps) lives on
// the Remapper and outlives the session.
func (s *Session) Close() {
	s.local = nil
}

// Remap translates a locally-scoped TableLocation into the globally
// consistent one, per spec §4.3's three-step algorithm.
func (s *Session) Remap(loc model.TableLocation) (model.TableLocation, error) {
	tableKey := loc.TablePath.Key()
	globalObjectID, err := s.translate(tableKey, loc.ObjectID)
	if err != nil {
		return model.TableLocation{}, err
	}

	parentKey := loc.TablePath.Parent().Key()
	globalParentID, err := s.translate(parentKey, loc.ParentObjectID)
	if err != nil {
		return model.TableLocation{}, err
	}

	return model.TableLocation{
		TablePath:      loc.TablePath,
		ObjectID:       globalObjectID,
		ParentObjectID: globalParentID,
	}, nil
}

func (s *Session) translate(tableKey string, localID int32) (int32, error) {
	table, ok := s.local.Get(tableKey)
	if !ok {
		table = orderedmap.New[int32, int32]()
		s.local.Set(tableKey, table)
	}

	if globalID, ok := table.Get(localID); ok {
		return globalID, nil
	}

	counter, ok := s.remapper.tables.Get(tableKey)
	if !ok {
		var zero int32
		counter = &zero
		s.remapper.tables.Set(tableKey, counter)
	}

	globalID := *counter
	*counter++
	table.Set(localID, globalID)

	if s.remapper.strict {
		bm, ok := s.remapper.seen.Get(tableKey)
		if !ok {
			bm = roaring.New()
			s.remapper.seen.Set(tableKey, bm)
		}
		if !bm.CheckedAdd(uint32(globalID)) {
			return 0, fmt.Errorf("%w: table %q global id %d assigned twice", errs.ErrBorrowViolation, tableKey, globalID)
		}
	}

	return globalID, nil
}
