package sink

import (
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/jsontotables/internal/errs"
	"github.com/agentic-research/jsontotables/internal/model"
)

var (
	reIDPrefix     = regexp.MustCompile(`^((?:id)+)_`)
	reNestedJoin   = regexp.MustCompile(`_((?:in)+)_`)
	reNestedEmpty  = regexp.MustCompile(`^((?:empty)+)$`)
	reNestedList   = regexp.MustCompile(`^((?:list)+)$`)
	reLeadingUnder = regexp.MustCompile(`^_`)
	reTablePathJoin = regexp.MustCompile(`_((?:lin)+)_`)
)

// escapeIDPrefix protects a mangled key that happens to already look
// like an `id_`/`idid_`/... prefix, so it can never be mistaken for the
// synthetic `id_<table>` fields json.go attaches to every record.
func escapeIDPrefix(s string) string {
	return reIDPrefix.ReplaceAllString(s, "${1}id_")
}

// escapeNestedKeyElement protects one reversed JsonPath element before
// it's joined with "_in_" — doubling any "in" run that would otherwise
// be mistaken for the join separator, and reserving "empty"/"list" for
// their sentinel uses.
func escapeNestedKeyElement(s string) string {
	if s == "" {
		return "empty"
	}
	s = reNestedJoin.ReplaceAllString(s, "_${1}in_")
	s = reNestedEmpty.ReplaceAllString(s, "${1}empty")
	s = reNestedList.ReplaceAllString(s, "${1}list")
	s = reLeadingUnder.ReplaceAllString(s, "tech_")
	return s
}

// jsonPathToStr mangles a JsonPath (read innermost-key-first, so it's
// reversed before joining) into one collision-free flat key.
func jsonPathToStr(path model.JsonPath) string {
	if len(path) == 0 {
		return "list"
	}
	escaped := make([]string, len(path))
	for i := range path {
		escaped[i] = escapeNestedKeyElement(path[len(path)-1-i])
	}
	return escapeIDPrefix(strings.Join(escaped, "_in_"))
}

func escapeTablePathElement(s string) string {
	return reTablePathJoin.ReplaceAllString(s, "_${1}lin_")
}

// tablePathToStr mangles a TablePath (reversed, with the sink's root
// name appended as the outermost element) into one flat table name.
func tablePathToStr(rootName string, tp model.TablePath) string {
	parts := make([]model.JsonPath, 0, len(tp)+1)
	for i := len(tp) - 1; i >= 0; i-- {
		parts = append(parts, tp[i])
	}
	parts = append(parts, model.JsonPath{rootName})

	converted := make([]string, len(parts))
	for i, p := range parts {
		converted[i] = escapeTablePathElement(jsonPathToStr(p))
	}
	return strings.Join(converted, "_lin_")
}

func recordToOrdered(rootName string, loc model.TableLocation, rec *model.TableRecord) *orderedmap.OrderedMap[string, any] {
	obj := orderedmap.New[string, any]()
	rec.Each(func(pair model.RecordPair) {
		obj.Set(jsonPathToStr(pair.Path), pair.Value)
	})

	tableName := tablePathToStr(rootName, loc.TablePath)
	obj.Set("id_"+tableName, loc.ObjectID)

	parentTableName := tablePathToStr(rootName, loc.TablePath.Parent())
	obj.Set("id_"+parentTableName, loc.ParentObjectID)

	return obj
}

// JSONSink is the in-memory variant of spec §4.5.2: every emitted
// record is mangled into a flat JSON object and appended to an array
// keyed by its (mangled) table name, all collected in one top-level
// object. rootName is the root table's name and the outermost element
// of every other table's mangled name. No schema.json is written — this sink has no registry of
// its own, consistent with the in-memory backend's narrower contract.
type JSONSink struct {
	rootName string
	outPath  string
	tables   *orderedmap.OrderedMap[string, []*orderedmap.OrderedMap[string, any]]
}

// NewJSONSink returns a sink that accumulates records in memory and
// writes outPath as pretty JSON on Close.
func NewJSONSink(rootName, outPath string) *JSONSink {
	return &JSONSink{
		rootName: rootName,
		outPath:  outPath,
		tables:   orderedmap.New[string, []*orderedmap.OrderedMap[string, any]](),
	}
}

func (s *JSONSink) Write(loc model.TableLocation, rec *model.TableRecord) error {
	tableName := tablePathToStr(s.rootName, loc.TablePath)
	rows, _ := s.tables.Get(tableName)
	rows = append(rows, recordToOrdered(s.rootName, loc, rec))
	s.tables.Set(tableName, rows)
	return nil
}

func (s *JSONSink) Close() error {
	root := orderedmap.New[string, any]()
	for pair := s.tables.Oldest(); pair != nil; pair = pair.Next() {
		rows := make([]any, len(pair.Value))
		for i, r := range pair.Value {
			rows[i] = r
		}
		root.Set(pair.Key, rows)
	}

	data, err := oj.Marshal(root, 2)
	if err != nil {
		return errWrapf(errs.ErrOutputIO, "marshaling %s: %v", s.outPath, err)
	}
	if err := writeFile(s.outPath, data); err != nil {
		return err
	}
	return nil
}
