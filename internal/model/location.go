package model

// TableLocation identifies where an emitted TableRecord belongs: which
// table (by TablePath) and its primary/foreign key values. Object IDs
// are dense non-negative integers, unique within a table once the id
// remapper has processed them.
type TableLocation struct {
	TablePath      TablePath
	ObjectID       int32
	ParentObjectID int32
}

// Parent returns the TableLocation's parent table path — the same value
// TablePath.Parent would give from the location's own table path.
func (l TableLocation) Parent() TablePath {
	return l.TablePath.Parent()
}
