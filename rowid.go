package squire

// RowID is a SQLite row ID, distinguished at the type level from
// ordinary integer columns.
//
// A RowID is usually made available by adding an INTEGER PRIMARY KEY
// column to a table, or by a reference to such a column. Row IDs are
// never zero; the zero RowID means "no row".
type RowID int64

// NewRowID wraps an engine row identifier. It reports false for 0,
// which the engine never assigns to a row.
func NewRowID(v int64) (RowID, bool) {
	if v == 0 {
		return 0, false
	}
	return RowID(v), true
}

// Int64 returns the raw row identifier.
func (id RowID) Int64() int64 { return int64(id) }

// Valid reports whether the RowID refers to a row.
func (id RowID) Valid() bool { return id != 0 }
