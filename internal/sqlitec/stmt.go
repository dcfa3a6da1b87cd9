package sqlitec

import (
	"unsafe"

	"modernc.org/libc"
	sqlite3 "modernc.org/sqlite/lib"
)

// Stmt represents a prepared statement.
//
// A Stmt borrows its Conn and must be finalized before the Conn is
// closed. Text and blob bindings are copied into native memory; the
// copies live until the bindings are cleared or the statement is
// finalized.
//
// https://www.sqlite.org/c3ref/stmt.html
type Stmt struct {
	conn   *Conn
	stmt   uintptr
	allocs []uintptr
}

// Step advances the statement, returning true when a new row is
// available and false when the statement has run to completion.
//
// https://www.sqlite.org/c3ref/step.html
func (s *Stmt) Step() (bool, error) {
	switch rc := sqlite3.Xsqlite3_step(s.conn.tls, s.stmt); rc {
	case sqlite3.SQLITE_ROW:
		return true, nil
	case sqlite3.SQLITE_DONE:
		return false, nil
	default:
		return false, s.conn.lastError(rc)
	}
}

// Reset rewinds the statement back to its initial state, keeping the
// current bindings.
//
// https://www.sqlite.org/c3ref/reset.html
func (s *Stmt) Reset() error {
	if rc := sqlite3.Xsqlite3_reset(s.conn.tls, s.stmt); rc != sqlite3.SQLITE_OK {
		return s.conn.lastError(rc)
	}
	return nil
}

// ClearBindings sets every parameter back to NULL and releases the
// native copies of previously bound text and blob values.
//
// https://www.sqlite.org/c3ref/clear_bindings.html
func (s *Stmt) ClearBindings() error {
	rc := sqlite3.Xsqlite3_clear_bindings(s.conn.tls, s.stmt)
	s.freeAllocs()
	if rc != sqlite3.SQLITE_OK {
		return s.conn.lastError(rc)
	}
	return nil
}

// Finalize frees the resources associated with this statement. It is
// safe to call more than once.
//
// https://www.sqlite.org/c3ref/finalize.html
func (s *Stmt) Finalize() error {
	if s.stmt == 0 {
		return nil
	}

	rc := sqlite3.Xsqlite3_finalize(s.conn.tls, s.stmt)
	s.stmt = 0
	s.freeAllocs()
	if rc != sqlite3.SQLITE_OK {
		return s.conn.lastError(rc)
	}
	return nil
}

func (s *Stmt) freeAllocs() {
	for _, p := range s.allocs {
		s.conn.free(p)
	}
	s.allocs = nil
}

// ReadOnly reports whether the statement makes no direct changes to the
// database.
//
// https://www.sqlite.org/c3ref/stmt_readonly.html
func (s *Stmt) ReadOnly() bool {
	return sqlite3.Xsqlite3_stmt_readonly(s.conn.tls, s.stmt) != 0
}

// BindNull binds NULL at the given 1-based index.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (s *Stmt) BindNull(index int) error {
	if rc := sqlite3.Xsqlite3_bind_null(s.conn.tls, s.stmt, int32(index)); rc != sqlite3.SQLITE_OK {
		return s.conn.lastError(rc)
	}
	return nil
}

// BindInt64 binds an int64 at the given 1-based index.
func (s *Stmt) BindInt64(index int, value int64) error {
	if rc := sqlite3.Xsqlite3_bind_int64(s.conn.tls, s.stmt, int32(index), value); rc != sqlite3.SQLITE_OK {
		return s.conn.lastError(rc)
	}
	return nil
}

// BindFloat64 binds a float64 at the given 1-based index.
func (s *Stmt) BindFloat64(index int, value float64) error {
	if rc := sqlite3.Xsqlite3_bind_double(s.conn.tls, s.stmt, int32(index), value); rc != sqlite3.SQLITE_OK {
		return s.conn.lastError(rc)
	}
	return nil
}

// BindText binds a string at the given 1-based index. The text is copied
// into native memory owned by this Stmt.
func (s *Stmt) BindText(index int, value string) error {
	p, err := libc.CString(value)
	if err != nil {
		return err
	}

	if rc := sqlite3.Xsqlite3_bind_text(s.conn.tls, s.stmt, int32(index), p, int32(len(value)), 0); rc != sqlite3.SQLITE_OK {
		s.conn.free(p)
		return s.conn.lastError(rc)
	}

	s.allocs = append(s.allocs, p)
	return nil
}

// BindBlob binds a byte slice at the given 1-based index. A nil slice
// binds NULL; the bytes are copied into native memory owned by this
// Stmt.
func (s *Stmt) BindBlob(index int, value []byte) error {
	if value == nil {
		return s.BindNull(index)
	}

	p, err := s.conn.malloc(len(value))
	if err != nil {
		return err
	}
	if len(value) != 0 {
		copy((*libc.RawMem)(unsafe.Pointer(p))[:len(value):len(value)], value)
	}

	if rc := sqlite3.Xsqlite3_bind_blob(s.conn.tls, s.stmt, int32(index), p, int32(len(value)), 0); rc != sqlite3.SQLITE_OK {
		s.conn.free(p)
		return s.conn.lastError(rc)
	}

	s.allocs = append(s.allocs, p)
	return nil
}

// BindZeroBlob binds a zero-filled blob of n bytes at the given 1-based
// index. The engine reserves the space without materializing the bytes.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (s *Stmt) BindZeroBlob(index int, n int64) error {
	if rc := sqlite3.Xsqlite3_bind_zeroblob64(s.conn.tls, s.stmt, int32(index), uint64(n)); rc != sqlite3.SQLITE_OK {
		return s.conn.lastError(rc)
	}
	return nil
}

// ParameterCount returns the index of the largest parameter in the
// statement.
//
// https://www.sqlite.org/c3ref/bind_parameter_count.html
func (s *Stmt) ParameterCount() int {
	return int(sqlite3.Xsqlite3_bind_parameter_count(s.conn.tls, s.stmt))
}

// ParameterName returns the name of the parameter at the given 1-based
// index, prefix included, or "" for nameless (?) parameters.
//
// https://www.sqlite.org/c3ref/bind_parameter_name.html
func (s *Stmt) ParameterName(index int) string {
	return libc.GoString(sqlite3.Xsqlite3_bind_parameter_name(s.conn.tls, s.stmt, int32(index)))
}

// ParameterIndex returns the 1-based index of the named parameter, or 0
// when the statement has no such parameter. The name must include its
// prefix character.
//
// https://www.sqlite.org/c3ref/bind_parameter_index.html
func (s *Stmt) ParameterIndex(name string) (int, error) {
	zName, err := libc.CString(name)
	if err != nil {
		return 0, err
	}
	defer s.conn.free(zName)

	return int(sqlite3.Xsqlite3_bind_parameter_index(s.conn.tls, s.stmt, zName)), nil
}

// ColumnCount returns the number of columns in the result set.
//
// https://www.sqlite.org/c3ref/column_count.html
func (s *Stmt) ColumnCount() int {
	return int(sqlite3.Xsqlite3_column_count(s.conn.tls, s.stmt))
}

// ColumnName returns the name of the column at the given 0-based index.
//
// https://www.sqlite.org/c3ref/column_name.html
func (s *Stmt) ColumnName(index int) string {
	return libc.GoString(sqlite3.Xsqlite3_column_name(s.conn.tls, s.stmt, int32(index)))
}

// ColumnType returns the storage class code of the column value at the
// given 0-based index in the current row.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (s *Stmt) ColumnType(index int) int {
	return int(sqlite3.Xsqlite3_column_type(s.conn.tls, s.stmt, int32(index)))
}

// ColumnInt64 returns the column value at the given 0-based index as an
// int64.
func (s *Stmt) ColumnInt64(index int) int64 {
	return sqlite3.Xsqlite3_column_int64(s.conn.tls, s.stmt, int32(index))
}

// ColumnFloat64 returns the column value at the given 0-based index as a
// float64.
func (s *Stmt) ColumnFloat64(index int) float64 {
	return sqlite3.Xsqlite3_column_double(s.conn.tls, s.stmt, int32(index))
}

// ColumnText returns the column value at the given 0-based index as a
// string. The bytes are copied out of the engine's memory.
func (s *Stmt) ColumnText(index int) string {
	p := sqlite3.Xsqlite3_column_text(s.conn.tls, s.stmt, int32(index))
	n := int(sqlite3.Xsqlite3_column_bytes(s.conn.tls, s.stmt, int32(index)))
	if p == 0 || n == 0 {
		return ""
	}

	b := make([]byte, n)
	copy(b, (*libc.RawMem)(unsafe.Pointer(p))[:n:n])
	return string(b)
}

// ColumnBlob returns the column value at the given 0-based index as a
// byte slice. The bytes are copied out of the engine's memory.
func (s *Stmt) ColumnBlob(index int) []byte {
	p := sqlite3.Xsqlite3_column_blob(s.conn.tls, s.stmt, int32(index))
	n := int(sqlite3.Xsqlite3_column_bytes(s.conn.tls, s.stmt, int32(index)))
	if p == 0 || n == 0 {
		return nil
	}

	b := make([]byte, n)
	copy(b, (*libc.RawMem)(unsafe.Pointer(p))[:n:n])
	return b
}
