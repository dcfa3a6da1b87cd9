package sqlitec

import (
	"fmt"
	"sync"
	"unsafe"

	"modernc.org/libc"
	"modernc.org/libc/sys/types"
	sqlite3 "modernc.org/sqlite/lib"
)

const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// Open flags re-exported so that callers do not import the raw entry
// points directly.
const (
	OpenReadOnly  = sqlite3.SQLITE_OPEN_READONLY
	OpenReadWrite = sqlite3.SQLITE_OPEN_READWRITE
	OpenCreate    = sqlite3.SQLITE_OPEN_CREATE
	OpenURI       = sqlite3.SQLITE_OPEN_URI
	OpenMemory    = sqlite3.SQLITE_OPEN_MEMORY
	OpenNoMutex   = sqlite3.SQLITE_OPEN_NOMUTEX
	OpenFullMutex = sqlite3.SQLITE_OPEN_FULLMUTEX
	OpenNoFollow  = sqlite3.SQLITE_OPEN_NOFOLLOW
)

// Column storage class codes as reported by sqlite3_column_type.
const (
	ColumnInteger = sqlite3.SQLITE_INTEGER
	ColumnFloat   = sqlite3.SQLITE_FLOAT
	ColumnText    = sqlite3.SQLITE_TEXT
	ColumnBlob    = sqlite3.SQLITE_BLOB
	ColumnNull    = sqlite3.SQLITE_NULL
)

// Conn represents a connection to a SQLite database.
//
// A Conn exclusively owns one native database handle and the libc TLS it
// was created on; both are released exactly once, by Close.
//
// https://www.sqlite.org/c3ref/sqlite3.html
type Conn struct {
	tls *libc.TLS
	db  uintptr

	// Close and Interrupt may be invoked from different goroutines.
	mu sync.Mutex
}

// Open opens a new database connection for the given location using
// sqlite3_open_v2. An empty vfs selects the default VFS.
//
// https://www.sqlite.org/c3ref/open.html
func Open(location string, flags int, vfs string) (*Conn, error) {
	c := &Conn{tls: libc.NewTLS()}

	db, err := c.openV2(location, vfs, int32(flags))
	if err != nil {
		c.tls.Close()
		return nil, err
	}
	c.db = db

	// Extended result codes make the preserved error codes more precise.
	if rc := sqlite3.Xsqlite3_extended_result_codes(c.tls, c.db, 1); rc != sqlite3.SQLITE_OK {
		err := c.lastError(rc)
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

func (c *Conn) openV2(location, vfs string, flags int32) (uintptr, error) {
	var pdb, name, zVfs uintptr

	defer func() {
		c.free(pdb)
		c.free(name)
		c.free(zVfs)
	}()

	pdb, err := c.malloc(ptrSize)
	if err != nil {
		return 0, err
	}

	if name, err = libc.CString(location); err != nil {
		return 0, err
	}

	if vfs != "" {
		if zVfs, err = libc.CString(vfs); err != nil {
			return 0, err
		}
	}

	if rc := sqlite3.Xsqlite3_open_v2(c.tls, name, pdb, flags, zVfs); rc != sqlite3.SQLITE_OK {
		// The handle is allocated even on failure and carries the
		// error message; close it after reading the message.
		db := *(*uintptr)(unsafe.Pointer(pdb))
		err := &Error{
			Code:    int(rc),
			Message: libc.GoString(sqlite3.Xsqlite3_errmsg(c.tls, db)),
			Offset:  -1,
		}
		if db != 0 {
			sqlite3.Xsqlite3_close_v2(c.tls, db)
		}
		return 0, err
	}

	return *(*uintptr)(unsafe.Pointer(pdb)), nil
}

// Close finalizes the connection. It is safe to call more than once.
//
// https://www.sqlite.org/c3ref/close.html
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != 0 {
		if rc := sqlite3.Xsqlite3_close_v2(c.tls, c.db); rc != sqlite3.SQLITE_OK {
			return c.lastError(rc)
		}
		c.db = 0
	}

	if c.tls != nil {
		c.tls.Close()
		c.tls = nil
	}
	return nil
}

// Prepare compiles the first statement in query into a prepared
// statement and returns the unconsumed tail of the SQL text. A query
// holding only whitespace or comments yields a nil Stmt.
//
// https://www.sqlite.org/c3ref/prepare.html
func (c *Conn) Prepare(query string) (*Stmt, string, error) {
	var zSQL, ppstmt, pptail uintptr

	defer func() {
		c.free(zSQL)
		c.free(ppstmt)
		c.free(pptail)
	}()

	zSQL, err := libc.CString(query)
	if err != nil {
		return nil, "", err
	}
	if ppstmt, err = c.malloc(ptrSize); err != nil {
		return nil, "", err
	}
	if pptail, err = c.malloc(ptrSize); err != nil {
		return nil, "", err
	}

	if rc := sqlite3.Xsqlite3_prepare_v2(c.tls, c.db, zSQL, -1, ppstmt, pptail); rc != sqlite3.SQLITE_OK {
		return nil, "", c.prepareError(rc)
	}

	tail := libc.GoString(*(*uintptr)(unsafe.Pointer(pptail)))
	pstmt := *(*uintptr)(unsafe.Pointer(ppstmt))
	if pstmt == 0 {
		return nil, tail, nil
	}
	return &Stmt{conn: c, stmt: pstmt}, tail, nil
}

// BusyTimeout sets the connection's busy handler to sleep for up to the
// given number of milliseconds when a table is locked.
//
// https://www.sqlite.org/c3ref/busy_timeout.html
func (c *Conn) BusyTimeout(ms int) error {
	if rc := sqlite3.Xsqlite3_busy_timeout(c.tls, c.db, int32(ms)); rc != sqlite3.SQLITE_OK {
		return c.lastError(rc)
	}
	return nil
}

// Interrupt asks the connection to abort its current operation at the
// next opportunity. Safe to call from any goroutine.
//
// https://www.sqlite.org/c3ref/interrupt.html
func (c *Conn) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tls != nil && c.db != 0 {
		sqlite3.Xsqlite3_interrupt(c.tls, c.db)
	}
}

// LastInsertRowID returns the row ID of the most recent successful
// INSERT on this connection.
//
// https://www.sqlite.org/c3ref/last_insert_rowid.html
func (c *Conn) LastInsertRowID() int64 {
	return sqlite3.Xsqlite3_last_insert_rowid(c.tls, c.db)
}

// Changes returns the number of rows modified, inserted, or deleted by
// the most recently completed statement on this connection.
//
// https://www.sqlite.org/c3ref/changes.html
func (c *Conn) Changes() int64 {
	return int64(sqlite3.Xsqlite3_changes(c.tls, c.db))
}

// TotalChanges returns the number of rows changed since the connection
// was opened.
//
// https://www.sqlite.org/c3ref/total_changes.html
func (c *Conn) TotalChanges() int64 {
	return int64(sqlite3.Xsqlite3_total_changes(c.tls, c.db))
}

// ReadOnly reports whether the attached database schema is read-only.
// Use "main" for the primary database.
//
// https://www.sqlite.org/c3ref/db_readonly.html
func (c *Conn) ReadOnly(schema string) (bool, error) {
	zSchema, err := libc.CString(schema)
	if err != nil {
		return false, err
	}
	defer c.free(zSchema)

	switch r := sqlite3.Xsqlite3_db_readonly(c.tls, c.db, zSchema); r {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("not a name of a database on this connection: %q", schema)
	}
}

// lastError builds an *Error from the given result code and the
// connection's current error message.
func (c *Conn) lastError(rc int32) *Error {
	msg := libc.GoString(sqlite3.Xsqlite3_errmsg(c.tls, c.db))
	if msg == "" {
		msg = libc.GoString(sqlite3.Xsqlite3_errstr(c.tls, rc))
	}
	return &Error{Code: int(rc), Message: msg, Offset: -1}
}

// prepareError is lastError plus the byte offset into the SQL text, when
// the engine reports one.
//
// https://www.sqlite.org/c3ref/error_offset.html
func (c *Conn) prepareError(rc int32) *Error {
	err := c.lastError(rc)
	if off := sqlite3.Xsqlite3_error_offset(c.tls, c.db); off >= 0 {
		err.Offset = int(off)
	}
	return err
}

func (c *Conn) malloc(n int) (uintptr, error) {
	if p := libc.Xmalloc(c.tls, types.Size_t(n)); p != 0 || n == 0 {
		return p, nil
	}
	return 0, fmt.Errorf("cannot allocate %d bytes of native memory", n)
}

func (c *Conn) free(p uintptr) {
	if p != 0 {
		libc.Xfree(c.tls, p)
	}
}
