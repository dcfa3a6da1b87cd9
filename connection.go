package squire

import (
	"fmt"
	"sync"
	"time"

	"github.com/squiredb/squire/internal/sqlitec"
)

// Connection is an exclusively owned handle to one open database. It is
// created by Open or ConnectionBuilder.Open and must be closed when no
// longer needed.
//
// Unless the connection was opened with ThreadingSerialized, it must
// not be used from more than one goroutine at a time. Close and
// Interrupt are always safe to call concurrently with other methods.
type Connection struct {
	conn *sqlitec.Conn
	mode ThreadingMode

	mu     sync.Mutex
	closed bool
	stmts  map[*Statement]struct{}
}

// ConnectionBuilder accumulates open options for a Connection. The zero
// builder is not useful; start from NewConnection. Builder methods
// mutate and return the same builder, so calls chain.
type ConnectionBuilder struct {
	readOnly  bool
	create    bool
	threading ThreadingMode
	busy      time.Duration
	uri       bool
	noFollow  bool
	vfs       string
}

// NewConnection returns a builder with the defaults: read-write, create
// the database if missing, serialized threading, no busy timeout, URI
// filenames off, symbolic links followed, default VFS.
func NewConnection() *ConnectionBuilder {
	return &ConnectionBuilder{
		create:    true,
		threading: ThreadingSerialized,
	}
}

// ReadOnly opens the database for reading only. Opening fails if the
// database does not already exist.
func (b *ConnectionBuilder) ReadOnly() *ConnectionBuilder {
	b.readOnly = true
	return b
}

// ReadWrite opens the database for reading and writing. When create is
// true a missing database file is created on open.
func (b *ConnectionBuilder) ReadWrite(create bool) *ConnectionBuilder {
	b.readOnly = false
	b.create = create
	return b
}

// Threading selects the threading mode for the connection. Opening
// fails with ErrThreadingUnsupported if the mode is stronger than what
// the linked engine was compiled with.
func (b *ConnectionBuilder) Threading(mode ThreadingMode) *ConnectionBuilder {
	b.threading = mode
	return b
}

// BusyTimeout makes statements that hit a locked database retry for up
// to d before failing with a busy error. Zero disables retrying.
func (b *ConnectionBuilder) BusyTimeout(d time.Duration) *ConnectionBuilder {
	b.busy = d
	return b
}

// URIFilenames enables URI filename interpretation for the location
// string, so "file:data.db?mode=ro" style locations work.
func (b *ConnectionBuilder) URIFilenames() *ConnectionBuilder {
	b.uri = true
	return b
}

// FollowSymbolicLinks controls whether the database path may be a
// symbolic link. Following is on by default.
func (b *ConnectionBuilder) FollowSymbolicLinks(follow bool) *ConnectionBuilder {
	b.noFollow = !follow
	return b
}

// VFS selects a named VFS module instead of the default one.
func (b *ConnectionBuilder) VFS(name string) *ConnectionBuilder {
	b.vfs = name
	return b
}

// Open opens db with the accumulated options.
func (b *ConnectionBuilder) Open(db Database) (*Connection, error) {
	lib, err := sqlitec.Probe()
	if err != nil {
		return nil, &OpenError{Err: fmt.Errorf("failed to initialize engine: %w", err)}
	}

	mode, err := resolveThreadingMode(compiledThreadingMode(lib.Threadsafe), b.threading)
	if err != nil {
		return nil, &OpenError{Err: err}
	}

	flags := 0
	if b.readOnly {
		flags |= sqlitec.OpenReadOnly
	} else {
		flags |= sqlitec.OpenReadWrite
		if b.create {
			flags |= sqlitec.OpenCreate
		}
	}
	switch mode {
	case ThreadingSerialized:
		flags |= sqlitec.OpenFullMutex
	case ThreadingMulti:
		flags |= sqlitec.OpenNoMutex
	}
	if b.uri || db.uri {
		flags |= sqlitec.OpenURI
	}
	if b.noFollow {
		flags |= sqlitec.OpenNoFollow
	}

	raw, err := sqlitec.Open(db.location, flags, b.vfs)
	if err != nil {
		return nil, &OpenError{Err: engineError(err)}
	}

	if b.busy > 0 {
		if err := raw.BusyTimeout(int(b.busy / time.Millisecond)); err != nil {
			raw.Close()
			return nil, &OpenError{Err: engineError(err)}
		}
	}

	return &Connection{
		conn:  raw,
		mode:  mode,
		stmts: make(map[*Statement]struct{}),
	}, nil
}

// Open opens db with the default options, shorthand for
// NewConnection().Open(db).
func Open(db Database) (*Connection, error) {
	return NewConnection().Open(db)
}

// Close finalizes every outstanding Statement and releases the engine
// handle. Close is idempotent; after the first call every other method
// reports ErrConnectionClosed.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	stmts := make([]*Statement, 0, len(c.stmts))
	for s := range c.stmts {
		stmts = append(stmts, s)
	}
	c.stmts = nil
	c.mu.Unlock()

	for _, s := range stmts {
		s.finalize()
	}
	return c.conn.Close()
}

// ThreadingMode returns the mode the connection was opened with.
func (c *Connection) ThreadingMode() ThreadingMode { return c.mode }

// Prepare compiles SQL text into a Statement. The text must hold
// exactly one statement; trailing content other than whitespace and
// comments is a prepare error. Comment-only text yields a Statement
// that produces no rows and no changes.
func (c *Connection) Prepare(query string) (*Statement, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnectionClosed
	}
	c.mu.Unlock()

	raw, tail, err := c.conn.Prepare(query)
	if err != nil {
		return nil, &PrepareError{Err: engineError(err)}
	}
	if !c.blankTail(tail) {
		if raw != nil {
			raw.Finalize()
		}
		return nil, &PrepareError{Err: fmt.Errorf("query contains more than one statement")}
	}

	stmt := newStatement(c, raw)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		stmt.finalize()
		return nil, ErrConnectionClosed
	}
	c.stmts[stmt] = struct{}{}
	c.mu.Unlock()
	return stmt, nil
}

// Execute prepares query, binds args positionally, runs it to
// completion, and reports what changed. It is the one-shot path for
// statements whose rows, if any, the caller does not want.
func (c *Connection) Execute(query string, args ...any) (ChangeSummary, error) {
	stmt, err := c.Prepare(query)
	if err != nil {
		return ChangeSummary{}, err
	}
	defer stmt.Close()

	if err := stmt.Bind(args...); err != nil {
		return ChangeSummary{}, err
	}
	for {
		more, err := stmt.Step()
		if err != nil {
			return ChangeSummary{}, err
		}
		if !more {
			break
		}
	}

	id, _ := NewRowID(c.conn.LastInsertRowID())
	return ChangeSummary{
		RowsAffected: c.conn.Changes(),
		LastInsertID: id,
	}, nil
}

// ExecuteScript runs every statement in script in order, stopping at
// the first error. Statements take no parameters and their rows are
// discarded. Useful for schema setup.
func (c *Connection) ExecuteScript(script string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConnectionClosed
	}
	c.mu.Unlock()

	rest := script
	for !blankSQL(rest) {
		raw, tail, err := c.conn.Prepare(rest)
		if err != nil {
			return &PrepareError{Err: engineError(err)}
		}
		rest = tail
		if raw == nil {
			continue
		}
		for {
			row, err := raw.Step()
			if err != nil {
				raw.Finalize()
				return &StepError{Err: engineError(err)}
			}
			if !row {
				break
			}
		}
		if err := raw.Finalize(); err != nil {
			return &StepError{Err: engineError(err)}
		}
	}
	return nil
}

// Interrupt asks the engine to abort the statement currently running on
// the connection, if any. The interrupted statement fails with an
// interrupt step error. Safe to call from any goroutine, including
// concurrently with the running statement.
func (c *Connection) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.conn.Interrupt()
}

// LastInsertID returns the row ID assigned by the most recent
// successful INSERT on this connection, or an invalid RowID when
// nothing has been inserted yet.
func (c *Connection) LastInsertID() (RowID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrConnectionClosed
	}
	id, _ := NewRowID(c.conn.LastInsertRowID())
	return id, nil
}

// Changes returns the number of rows changed by the most recent
// statement on this connection.
func (c *Connection) Changes() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrConnectionClosed
	}
	return c.conn.Changes(), nil
}

// TotalChanges returns the number of rows changed since the connection
// was opened.
func (c *Connection) TotalChanges() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrConnectionClosed
	}
	return c.conn.TotalChanges(), nil
}

// ReadOnly reports whether the main database is read-only.
func (c *Connection) ReadOnly() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrConnectionClosed
	}
	return c.conn.ReadOnly("main")
}

// forget drops a finalized Statement from the tracking set.
func (c *Connection) forget(s *Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stmts != nil {
		delete(c.stmts, s)
	}
}

// ChangeSummary reports the effect of a one-shot Execute.
type ChangeSummary struct {
	// RowsAffected counts the rows inserted, updated, or deleted by the
	// statement. Zero for statements that change nothing.
	RowsAffected int64
	// LastInsertID is the row ID assigned by the statement if it was an
	// INSERT; otherwise it carries whatever the connection last
	// assigned, which may be the invalid zero RowID.
	LastInsertID RowID
}

// blankTail reports whether tail holds nothing the engine would
// compile. Trailing whitespace, semicolons, and comments are all fine;
// comments are recognized by the engine itself, which returns a nil
// statement for comment-only text.
func (c *Connection) blankTail(tail string) bool {
	if blankSQL(tail) {
		return true
	}
	raw, rest, err := c.conn.Prepare(tail)
	if err != nil || raw != nil {
		if raw != nil {
			raw.Finalize()
		}
		return false
	}
	return c.blankTail(rest)
}

// blankSQL reports whether s holds only whitespace and semicolons.
func blankSQL(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f', ';':
		default:
			return false
		}
	}
	return true
}
