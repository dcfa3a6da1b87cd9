// Package driver provides a database/sql/driver implementation backed
// by squire connections.
//
// This package exists for applications that want the connection
// pooling and retry behavior of database/sql on top of squire. Code
// that wants squire's typed binding and extraction should use squire
// directly.
package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"

	"github.com/squiredb/squire"
)

var (
	_ driver.Driver          = (*Driver)(nil)
	_ driver.Conn            = (*Conn)(nil)
	_ driver.Validator       = (*Conn)(nil)
	_ driver.SessionResetter = (*Conn)(nil)
	_ driver.Connector       = (*Connector)(nil)
	_ driver.Stmt            = (*Stmt)(nil)
	_ driver.Rows            = (*Rows)(nil)
	_ driver.Tx              = (*Tx)(nil)
)

func init() {
	sql.Register("squire", &Driver{})
}

// Driver implements the database/sql/driver interface.
type Driver struct{}

// Open creates a new connection to the SQLite database.
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector := NewConnector(dsn)
	return connector.Connect(context.Background())
}

type connectorOption func(*Connector)

// WithPostConnectQueries sets a slice of queries to be executed after a
// connection is established.
func WithPostConnectQueries(queries []string) connectorOption {
	return func(connector *Connector) {
		connector.postConnectQueries = queries
	}
}

// Connector implements the database/sql/driver.Connector interface.
type Connector struct {
	dsn                string
	postConnectQueries []string
}

// NewConnector creates a new connector to the SQLite database. The dsn
// is a path, ":memory:", or an engine URI filename.
func NewConnector(dsn string, options ...connectorOption) driver.Connector {
	connector := &Connector{
		dsn: dsn,
	}

	for _, option := range options {
		option(connector)
	}

	return connector
}

// Connect creates a new connection to the SQLite database.
func (connector *Connector) Connect(_ context.Context) (driver.Conn, error) {
	db := squire.File(connector.dsn)
	if connector.dsn == ":memory:" {
		db = squire.Memory()
	}

	conn, err := squire.NewConnection().URIFilenames().Open(db)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	for _, query := range connector.postConnectQueries {
		if _, err := conn.Execute(query); err != nil {
			conn.Close()
			return nil, fmt.Errorf(`failed to execute "%s" post-connect query: %w`, query, err)
		}
	}

	return &Conn{conn: conn}, nil
}

// Driver returns the driver.
func (connector *Connector) Driver() driver.Driver {
	return &Driver{}
}

// Conn implements the database/sql/driver.Conn interface.
type Conn struct {
	conn *squire.Connection
}

// RawConn returns the underlying squire connection.
func (c *Conn) RawConn() *squire.Connection {
	return c.conn
}

// Close closes the connection to the SQLite database.
func (c *Conn) Close() error {
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// Prepare compiles query into a statement.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &Stmt{stmt: stmt, conn: c.conn}, nil
}

// Begin starts a transaction.
func (c *Conn) Begin() (driver.Tx, error) {
	tx, err := c.conn.Begin()
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// ResetSession is a no-op; connections carry no session state between
// uses.
func (c *Conn) ResetSession(_ context.Context) error {
	return nil
}

// IsValid reports whether the connection can be reused.
func (c *Conn) IsValid() bool {
	_, err := c.conn.Changes()
	return err == nil
}

// Stmt implements the database/sql/driver.Stmt interface.
type Stmt struct {
	stmt *squire.Statement
	conn *squire.Connection
}

// Close finalizes the statement.
func (s *Stmt) Close() error {
	return s.stmt.Close()
}

// NumInput returns the number of parameter slots.
func (s *Stmt) NumInput() int {
	n, err := s.stmt.ParameterCount()
	if err != nil {
		return -1
	}
	return n
}

func (s *Stmt) bind(args []driver.Value) error {
	anyArgs := make([]any, len(args))
	for i, a := range args {
		anyArgs[i] = a
	}
	return s.stmt.Bind(anyArgs...)
}

// Exec runs the statement to completion and reports what changed.
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	if err := s.bind(args); err != nil {
		return nil, err
	}
	for {
		more, err := s.stmt.Step()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}

	changes, err := s.conn.Changes()
	if err != nil {
		return nil, err
	}
	lastID, err := s.conn.LastInsertID()
	if err != nil {
		return nil, err
	}
	return result{rowsAffected: changes, lastInsertID: lastID.Int64()}, nil
}

type result struct {
	rowsAffected int64
	lastInsertID int64
}

func (r result) LastInsertId() (int64, error) { return r.lastInsertID, nil }
func (r result) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// Query runs the statement and returns its rows.
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	if err := s.bind(args); err != nil {
		return nil, err
	}
	cols, err := s.stmt.Columns()
	if err != nil {
		return nil, err
	}
	return &Rows{rows: s.stmt.Rows(), cols: cols}, nil
}

// Rows implements the database/sql/driver.Rows interface.
type Rows struct {
	rows *squire.Rows
	cols []string
}

// Columns returns the result column names.
func (r *Rows) Columns() []string {
	return r.cols
}

// Close stops iteration. The statement stays prepared for reuse.
func (r *Rows) Close() error {
	return nil
}

// Next fills dest with the next row's values.
func (r *Rows) Next(dest []driver.Value) error {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return err
		}
		return io.EOF
	}

	vals := make([]any, len(dest))
	ptrs := make([]any, len(dest))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return err
	}
	for i, v := range vals {
		dest[i] = v
	}
	return nil
}

// Tx implements the database/sql/driver.Tx interface.
type Tx struct {
	tx *squire.Transaction
}

// Commit makes the transaction durable.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback discards the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
