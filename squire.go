// Package squire is a safe, typed embedding layer over the SQLite
// native C interface.
//
// A Database describes where a database lives; opening it yields a
// Connection that exclusively owns one engine handle. Connections
// prepare Statements, Statements are filled through the parameter
// binder and advanced row by row, and the value codec converts between
// the engine's dynamic storage classes and typed Go values in both
// directions.
//
//	conn, err := squire.Open(squire.Memory())
//	if err != nil { ... }
//	defer conn.Close()
//
//	stmt, err := conn.Prepare("SELECT id, username, score FROM users WHERE id = ?")
//	if err != nil { ... }
//	defer stmt.Close()
//
//	if err := stmt.Bind(1); err != nil { ... }
//
//	var id int64
//	var username string
//	var score float64
//	if err := stmt.Fetch(&id, &username, &score); err != nil { ... }
//
// The engine's SQL execution, storage, and transaction logic stay with
// the engine; squire owns the lifecycle of connections and prepared
// statements, the mapping of typed values onto the engine's weakly
// typed parameter slots, and the mapping of weakly typed result columns
// back onto typed records.
package squire
