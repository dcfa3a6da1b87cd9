// Package sqlitec provides a lightweight typed wrapper for the SQLite
// native entry points. It allows direct interaction with SQLite's
// low-level API.
//
// The entry points themselves come from modernc.org/sqlite/lib, the
// pure-Go translation of the SQLite amalgamation; this package owns the
// libc TLS lifecycle, string and blob marshalling into native memory,
// and result-code checking. Nothing above this package touches the raw
// entry points directly.
//
//   - https://www.sqlite.org/cintro.html
//   - https://www.sqlite.org/c3ref/intro.html
package sqlitec
