package sqlitec

import (
	"fmt"

	"modernc.org/libc"
	sqlite3 "modernc.org/sqlite/lib"
)

// Library describes the linked SQLite build: its version, its
// compile-time threading capability, and the compile options it was
// built with. This is the information the feature probe emits.
type Library struct {
	// VersionNumber is the version as a single integer, e.g. 3045000.
	VersionNumber int
	// Version is the dotted version string, e.g. "3.45.0".
	Version string
	// Threadsafe is the raw sqlite3_threadsafe() flag: 0 single-thread,
	// 1 serialized, 2 multi-thread.
	Threadsafe int
	// CompileOptions lists the SQLITE_ compile options, without the
	// "SQLITE_" prefix, in the order the engine reports them.
	CompileOptions []string
}

// Probe initializes the engine and reads the linked build's version,
// threading capability, and compile options.
//
// https://www.sqlite.org/c3ref/libversion.html
// https://www.sqlite.org/c3ref/threadsafe.html
// https://www.sqlite.org/c3ref/compileoption_get.html
func Probe() (*Library, error) {
	tls := libc.NewTLS()
	defer tls.Close()

	if rc := sqlite3.Xsqlite3_initialize(tls); rc != sqlite3.SQLITE_OK {
		msg := libc.GoString(sqlite3.Xsqlite3_errstr(tls, rc))
		return nil, fmt.Errorf("failed to initialize the engine: %s (%d)", msg, rc)
	}

	lib := &Library{
		VersionNumber: int(sqlite3.Xsqlite3_libversion_number(tls)),
		Version:       libc.GoString(sqlite3.Xsqlite3_libversion(tls)),
		Threadsafe:    int(sqlite3.Xsqlite3_threadsafe(tls)),
	}

	for i := int32(0); ; i++ {
		p := sqlite3.Xsqlite3_compileoption_get(tls, i)
		if p == 0 {
			break
		}
		lib.CompileOptions = append(lib.CompileOptions, libc.GoString(p))
	}

	return lib, nil
}

// Threadsafe returns the engine's compile-time threading flag without a
// full probe: 0 single-thread, 1 serialized, 2 multi-thread.
func Threadsafe() int {
	tls := libc.NewTLS()
	defer tls.Close()

	return int(sqlite3.Xsqlite3_threadsafe(tls))
}
