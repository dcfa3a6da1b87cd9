package sqlitec

import "fmt"

// Error preserves a native SQLite result code and error message verbatim.
//
// https://www.sqlite.org/rescode.html
type Error struct {
	// Code is the (possibly extended) native result code.
	Code int
	// Message is the engine's error message, unmodified.
	Message string
	// Offset is the byte offset into the SQL text where the error was
	// detected, or -1 when the engine did not report one.
	Offset int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}
