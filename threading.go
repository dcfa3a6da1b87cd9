package squire

import "github.com/orsinium-labs/enum"

// ThreadingMode selects how much concurrency the engine must tolerate
// for a connection.
type ThreadingMode enum.Member[string]

var (
	// ThreadingSingle disables all mutexing. The connection, and the
	// engine as a whole, must only ever be touched from one goroutine
	// locked to one thread.
	ThreadingSingle = ThreadingMode{Value: "single-thread"}

	// ThreadingMulti allows different connections on different threads
	// but each individual connection is still confined to one goroutine
	// at a time.
	ThreadingMulti = ThreadingMode{Value: "multi-thread"}

	// ThreadingSerialized makes a single connection safe for concurrent
	// use; the engine serializes access internally.
	ThreadingSerialized = ThreadingMode{Value: "serialized"}

	// ThreadingModes enumerates every threading mode.
	ThreadingModes = enum.New(ThreadingSingle, ThreadingMulti, ThreadingSerialized)
)

// strength orders threading modes by how much concurrency they permit.
// A connection may always request a mode weaker than the compiled one,
// never a stronger one.
func (m ThreadingMode) strength() int {
	switch m {
	case ThreadingSerialized:
		return 2
	case ThreadingMulti:
		return 1
	default:
		return 0
	}
}

// compiledThreadingMode translates the engine's sqlite3_threadsafe()
// report into a ThreadingMode. The engine reports 0 when mutexes were
// compiled out entirely, 1 when it defaults to serialized, and 2 when
// it defaults to multi-thread.
//
// https://www.sqlite.org/c3ref/threadsafe.html
func compiledThreadingMode(flag int) ThreadingMode {
	switch flag {
	case 0:
		return ThreadingSingle
	case 2:
		return ThreadingMulti
	default:
		return ThreadingSerialized
	}
}

// resolveThreadingMode validates a requested mode against the mode the
// linked engine was compiled with. Requesting a mode stronger than the
// compiled one fails with ErrThreadingUnsupported; requesting a weaker
// or equal one succeeds and is what the connection gets.
func resolveThreadingMode(compiled, requested ThreadingMode) (ThreadingMode, error) {
	if requested.strength() > compiled.strength() {
		return ThreadingMode{}, ErrThreadingUnsupported
	}
	return requested, nil
}
