// Command squire-probe reports what the linked SQLite engine was
// compiled with: the numeric version, the threadsafety level, and the
// full list of compile-time options. Build tooling parses this output
// to learn the threading-mode contract the engine enforces at runtime.
//
// Output format: the version number on the first line, the threadsafe
// flag on the second, a blank line, then one compile option per line.
package main

import (
	"fmt"
	"os"

	"github.com/squiredb/squire/internal/log"
	"github.com/squiredb/squire/internal/sqlitec"
)

func main() {
	logger := log.NewLogger(os.Stderr)

	lib, err := sqlitec.Probe()
	if err != nil {
		logger.Error("failed to initialize engine", log.KV{"error": err.Error()})
		os.Exit(1)
	}

	fmt.Println(lib.VersionNumber)
	fmt.Println(lib.Threadsafe)
	fmt.Println()
	for _, opt := range lib.CompileOptions {
		fmt.Println(opt)
	}
}
