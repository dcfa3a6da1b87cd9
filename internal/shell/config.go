package shell

import (
	"fmt"
	"log"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/squiredb/squire/internal/version"
)

// Config represents the configuration for the squire shell.
type Config struct {
	Database    string        `arg:"positional" help:"Path to the SQLite database file, or :memory: for a throwaway in-memory database" default:":memory:"`
	ReadOnly    bool          `arg:"--readonly" help:"Open the database read-only" default:"false"`
	BusyTimeout time.Duration `arg:"--busy-timeout,env:SQUIRE_BUSY_TIMEOUT" help:"How long statements wait on a locked database before failing" default:"5s"`
	URI         bool          `arg:"--uri" help:"Interpret the database argument as a URI filename" default:"false"`
}

func (Config) Version() string {
	return fmt.Sprintf("%s\n", version.ShellVersion())
}

// MustParse parses and validates the configuration from the command
// line arguments. It returns a Config struct or exits the program
// with an error.
func MustParse(args []string) Config {
	cfg := Config{}

	parser, err := arg.NewParser(
		arg.Config{},
		&cfg,
	)
	if err != nil {
		log.Fatal(err)
	}
	parser.MustParse(args[1:])

	return cfg
}
