package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/squiredb/squire"
)

// Repl is an interactive session against one open database connection.
type Repl struct {
	conf        Config
	conn        *squire.Connection
	ctx         context.Context
	stop        context.CancelFunc
	stats       *sessionStats
	tx          *squire.Transaction
	historyPath string
}

func NewRepl(
	ctx context.Context,
	stop context.CancelFunc,
	conf Config,
	conn *squire.Connection,
) Repl {
	return Repl{
		conf:        conf,
		conn:        conn,
		ctx:         ctx,
		stop:        stop,
		stats:       newSessionStats(conf.Database),
		historyPath: filepath.Join(os.TempDir(), ".squire_history"),
	}
}

func (r *Repl) Start() error {
	mode := "read-write"
	if ro, err := r.conn.ReadOnly(); err == nil && ro {
		mode = "read-only"
	}

	fmt.Println()
	fmt.Printf("Connected to %s (%s, %s)\n", r.conf.Database, mode, r.conn.ThreadingMode().Value)
	fmt.Println(`Enter ".help" for usage hints and ".quit" or "CTRL+C" to quit`)
	fmt.Println()

	for {
		select {
		case <-r.ctx.Done():
			return nil
		default:
			input := r.prompt()

			if input == "" {
				continue
			}

			if input == "exit" || input == ".exit" || input == ".quit" {
				r.Shutdown()
				return nil
			}

			if input == "clear" || input == ".clear" {
				clearTerminal()
				continue
			}

			if input == "help" || input == ".help" {
				cmdHelp()
				continue
			}

			if input == ".tables" {
				cmdQuery(r, `SELECT name FROM sqlite_master WHERE type = 'table'`)
				continue
			}

			if input == ".indexes" {
				cmdQuery(r, `SELECT name FROM sqlite_master WHERE type = 'index'`)
				continue
			}

			if input == ".schema" {
				cmdQuery(r, `SELECT sql FROM sqlite_master WHERE sql IS NOT NULL`)
				continue
			}

			if name, ok := strings.CutPrefix(input, ".count "); ok {
				cmdCount(r, strings.TrimSpace(name))
				continue
			}

			if name, ok := strings.CutPrefix(input, ".columns "); ok {
				cmdColumns(r, strings.TrimSpace(name))
				continue
			}

			if input == ".stats" {
				cmdStats(r)
				continue
			}

			if strings.HasPrefix(input, ".") {
				fmt.Println("Unknown command, type .help for usage hints")
				continue
			}

			cmdQuery(r, input)
		}
	}
}

// Shutdown stops the REPL, rolling back any open transaction.
func (r *Repl) Shutdown() {
	if r.tx != nil {
		_ = r.tx.Rollback()
		r.tx = nil
	}
	r.stop()
}

// prompt shows the prompt and reads the input from the user.
func (r *Repl) prompt() string {
	label := "squire> "
	if r.tx != nil {
		label = "squire(tx)> "
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(cmdHelpCompleter)

	if file, err := os.Open(r.historyPath); err == nil {
		_, _ = line.ReadHistory(file)
		file.Close()
	}

	prompt, err := line.Prompt(label)
	if err != nil {
		if err == liner.ErrPromptAborted {
			fmt.Println("CTRL+C pressed, exiting...")
			return ".quit"
		}
		return ""
	}

	line.AppendHistory(prompt)
	if file, err := os.Create(r.historyPath); err == nil {
		_, _ = line.WriteHistory(file)
		file.Close()
	}

	return strings.TrimSpace(prompt)
}

func cmdCount(r *Repl, name string) {
	if !validIdentifier(name) {
		fmt.Println("Invalid table name")
		return
	}
	cmdQuery(r, "SELECT COUNT(*) AS count FROM "+strconv.Quote(name))
}

func cmdColumns(r *Repl, name string) {
	if !validIdentifier(name) {
		fmt.Println("Invalid table name")
		return
	}
	cmdQuery(r, "SELECT name, type, pk FROM pragma_table_info("+quoteText(name)+")")
}

// validIdentifier accepts plain table names; anything fancier has to
// be typed as SQL.
func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

func quoteText(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
