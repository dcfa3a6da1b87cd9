package shell

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/squiredb/squire"
)

// maxDisplayRows caps how many rows one query prints; the rest is
// summarized in the footer.
const maxDisplayRows = 1000

func cmdQuery(r *Repl, input string) {
	tw := newTableWriter()

	switch strings.ToUpper(strings.TrimRight(strings.TrimSpace(input), ";")) {
	case "BEGIN", "BEGIN TRANSACTION":
		cmdBegin(r, tw)
		return
	case "COMMIT", "END", "END TRANSACTION":
		cmdCommit(r, tw)
		return
	case "ROLLBACK":
		cmdRollback(r, tw)
		return
	}

	stmt, err := r.conn.Prepare(input)
	if err != nil {
		renderError(r, tw, err)
		return
	}
	defer stmt.Close()

	cols, err := stmt.Columns()
	if err != nil {
		renderError(r, tw, err)
		return
	}

	if len(cols) == 0 {
		cmdWrite(r, tw, stmt)
		return
	}
	cmdRead(r, tw, stmt, cols)
}

func cmdBegin(r *Repl, tw table.Writer) {
	if r.tx != nil {
		renderError(r, tw, fmt.Errorf("a transaction is already open"))
		return
	}
	tx, err := r.conn.Begin()
	if err != nil {
		renderError(r, tw, err)
		return
	}
	r.tx = tx
	tw.AppendHeader(table.Row{"OK"})
	tw.AppendRow(table.Row{"Transaction started"})
	fmt.Println(tw.Render())
}

func cmdCommit(r *Repl, tw table.Writer) {
	if r.tx == nil {
		renderError(r, tw, fmt.Errorf("no transaction is open"))
		return
	}
	if err := r.tx.Commit(); err != nil {
		renderError(r, tw, err)
		return
	}
	r.tx = nil
	tw.AppendHeader(table.Row{"OK"})
	tw.AppendRow(table.Row{"Transaction committed"})
	fmt.Println(tw.Render())
}

func cmdRollback(r *Repl, tw table.Writer) {
	if r.tx == nil {
		renderError(r, tw, fmt.Errorf("no transaction is open"))
		return
	}
	if err := r.tx.Rollback(); err != nil {
		renderError(r, tw, err)
		return
	}
	r.tx = nil
	tw.AppendHeader(table.Row{"OK"})
	tw.AppendRow(table.Row{"Transaction rolled back"})
	fmt.Println(tw.Render())
}

func cmdWrite(r *Repl, tw table.Writer, stmt *squire.Statement) {
	for {
		more, err := stmt.Step()
		if err != nil {
			renderError(r, tw, err)
			return
		}
		if !more {
			break
		}
	}

	changes, _ := r.conn.Changes()
	lastID, _ := r.conn.LastInsertID()
	r.stats.writes.Inc()

	tw.AppendHeader(table.Row{"-", "Rows Affected", "Last Insert ID"})
	tw.AppendRow(table.Row{"OK", changes, lastID.Int64()})
	fmt.Println(tw.Render())
}

func cmdRead(r *Repl, tw table.Writer, stmt *squire.Statement, cols []string) {
	header := table.Row{}
	for _, col := range cols {
		header = append(header, col)
	}
	tw.AppendHeader(header)

	count := 0
	rows := stmt.Rows()
	for rows.Next() {
		count++
		if count > maxDisplayRows {
			continue
		}
		record := make([]any, len(cols))
		dests := make([]any, len(cols))
		for i := range record {
			dests[i] = &record[i]
		}
		if err := rows.Scan(dests...); err != nil {
			renderError(r, tw, err)
			return
		}
		tw.AppendRow(table.Row(record))
	}
	if err := rows.Err(); err != nil {
		renderError(r, tw, err)
		return
	}

	r.stats.reads.Inc()
	r.stats.rowsRead.Add(int64(count))

	if count > maxDisplayRows {
		tw.AppendFooter(table.Row{fmt.Sprintf("%d more rows not shown", count-maxDisplayRows)})
	}
	fmt.Println(tw.Render())
	dimmedColor().Printf("%d row(s)\n", count)
}

// renderError prints the error as a one-cell table, stripping the
// wrapper prefixes so the engine's own message stands out.
func renderError(r *Repl, tw table.Writer, err error) {
	r.stats.errors.Inc()
	tw.AppendHeader(table.Row{"Error"})
	tw.AppendRow(table.Row{cleanError(err)})
	fmt.Println(tw.Render())
}

func cleanError(err error) string {
	msg := err.Error()
	msg = strings.ReplaceAll(msg, "squire: failed to prepare statement:", "")
	msg = strings.ReplaceAll(msg, "squire: failed to step statement:", "")
	msg = strings.ReplaceAll(msg, "squire:", "")
	return strings.TrimSpace(msg)
}
