package shell

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/squiredb/squire/internal/util/numutil"
)

func cmdStats(r *Repl) {
	totalChanges, err := r.conn.TotalChanges()
	if err != nil {
		fmt.Println("Failed to get stats:", err)
		return
	}

	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Database", "Session", "Reads", "Writes", "Rows Read", "Rows Changed", "Errors"})
	tw.AppendRow(table.Row{
		r.stats.database.Load(),
		time.Since(r.stats.startedAt.Load()).Round(time.Second).String(),
		numutil.IntWithCommas(r.stats.reads.Load()),
		numutil.IntWithCommas(r.stats.writes.Load()),
		numutil.IntWithCommas(r.stats.rowsRead.Load()),
		numutil.IntWithCommas(totalChanges),
		numutil.IntWithCommas(r.stats.errors.Load()),
	})

	fmt.Println(tw.Render())
}
