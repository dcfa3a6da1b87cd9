package shell

import (
	"time"

	"github.com/squiredb/squire/internal/util/syncutil"
)

// sessionStats counts what happened during one shell session.
type sessionStats struct {
	startedAt *syncutil.AtomicTime
	database  *syncutil.AtomicString
	reads     syncutil.Counter
	writes    syncutil.Counter
	errors    syncutil.Counter
	rowsRead  syncutil.Counter
}

func newSessionStats(database string) *sessionStats {
	return &sessionStats{
		startedAt: syncutil.NewAtomicTime(time.Now()),
		database:  syncutil.NewAtomicString(database),
	}
}
