package squire

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpen(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		conn, err := Open(Memory())
		assert.NoError(t, err)
		assert.NoError(t, conn.Close())
	})

	t.Run("MemoryIsPrivate", func(t *testing.T) {
		db := Memory()

		a, err := Open(db)
		assert.NoError(t, err)
		defer a.Close()
		b, err := Open(db)
		assert.NoError(t, err)
		defer b.Close()

		_, err = a.Execute("CREATE TABLE t (x INTEGER)")
		assert.NoError(t, err)

		_, err = b.Execute("SELECT * FROM t")
		var perr *PrepareError
		assert.ErrorAs(t, err, &perr)
	})

	t.Run("NamedMemoryIsShared", func(t *testing.T) {
		db := NamedMemory("conn_test_shared")

		a, err := Open(db)
		assert.NoError(t, err)
		defer a.Close()

		_, err = a.Execute("CREATE TABLE t (x INTEGER)")
		assert.NoError(t, err)

		b, err := Open(db)
		assert.NoError(t, err)
		defer b.Close()

		_, err = b.Execute("INSERT INTO t (x) VALUES (1)")
		assert.NoError(t, err)
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")

		conn, err := Open(File(path))
		assert.NoError(t, err)
		_, err = conn.Execute("CREATE TABLE t (x INTEGER)")
		assert.NoError(t, err)
		assert.NoError(t, conn.Close())

		conn, err = Open(File(path))
		assert.NoError(t, err)
		defer conn.Close()
		_, err = conn.Execute("INSERT INTO t (x) VALUES (1)")
		assert.NoError(t, err)
	})

	t.Run("ReadOnlyMissingFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.db")

		_, err := NewConnection().ReadOnly().Open(File(path))
		var oerr *OpenError
		assert.ErrorAs(t, err, &oerr)
	})

	t.Run("NoCreateMissingFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.db")

		_, err := NewConnection().ReadWrite(false).Open(File(path))
		var oerr *OpenError
		assert.ErrorAs(t, err, &oerr)
	})

	t.Run("ReadOnlyFlagReported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ro.db")

		conn, err := Open(File(path))
		assert.NoError(t, err)
		_, err = conn.Execute("CREATE TABLE t (x INTEGER)")
		assert.NoError(t, err)
		assert.NoError(t, conn.Close())

		conn, err = NewConnection().ReadOnly().Open(File(path))
		assert.NoError(t, err)
		defer conn.Close()

		ro, err := conn.ReadOnly()
		assert.NoError(t, err)
		assert.True(t, ro)
	})

	t.Run("URIDescriptor", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "uri.db")

		conn, err := Open(URI("file:" + path))
		assert.NoError(t, err)
		defer conn.Close()

		_, err = conn.Execute("CREATE TABLE t (x INTEGER)")
		assert.NoError(t, err)
	})

	t.Run("ThreadingModeRecorded", func(t *testing.T) {
		conn, err := NewConnection().Threading(ThreadingSingle).Open(Memory())
		assert.NoError(t, err)
		defer conn.Close()
		assert.Equal(t, ThreadingSingle, conn.ThreadingMode())
	})
}

func TestConnectionClose(t *testing.T) {
	t.Run("Idempotent", func(t *testing.T) {
		conn, err := Open(Memory())
		assert.NoError(t, err)
		assert.NoError(t, conn.Close())
		assert.NoError(t, conn.Close())
	})

	t.Run("UseAfterClose", func(t *testing.T) {
		conn, err := Open(Memory())
		assert.NoError(t, err)
		assert.NoError(t, conn.Close())

		_, err = conn.Prepare("SELECT 1")
		assert.ErrorIs(t, err, ErrConnectionClosed)
		_, err = conn.Execute("SELECT 1")
		assert.ErrorIs(t, err, ErrConnectionClosed)
		assert.ErrorIs(t, conn.ExecuteScript("SELECT 1"), ErrConnectionClosed)
		_, err = conn.Changes()
		assert.ErrorIs(t, err, ErrConnectionClosed)
	})

	t.Run("FinalizesOutstandingStatements", func(t *testing.T) {
		conn, err := Open(Memory())
		assert.NoError(t, err)

		stmt, err := conn.Prepare("SELECT 1")
		assert.NoError(t, err)

		assert.NoError(t, conn.Close())

		// The statement was finalized along with its connection.
		_, err = stmt.Step()
		assert.ErrorIs(t, err, ErrStatementClosed)
	})
}

func TestExecute(t *testing.T) {
	t.Run("ChangeSummary", func(t *testing.T) {
		conn := openTestDB(t)

		res, err := conn.Execute("INSERT INTO users (username, score) VALUES (?, ?)", "boo", 0.69)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), res.RowsAffected)
		assert.Equal(t, int64(1), res.LastInsertID.Int64())

		res, err = conn.Execute("UPDATE users SET score = 1.0")
		assert.NoError(t, err)
		assert.Equal(t, int64(1), res.RowsAffected)
	})

	t.Run("Counters", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "a", 1)
		insertUser(t, conn, "b", 2)

		id, err := conn.LastInsertID()
		assert.NoError(t, err)
		assert.Equal(t, int64(2), id.Int64())

		changes, err := conn.Changes()
		assert.NoError(t, err)
		assert.Equal(t, int64(1), changes)

		total, err := conn.TotalChanges()
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("Script", func(t *testing.T) {
		conn, err := Open(Memory())
		assert.NoError(t, err)
		defer conn.Close()

		err = conn.ExecuteScript(`
			CREATE TABLE a (x INTEGER);
			CREATE TABLE b (y INTEGER);
			-- a comment between statements
			INSERT INTO a (x) VALUES (1);
			INSERT INTO b (y) VALUES (2);
		`)
		assert.NoError(t, err)

		var n int64
		stmt, err := conn.Prepare("SELECT COUNT(*) FROM a")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Fetch(&n))
		assert.Equal(t, int64(1), n)
	})

	t.Run("ScriptStopsAtFirstError", func(t *testing.T) {
		conn, err := Open(Memory())
		assert.NoError(t, err)
		defer conn.Close()

		err = conn.ExecuteScript(`
			CREATE TABLE a (x INTEGER);
			CREATE BOGUS;
			CREATE TABLE b (y INTEGER);
		`)
		var perr *PrepareError
		assert.ErrorAs(t, err, &perr)

		// The first statement ran, the third never did.
		_, err = conn.Execute("SELECT * FROM a")
		assert.NoError(t, err)
		_, err = conn.Execute("SELECT * FROM b")
		assert.ErrorAs(t, err, &perr)
	})
}

func TestTransaction(t *testing.T) {
	t.Run("Commit", func(t *testing.T) {
		conn := openTestDB(t)

		tx, err := conn.Begin()
		assert.NoError(t, err)
		insertUser(t, conn, "boo", 0.69)
		assert.NoError(t, tx.Commit())

		var n int64
		stmt, err := conn.Prepare("SELECT COUNT(*) FROM users")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Fetch(&n))
		assert.Equal(t, int64(1), n)
	})

	t.Run("Rollback", func(t *testing.T) {
		conn := openTestDB(t)

		tx, err := conn.Begin()
		assert.NoError(t, err)
		insertUser(t, conn, "boo", 0.69)
		assert.NoError(t, tx.Rollback())

		var n int64
		stmt, err := conn.Prepare("SELECT COUNT(*) FROM users")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Fetch(&n))
		assert.Equal(t, int64(0), n)
	})

	t.Run("RollbackAfterCommitIsNoop", func(t *testing.T) {
		conn := openTestDB(t)

		tx, err := conn.Begin()
		assert.NoError(t, err)
		assert.NoError(t, tx.Commit())
		assert.NoError(t, tx.Rollback())
		assert.NoError(t, tx.Rollback())
	})

	t.Run("TransactCommitsOnNil", func(t *testing.T) {
		conn := openTestDB(t)

		err := conn.Transact(func(tx *Transaction) error {
			insertUser(t, conn, "boo", 0.69)
			return nil
		})
		assert.NoError(t, err)

		n, err := conn.TotalChanges()
		assert.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("TransactRollsBackOnError", func(t *testing.T) {
		conn := openTestDB(t)

		boom := assert.AnError
		err := conn.Transact(func(tx *Transaction) error {
			insertUser(t, conn, "boo", 0.69)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var n int64
		stmt, err := conn.Prepare("SELECT COUNT(*) FROM users")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Fetch(&n))
		assert.Equal(t, int64(0), n)
	})

	t.Run("TransactRollsBackOnPanic", func(t *testing.T) {
		conn := openTestDB(t)

		assert.Panics(t, func() {
			_ = conn.Transact(func(tx *Transaction) error {
				insertUser(t, conn, "boo", 0.69)
				panic("boom")
			})
		})

		var n int64
		stmt, err := conn.Prepare("SELECT COUNT(*) FROM users")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Fetch(&n))
		assert.Equal(t, int64(0), n)
	})
}
