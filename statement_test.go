package squire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func openTestDB(t *testing.T) *Connection {
	t.Helper()
	conn, err := Open(Memory())
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	err = conn.ExecuteScript(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			score REAL NOT NULL,
			bio TEXT
		);
	`)
	assert.NoError(t, err)
	return conn
}

func insertUser(t *testing.T, conn *Connection, username string, score float64) RowID {
	t.Helper()
	res, err := conn.Execute("INSERT INTO users (username, score) VALUES (?, ?)", username, score)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.True(t, res.LastInsertID.Valid())
	return res.LastInsertID
}

func TestStatementFetch(t *testing.T) {
	t.Run("SingleRow", func(t *testing.T) {
		conn := openTestDB(t)
		id := insertUser(t, conn, "boo", 0.69)
		assert.Equal(t, int64(1), id.Int64())

		stmt, err := conn.Prepare("SELECT id, username, score FROM users WHERE id = ?")
		assert.NoError(t, err)
		defer stmt.Close()

		assert.NoError(t, stmt.Bind(int64(1)))

		var gotID RowID
		var username string
		var score float64
		assert.NoError(t, stmt.Fetch(&gotID, &username, &score))
		assert.Equal(t, int64(1), gotID.Int64())
		assert.Equal(t, "boo", username)
		assert.Equal(t, 0.69, score)
	})

	t.Run("NoRows", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT id FROM users WHERE id = ?")
		assert.NoError(t, err)
		defer stmt.Close()

		assert.NoError(t, stmt.Bind(int64(404)))

		var id int64
		assert.ErrorIs(t, stmt.Fetch(&id), ErrNoRows)
	})

	t.Run("ExtraRows", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "boo", 0.69)
		insertUser(t, conn, "moo", 0.42)

		stmt, err := conn.Prepare("SELECT username FROM users")
		assert.NoError(t, err)
		defer stmt.Close()

		assert.NoError(t, stmt.Bind())

		var username string
		assert.ErrorIs(t, stmt.Fetch(&username), ErrExtraRows)
	})

	t.Run("WrongDestCount", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "boo", 0.69)

		stmt, err := conn.Prepare("SELECT id, username FROM users")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Bind())

		var id int64
		var aerr *ArityError
		assert.ErrorAs(t, stmt.Fetch(&id), &aerr)
		assert.Equal(t, 2, aerr.Expected)
		assert.Equal(t, 1, aerr.Got)
	})
}

func TestStatementBind(t *testing.T) {
	t.Run("ArityMismatch", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT ? , ?")
		assert.NoError(t, err)
		defer stmt.Close()

		var aerr *ArityError
		assert.ErrorAs(t, stmt.Bind(1), &aerr)
		assert.Equal(t, 2, aerr.Expected)
		assert.Equal(t, 1, aerr.Got)
	})

	t.Run("NamedByMap", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "boo", 0.69)

		stmt, err := conn.Prepare("SELECT username FROM users WHERE id = :id AND score > @min")
		assert.NoError(t, err)
		defer stmt.Close()

		assert.NoError(t, stmt.BindNamed(map[string]any{"id": int64(1), "min": 0.5}))

		var username string
		assert.NoError(t, stmt.Fetch(&username))
		assert.Equal(t, "boo", username)
	})

	t.Run("NamedByStruct", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "boo", 0.69)

		stmt, err := conn.Prepare("SELECT username FROM users WHERE id = :id")
		assert.NoError(t, err)
		defer stmt.Close()

		params := struct {
			ID int64 `db:"id"`
		}{ID: 1}
		assert.NoError(t, stmt.BindNamed(params))

		var username string
		assert.NoError(t, stmt.Fetch(&username))
		assert.Equal(t, "boo", username)
	})

	t.Run("Reservation", func(t *testing.T) {
		conn := openTestDB(t)

		_, err := conn.Execute(
			"INSERT INTO users (username, score, bio) VALUES (?, ?, ?)",
			"boo", 0.69, Reservation(8),
		)
		assert.NoError(t, err)

		stmt, err := conn.Prepare("SELECT bio, length(bio) FROM users")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Bind())

		var bio []byte
		var size int64
		assert.NoError(t, stmt.Fetch(&bio, &size))
		assert.Equal(t, int64(8), size)
		assert.Equal(t, make([]byte, 8), bio)
	})

	t.Run("MissingNamed", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT id FROM users WHERE id = :id")
		assert.NoError(t, err)
		defer stmt.Close()

		var merr *MissingParameterError
		assert.ErrorAs(t, stmt.BindNamed(map[string]any{}), &merr)
		assert.Equal(t, ":id", merr.Name)
	})

	t.Run("UnknownNamed", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT id FROM users WHERE id = :id")
		assert.NoError(t, err)
		defer stmt.Close()

		var uerr *UnknownParameterError
		err = stmt.BindNamed(map[string]any{"id": int64(1), "bogus": 2})
		assert.ErrorAs(t, err, &uerr)
		assert.Equal(t, "bogus", uerr.Name)
	})

	t.Run("NamedOntoAnonymousSlots", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT id FROM users WHERE id = ?")
		assert.NoError(t, err)
		defer stmt.Close()

		var merr *MissingParameterError
		assert.ErrorAs(t, stmt.BindNamed(map[string]any{"id": int64(1)}), &merr)
		assert.Equal(t, "?1", merr.Name)
	})

	t.Run("UnsupportedValue", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT ?")
		assert.NoError(t, err)
		defer stmt.Close()

		var uerr *UnsupportedTypeError
		assert.ErrorAs(t, stmt.Bind(make(chan int)), &uerr)
	})

	t.Run("RebindResets", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "boo", 0.69)
		insertUser(t, conn, "moo", 0.42)

		stmt, err := conn.Prepare("SELECT username FROM users WHERE id = ?")
		assert.NoError(t, err)
		defer stmt.Close()

		var username string
		assert.NoError(t, stmt.Bind(int64(1)))
		assert.NoError(t, stmt.Fetch(&username))
		assert.Equal(t, "boo", username)

		// The first run finished; binding again starts a fresh one.
		assert.NoError(t, stmt.Bind(int64(2)))
		assert.NoError(t, stmt.Fetch(&username))
		assert.Equal(t, "moo", username)
	})
}

func TestStatementStep(t *testing.T) {
	t.Run("RowByRow", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "a", 1)
		insertUser(t, conn, "b", 2)

		stmt, err := conn.Prepare("SELECT username FROM users ORDER BY id")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Bind())

		names := []string{}
		for {
			more, err := stmt.Step()
			assert.NoError(t, err)
			if !more {
				break
			}
			var name string
			assert.NoError(t, stmt.scanRow(&name))
			names = append(names, name)
		}
		assert.Equal(t, []string{"a", "b"}, names)
	})

	t.Run("StepAfterDoneIsNoop", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT id FROM users")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Bind())

		more, err := stmt.Step()
		assert.NoError(t, err)
		assert.False(t, more)

		for i := 0; i < 3; i++ {
			more, err = stmt.Step()
			assert.NoError(t, err)
			assert.False(t, more)
		}
	})

	t.Run("FailedStepIsSticky", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "boo", 0.69)

		_, err := conn.Execute("CREATE UNIQUE INDEX users_username ON users (username)")
		assert.NoError(t, err)

		stmt, err := conn.Prepare("INSERT INTO users (username, score) VALUES ('boo', 0)")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Bind())

		_, err = stmt.Step()
		var serr *StepError
		assert.ErrorAs(t, err, &serr)

		_, again := stmt.Step()
		assert.Equal(t, err, again)

		// A rebind clears the sticky error.
		assert.NoError(t, stmt.Bind())
	})

	t.Run("ResetKeepsBindings", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "boo", 0.69)

		stmt, err := conn.Prepare("SELECT username FROM users WHERE id = ?")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Bind(int64(1)))

		var username string
		assert.NoError(t, stmt.Fetch(&username))
		assert.Equal(t, "boo", username)

		assert.NoError(t, stmt.Reset())
		assert.NoError(t, stmt.Fetch(&username))
		assert.Equal(t, "boo", username)
	})
}

func TestStatementMisc(t *testing.T) {
	t.Run("Columns", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT id, username AS name FROM users")
		assert.NoError(t, err)
		defer stmt.Close()

		cols, err := stmt.Columns()
		assert.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, cols)
	})

	t.Run("ParameterIntrospection", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT :a, ?")
		assert.NoError(t, err)
		defer stmt.Close()

		n, err := stmt.ParameterCount()
		assert.NoError(t, err)
		assert.Equal(t, 2, n)

		name, err := stmt.ParameterName(1)
		assert.NoError(t, err)
		assert.Equal(t, ":a", name)
	})

	t.Run("CommentOnly", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("-- just a comment")
		assert.NoError(t, err)
		defer stmt.Close()

		assert.NoError(t, stmt.Bind())
		more, err := stmt.Step()
		assert.NoError(t, err)
		assert.False(t, more)

		cols, err := stmt.Columns()
		assert.NoError(t, err)
		assert.Empty(t, cols)
	})

	t.Run("MultipleStatementsRejected", func(t *testing.T) {
		conn := openTestDB(t)

		_, err := conn.Prepare("SELECT 1; SELECT 2")
		var perr *PrepareError
		assert.ErrorAs(t, err, &perr)
	})

	t.Run("TrailingSemicolonAndCommentOK", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT 1; -- done")
		assert.NoError(t, err)
		stmt.Close()
	})

	t.Run("SyntaxErrorOffset", func(t *testing.T) {
		conn := openTestDB(t)

		_, err := conn.Prepare("SELECT id FRMO users")
		var perr *PrepareError
		assert.ErrorAs(t, err, &perr)

		var eerr *EngineError
		assert.ErrorAs(t, err, &eerr)
		assert.NotEmpty(t, eerr.Message)
	})

	t.Run("UseAfterClose", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT 1")
		assert.NoError(t, err)
		assert.NoError(t, stmt.Close())
		assert.NoError(t, stmt.Close())

		assert.ErrorIs(t, stmt.Bind(), ErrStatementClosed)
		_, err = stmt.Step()
		assert.ErrorIs(t, err, ErrStatementClosed)
		assert.ErrorIs(t, stmt.Reset(), ErrStatementClosed)
	})
}

func TestRows(t *testing.T) {
	t.Run("Iterate", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "a", 1)
		insertUser(t, conn, "b", 2)
		insertUser(t, conn, "c", 3)

		stmt, err := conn.Prepare("SELECT username, score FROM users ORDER BY id")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Bind())

		type row struct {
			name  string
			score float64
		}
		got := []row{}
		rows := stmt.Rows()
		for rows.Next() {
			var r row
			assert.NoError(t, rows.Scan(&r.name, &r.score))
			got = append(got, r)
		}
		assert.NoError(t, rows.Err())
		assert.Equal(t, []row{{"a", 1}, {"b", 2}, {"c", 3}}, got)

		// Exhausted for good; only a rebind starts a fresh run.
		assert.False(t, rows.Next())
	})

	t.Run("RangeOverAll", func(t *testing.T) {
		conn := openTestDB(t)
		insertUser(t, conn, "a", 1)
		insertUser(t, conn, "b", 2)

		stmt, err := conn.Prepare("SELECT username FROM users ORDER BY id")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Bind())

		names := []string{}
		rows := stmt.Rows()
		for row := range rows.All() {
			var name string
			assert.NoError(t, row.Scan(&name))
			names = append(names, name)
		}
		assert.NoError(t, rows.Err())
		assert.Equal(t, []string{"a", "b"}, names)
	})

	t.Run("ScanBeforeNext", func(t *testing.T) {
		conn := openTestDB(t)

		stmt, err := conn.Prepare("SELECT id FROM users")
		assert.NoError(t, err)
		defer stmt.Close()
		assert.NoError(t, stmt.Bind())

		var id int64
		assert.ErrorIs(t, stmt.Rows().Scan(&id), ErrNoRows)
	})
}
