package squire

// Transaction scopes a sequence of statements that commit or roll back
// together. Obtain one from Connection.Begin, or use Connection.Transact
// to get commit-on-success and rollback-on-failure handled for you.
//
// A Transaction that is never committed must be rolled back; deferring
// Rollback right after Begin is the usual shape, since Rollback after a
// successful Commit is a no-op.
type Transaction struct {
	conn *Connection
	done bool
}

// Begin starts a deferred transaction on the connection. Statements run
// on the connection while the transaction is open are part of it.
func (c *Connection) Begin() (*Transaction, error) {
	if _, err := c.Execute("BEGIN"); err != nil {
		return nil, err
	}
	return &Transaction{conn: c}, nil
}

// Commit makes the transaction's changes durable. Commit on a finished
// transaction is a no-op.
func (t *Transaction) Commit() error {
	if t.done {
		return nil
	}
	if _, err := t.conn.Execute("COMMIT"); err != nil {
		return err
	}
	t.done = true
	return nil
}

// Rollback discards the transaction's changes. Rollback after Commit,
// or a second Rollback, is a no-op.
func (t *Transaction) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	_, err := t.conn.Execute("ROLLBACK")
	return err
}

// Transact runs fn inside a transaction. The transaction commits when
// fn returns nil and rolls back when fn returns an error or panics; a
// panic is re-raised after the rollback.
func (c *Connection) Transact(fn func(tx *Transaction) error) error {
	tx, err := c.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
