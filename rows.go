package squire

import "iter"

// Rows iterates over a statement's result set row by row. Obtain one
// from Statement.Rows after binding. The usual shape:
//
//	rows := stmt.Rows()
//	for rows.Next() {
//		var id int64
//		var name string
//		if err := rows.Scan(&id, &name); err != nil { ... }
//	}
//	if err := rows.Err(); err != nil { ... }
//
// Rows is finite and not restartable; once Next has returned false the
// iterator stays exhausted. Rebind the statement for another run.
type Rows struct {
	stmt *Statement
	err  error
	done bool
	row  bool
}

// Next advances to the next row. It returns false when the rows are
// exhausted or a step failed; check Err afterwards to tell the two
// apart.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}
	row, err := r.stmt.Step()
	if err != nil {
		r.err = err
		r.done = true
		r.row = false
		return false
	}
	if !row {
		r.done = true
	}
	r.row = row
	return row
}

// Scan decodes the current row into dests, one pointer per result
// column. Only valid after Next has returned true.
func (r *Rows) Scan(dests ...any) error {
	if !r.row {
		return ErrNoRows
	}
	return r.stmt.scanRow(dests...)
}

// Record decodes the current row into the struct pointed to by target,
// matching result columns to fields by their `db` tags. Only valid
// after Next has returned true.
func (r *Rows) Record(target any) error {
	if !r.row {
		return ErrNoRows
	}
	return r.stmt.scanRecord(target)
}

// RecordWith is Record with an explicit Mapping instead of one derived
// from `db` tags.
func (r *Rows) RecordWith(target any, m *Mapping) error {
	if !r.row {
		return ErrNoRows
	}
	return r.stmt.scanRecordWith(target, m)
}

// All returns an iterator over the remaining rows, for use with a
// range loop:
//
//	for row := range stmt.Rows().All() {
//		var id int64
//		if err := row.Scan(&id); err != nil { ... }
//	}
//
// Check Err after the loop; iteration stops early on a step error.
func (r *Rows) All() iter.Seq[*Rows] {
	return func(yield func(*Rows) bool) {
		for r.Next() {
			if !yield(r) {
				return
			}
		}
	}
}

// Err returns the step error that terminated iteration, if any.
func (r *Rows) Err() error { return r.err }
