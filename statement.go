package squire

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/squiredb/squire/internal/sqlitec"
)

// stmtState tracks where a Statement is in its bind/step/fetch cycle.
type stmtState int

const (
	// stateReady: bound (or unbound with zero parameters) and not yet
	// stepped, or freshly reset.
	stateReady stmtState = iota
	// stateExecuting: stepped at least once, rows may remain.
	stateExecuting
	// stateDone: the engine reported completion; further steps are
	// no-ops until a rebind or reset.
	stateDone
	// stateFailed: a step failed; the error is sticky until a rebind or
	// reset.
	stateFailed
)

// Statement is a compiled SQL statement owned by one Connection. The
// lifecycle is bind, step (directly or through Fetch, FetchRecord, or
// Rows), then either rebind for another run or Close.
//
// A Statement is not safe for concurrent use regardless of the
// connection's threading mode.
type Statement struct {
	conn *Connection
	raw  *sqlitec.Stmt

	state     stmtState
	stickyErr error
	closed    bool
	columns   []string

	// comment-only SQL compiles to no statement at all; such a
	// Statement is permanently done and produces nothing.
	empty bool
}

func newStatement(c *Connection, raw *sqlitec.Stmt) *Statement {
	s := &Statement{conn: c, raw: raw}
	if raw == nil {
		s.empty = true
		s.state = stateDone
	}
	return s
}

// Close finalizes the statement and releases its engine resources.
// Close is idempotent; after the first call every other method reports
// ErrStatementClosed.
func (s *Statement) Close() error {
	if s.closed {
		return nil
	}
	s.conn.forget(s)
	return s.finalize()
}

// finalize releases the engine statement without touching the
// connection's tracking set. Called by Close and by Connection.Close.
func (s *Statement) finalize() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.raw == nil {
		return nil
	}
	if err := s.raw.Finalize(); err != nil {
		return engineError(err)
	}
	return nil
}

// rebind resets the statement for a fresh run before binding. Binding
// from any state other than Ready implies a reset, so a finished or
// failed statement can simply be bound again.
func (s *Statement) rebind() error {
	if s.closed {
		return ErrStatementClosed
	}
	if s.empty {
		return nil
	}
	if s.state != stateReady {
		// Resetting after a failed step re-reports that step's result
		// code; the caller already saw it, so it is not a new error.
		if err := s.raw.Reset(); err != nil && s.state != stateFailed {
			return &StepError{Err: engineError(err)}
		}
		s.state = stateReady
		s.stickyErr = nil
	}
	if err := s.raw.ClearBindings(); err != nil {
		return &StepError{Err: engineError(err)}
	}
	return nil
}

// Bind assigns values to the statement's parameters positionally. The
// number of values must equal the number of parameter slots, counting
// every named and numbered placeholder once; otherwise Bind fails with
// an *ArityError and assigns nothing.
//
// Binding a statement that has already run resets it first.
func (s *Statement) Bind(args ...any) error {
	if err := s.rebind(); err != nil {
		return err
	}
	if s.empty {
		if len(args) != 0 {
			return &ArityError{Expected: 0, Got: len(args)}
		}
		return nil
	}

	want := s.raw.ParameterCount()
	if len(args) != want {
		return &ArityError{Expected: want, Got: len(args)}
	}
	for i, arg := range args {
		if err := s.bindValue(i+1, arg); err != nil {
			return err
		}
	}
	return nil
}

// BindNamed assigns values to the statement's parameters by name.
// values is either a map[string]any or a struct whose fields carry
// `db:"name"` tags; parameter names match with or without their prefix
// character, so the key "id" binds ":id", "@id", or "$id".
//
// Every supplied name must match a declared parameter and every
// declared parameter must receive a value. Anonymous "?" slots cannot
// be named and make any named bind fail with a *MissingParameterError.
func (s *Statement) BindNamed(values any) error {
	if err := s.rebind(); err != nil {
		return err
	}

	supplied, err := namedValues(values)
	if err != nil {
		return err
	}

	if s.empty {
		for name := range supplied {
			return &UnknownParameterError{Name: name}
		}
		return nil
	}

	count := s.raw.ParameterCount()
	bound := make(map[string]bool, len(supplied))
	for i := 1; i <= count; i++ {
		name := s.raw.ParameterName(i)
		if name == "" {
			// Anonymous slot. It has no name to match, so a named
			// bind can never fill it.
			return &MissingParameterError{Name: fmt.Sprintf("?%d", i)}
		}
		key := strings.TrimLeft(name, ":@$")
		v, ok := supplied[key]
		if !ok {
			return &MissingParameterError{Name: name}
		}
		if err := s.bindValue(i, v); err != nil {
			return err
		}
		bound[key] = true
	}
	for name := range supplied {
		if !bound[name] {
			return &UnknownParameterError{Name: name}
		}
	}
	return nil
}

// namedValues normalizes the BindNamed argument into a name-to-value
// map. Struct fields use their `db` tag, falling back to the field
// name; untagged unexported fields are skipped.
func namedValues(values any) (map[string]any, error) {
	switch m := values.(type) {
	case map[string]any:
		return m, nil
	case map[string]Value:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	}

	rv := reflect.ValueOf(values)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", values)}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", values)}
	}

	rt := rv.Type()
	out := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("db"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		out[name] = rv.Field(i).Interface()
	}
	return out, nil
}

// bindValue converts one application value and hands it to the engine
// slot at index (1-based).
func (s *Statement) bindValue(index int, arg any) error {
	// A Reservation is not a Value; it goes straight to the engine's
	// zeroblob binding.
	if r, ok := arg.(Reservation); ok {
		if err := s.raw.BindZeroBlob(index, int64(r)); err != nil {
			return engineError(err)
		}
		return nil
	}

	v, err := ToValue(arg)
	if err != nil {
		return err
	}

	switch v.Kind() {
	case TypeInteger:
		n, _ := v.AsInteger()
		err = s.raw.BindInt64(index, n)
	case TypeReal:
		f, _ := v.AsReal()
		err = s.raw.BindFloat64(index, f)
	case TypeText:
		t, _ := v.AsText()
		err = s.raw.BindText(index, t)
	case TypeBlob:
		b, _ := v.AsBlob()
		err = s.raw.BindBlob(index, b)
	default:
		err = s.raw.BindNull(index)
	}
	if err != nil {
		return engineError(err)
	}
	return nil
}

// Step advances the statement by one row. It returns true while a row
// is available for extraction and false once the statement has run to
// completion. Stepping a finished statement is a no-op returning false;
// stepping a failed statement returns the same error again. Rebinding
// or Reset starts a fresh run.
func (s *Statement) Step() (bool, error) {
	if s.closed {
		return false, ErrStatementClosed
	}
	switch s.state {
	case stateDone:
		return false, nil
	case stateFailed:
		return false, s.stickyErr
	}

	row, err := s.raw.Step()
	if err != nil {
		s.state = stateFailed
		s.stickyErr = &StepError{Err: engineError(err)}
		return false, s.stickyErr
	}
	if row {
		s.state = stateExecuting
		return true, nil
	}
	s.state = stateDone
	return false, nil
}

// Reset rewinds the statement to the start of its result set, keeping
// the current bindings. The next Step begins a fresh run.
func (s *Statement) Reset() error {
	if s.closed {
		return ErrStatementClosed
	}
	if s.empty {
		return nil
	}
	if err := s.raw.Reset(); err != nil && s.state != stateFailed {
		return &StepError{Err: engineError(err)}
	}
	s.state = stateReady
	s.stickyErr = nil
	return nil
}

// ParameterCount returns the number of parameter slots the statement
// declares, counting every distinct named or numbered placeholder once.
func (s *Statement) ParameterCount() (int, error) {
	if s.closed {
		return 0, ErrStatementClosed
	}
	if s.empty {
		return 0, nil
	}
	return s.raw.ParameterCount(), nil
}

// ParameterName returns the name of the parameter slot at index
// (1-based), prefix character included, or "" for an anonymous "?"
// slot.
func (s *Statement) ParameterName(index int) (string, error) {
	if s.closed {
		return "", ErrStatementClosed
	}
	if s.empty {
		return "", nil
	}
	return s.raw.ParameterName(index), nil
}

// Columns returns the result column names in order. Valid from prepare
// time onward.
func (s *Statement) Columns() ([]string, error) {
	if s.closed {
		return nil, ErrStatementClosed
	}
	if s.columns == nil {
		if s.empty {
			s.columns = []string{}
		} else {
			n := s.raw.ColumnCount()
			s.columns = make([]string, n)
			for i := 0; i < n; i++ {
				s.columns[i] = s.raw.ColumnName(i)
			}
		}
	}
	return s.columns, nil
}

// value reads the current row's column at index (0-based) as a Value.
// Only meaningful while a Step has returned true.
func (s *Statement) value(index int) Value {
	switch s.raw.ColumnType(index) {
	case sqlitec.ColumnInteger:
		return Integer(s.raw.ColumnInt64(index))
	case sqlitec.ColumnFloat:
		return Real(s.raw.ColumnFloat64(index))
	case sqlitec.ColumnText:
		return Text(s.raw.ColumnText(index))
	case sqlitec.ColumnBlob:
		return Blob(s.raw.ColumnBlob(index))
	default:
		return Null()
	}
}

// scanRow decodes the current row into dests, one pointer per column.
func (s *Statement) scanRow(dests ...any) error {
	n := s.raw.ColumnCount()
	if len(dests) != n {
		return &ArityError{Expected: n, Got: len(dests)}
	}
	for i, dest := range dests {
		if err := assign(dest, s.value(i), s.raw.ColumnName(i)); err != nil {
			return err
		}
	}
	return nil
}

// scanRecord decodes the current row into the struct pointed to by
// target using its derived column mapping.
func (s *Statement) scanRecord(target any) error {
	m, err := MappingOf(target)
	if err != nil {
		return err
	}
	return s.scanRecordWith(target, m)
}

// scanRecordWith decodes the current row into target using an explicit
// mapping.
func (s *Statement) scanRecordWith(target any, m *Mapping) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return &UnsupportedTypeError{Type: fmt.Sprintf("%T", target)}
	}
	m, err := m.resolve(rv.Elem().Type())
	if err != nil {
		return err
	}
	cols, err := s.Columns()
	if err != nil {
		return err
	}
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}

	elem := rv.Elem()
	for _, f := range m.fields {
		i, ok := index[f.Column]
		if !ok {
			if f.Optional {
				// A reused target must not keep a stale value.
				fv := elem.FieldByIndex(f.index)
				fv.Set(reflect.Zero(fv.Type()))
				continue
			}
			return &MissingColumnError{Field: f.Column}
		}
		v := s.value(i)
		if err := checkKind(f, v); err != nil {
			return err
		}
		dest := elem.FieldByIndex(f.index).Addr().Interface()
		if err := assign(dest, v, f.Column); err != nil {
			return err
		}
	}
	return nil
}

// checkKind enforces a field's declared storage class before the
// conversion runs. Coercions the codec itself permits, INTEGER into a
// REAL field and TEXT into a BLOB field, stay permitted.
func checkKind(f Field, v Value) error {
	if f.Kind == (Type{}) || v.IsNull() || v.Kind() == f.Kind {
		return nil
	}
	if f.Kind == TypeReal && v.Kind() == TypeInteger {
		return nil
	}
	if f.Kind == TypeBlob && v.Kind() == TypeText {
		return nil
	}
	return &TypeMismatchError{Column: f.Column, Expected: f.Kind, Actual: v.Kind()}
}

// Fetch runs the statement expecting exactly one row and decodes it
// into dests, one pointer per result column. No row yields ErrNoRows; a
// second row yields ErrExtraRows. Either way the statement finishes the
// run, so a rebind starts fresh.
func (s *Statement) Fetch(dests ...any) error {
	return s.fetchOne(func() error { return s.scanRow(dests...) })
}

// FetchRecord runs the statement expecting exactly one row and decodes
// it into the struct pointed to by target, matching result columns to
// fields by their `db` tags.
func (s *Statement) FetchRecord(target any) error {
	return s.fetchOne(func() error { return s.scanRecord(target) })
}

// FetchRecordWith is FetchRecord with an explicit Mapping instead of
// one derived from `db` tags.
func (s *Statement) FetchRecordWith(target any, m *Mapping) error {
	return s.fetchOne(func() error { return s.scanRecordWith(target, m) })
}

func (s *Statement) fetchOne(scan func() error) error {
	row, err := s.Step()
	if err != nil {
		return err
	}
	if !row {
		return ErrNoRows
	}
	if err := scan(); err != nil {
		return err
	}
	// Exactly-one means exactly one: a further row is the caller
	// holding a wrong assumption, not data to ignore.
	row, err = s.Step()
	if err != nil {
		return err
	}
	if row {
		return ErrExtraRows
	}
	return nil
}

// Rows returns an iterator over the statement's remaining rows. The
// iterator borrows the statement; using the statement directly again
// before the iterator is exhausted confuses both.
func (s *Statement) Rows() *Rows {
	return &Rows{stmt: s}
}
