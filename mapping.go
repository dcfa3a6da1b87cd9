package squire

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Field describes one mapped struct field: which result column feeds
// it, what storage class it expects, and whether the column may be
// absent.
type Field struct {
	// Column is the result column name the field reads from.
	Column string
	// Kind is the storage class the field expects. The zero Type means
	// no expectation; the column's class is checked only by the
	// conversion itself.
	Kind Type
	// Optional marks a field that keeps its zero value when the result
	// set has no such column, instead of failing the extraction.
	Optional bool

	index []int
}

// Mapping is the column-to-field plan for one record type. Derive one
// with MappingOf from `db` struct tags, or build one by hand with
// NewMapping when tags cannot express the shape.
type Mapping struct {
	fields []Field
}

// NewMapping builds an explicit Mapping. Each Field's column feeds the
// struct field at the same position, in declaration order of the
// target's exported fields. Pass it to FetchRecordWith or
// Rows.RecordWith.
func NewMapping(fields ...Field) *Mapping {
	return &Mapping{fields: fields}
}

// Fields returns the mapped fields in declaration order.
func (m *Mapping) Fields() []Field { return m.fields }

// resolve fills in the struct index paths for an explicit mapping
// against a concrete target type. Derived mappings carry their paths
// already.
func (m *Mapping) resolve(rt reflect.Type) (*Mapping, error) {
	if len(m.fields) > 0 && m.fields[0].index != nil {
		return m, nil
	}
	exported := make([][]int, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			exported = append(exported, rt.Field(i).Index)
		}
	}
	if len(m.fields) > len(exported) {
		return nil, &UnsupportedTypeError{
			Type: fmt.Sprintf("%s has %d exported fields, mapping names %d", rt, len(exported), len(m.fields)),
		}
	}
	out := &Mapping{fields: make([]Field, len(m.fields))}
	copy(out.fields, m.fields)
	for i := range out.fields {
		out.fields[i].index = exported[i]
	}
	return out, nil
}

var mappingCache sync.Map // reflect.Type -> *Mapping

// MappingOf derives (and caches) the Mapping for the struct pointed to
// by target. Exported fields with a `db:"name"` tag are mapped to the
// named column; `db:"name,optional"` marks the field optional; a tag of
// "-" and untagged fields are skipped. The expected storage class is
// inferred from the field's Go type.
func MappingOf(target any) (*Mapping, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", target)}
	}
	rt := rv.Elem().Type()
	if rt.Kind() != reflect.Struct {
		return nil, &UnsupportedTypeError{Type: fmt.Sprintf("%T", target)}
	}

	if cached, ok := mappingCache.Load(rt); ok {
		return cached.(*Mapping), nil
	}

	m := &Mapping{}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, ok := f.Tag.Lookup("db")
		if !ok {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "-" || name == "" {
			continue
		}
		m.fields = append(m.fields, Field{
			Column:   name,
			Kind:     kindOf(f.Type),
			Optional: opts == "optional",
			index:    f.Index,
		})
	}

	cached, _ := mappingCache.LoadOrStore(rt, m)
	return cached.(*Mapping), nil
}

// kindOf infers the storage class a Go type decodes from. Unknown types
// get the zero Type, leaving the check to the conversion.
func kindOf(t reflect.Type) Type {
	switch t {
	case reflect.TypeOf(time.Time{}), reflect.TypeOf(time.Duration(0)), reflect.TypeOf(RowID(0)):
		return TypeInteger
	case reflect.TypeOf(uuid.UUID{}):
		return TypeBlob
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	case reflect.Float32, reflect.Float64:
		return TypeReal
	case reflect.String:
		return TypeText
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return TypeBlob
		}
	case reflect.Pointer:
		return kindOf(t.Elem())
	}
	return Type{}
}
