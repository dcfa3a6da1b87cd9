package squire

import (
	"fmt"

	"github.com/orsinium-labs/enum"
)

// Type identifies the storage class of a Value.
type Type enum.Member[string]

var (
	TypeNull    = Type{Value: "NULL"}
	TypeInteger = Type{Value: "INTEGER"}
	TypeReal    = Type{Value: "REAL"}
	TypeText    = Type{Value: "TEXT"}
	TypeBlob    = Type{Value: "BLOB"}

	// Types enumerates every storage class the engine can produce.
	Types = enum.New(TypeNull, TypeInteger, TypeReal, TypeText, TypeBlob)
)

// Value is the tagged union over the engine's dynamic value system:
// NULL, 64-bit signed integer, 64-bit float, UTF-8 text, or a byte
// sequence. Every conversion between application types and the engine,
// in both directions, funnels through Value.
type Value struct {
	kind Type
	i    int64
	f    float64
	s    string
	b    []byte
}

// Null returns the NULL Value. The zero Value is not valid; use Null.
func Null() Value { return Value{kind: TypeNull} }

// Integer returns an INTEGER Value.
func Integer(v int64) Value { return Value{kind: TypeInteger, i: v} }

// Real returns a REAL Value.
func Real(v float64) Value { return Value{kind: TypeReal, f: v} }

// Text returns a TEXT Value. The string is owned by the Value.
func Text(v string) Value { return Value{kind: TypeText, s: v} }

// Blob returns a BLOB Value. The byte slice is owned by the Value and
// must not be mutated afterwards.
func Blob(v []byte) Value { return Value{kind: TypeBlob, b: v} }

// Kind returns the storage class of the Value.
func (v Value) Kind() Type { return v.kind }

// IsNull reports whether the Value is NULL.
func (v Value) IsNull() bool { return v.kind == TypeNull }

// AsInteger returns the integer payload; ok is false unless the Value
// is an INTEGER.
func (v Value) AsInteger() (i int64, ok bool) { return v.i, v.kind == TypeInteger }

// AsReal returns the float payload; ok is false unless the Value is a
// REAL.
func (v Value) AsReal() (f float64, ok bool) { return v.f, v.kind == TypeReal }

// AsText returns the text payload; ok is false unless the Value is
// TEXT.
func (v Value) AsText() (s string, ok bool) { return v.s, v.kind == TypeText }

// AsBlob returns the blob payload; ok is false unless the Value is a
// BLOB.
func (v Value) AsBlob() (b []byte, ok bool) { return v.b, v.kind == TypeBlob }

// String formats the Value for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case TypeInteger:
		return fmt.Sprintf("INTEGER(%d)", v.i)
	case TypeReal:
		return fmt.Sprintf("REAL(%g)", v.f)
	case TypeText:
		return fmt.Sprintf("TEXT(%q)", v.s)
	case TypeBlob:
		return fmt.Sprintf("BLOB(%d bytes)", len(v.b))
	default:
		return "NULL"
	}
}
