package squire

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// JSON wraps a value that is stored in the database serialized as JSON
// text. When binding, V is marshalled; when scanning, V must be a
// pointer and is unmarshalled into.
type JSON struct{ V any }

// Reservation binds as a zero-filled blob of the given byte length.
// The engine reserves the space without materializing the bytes, which
// is the cheap way to size a blob that will be filled in later.
type Reservation int64

// ToValue converts an application value into the engine's wire format.
// It is total over the supported types; anything else yields an
// *UnsupportedTypeError.
//
// Supported: nil, bool, every signed and unsigned integer width,
// float32/float64, string, []byte, time.Time (UnixNano integer),
// time.Duration (nanoseconds integer), uuid.UUID (16-byte blob),
// url.URL and *url.URL (text), JSON (marshalled text), RowID, and
// Value itself. Typed nil pointers bind NULL.
func ToValue(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		if x {
			return Integer(1), nil
		}
		return Integer(0), nil
	case int:
		return Integer(int64(x)), nil
	case int8:
		return Integer(int64(x)), nil
	case int16:
		return Integer(int64(x)), nil
	case int32:
		return Integer(int64(x)), nil
	case int64:
		return Integer(x), nil
	case uint:
		return unsignedValue(uint64(x))
	case uint8:
		return Integer(int64(x)), nil
	case uint16:
		return Integer(int64(x)), nil
	case uint32:
		return Integer(int64(x)), nil
	case uint64:
		return unsignedValue(x)
	case float32:
		return Real(float64(x)), nil
	case float64:
		return Real(x), nil
	case string:
		return Text(x), nil
	case []byte:
		return Blob(x), nil
	case time.Time:
		return Integer(x.UnixNano()), nil
	case time.Duration:
		return Integer(int64(x)), nil
	case uuid.UUID:
		return Blob(x[:]), nil
	case url.URL:
		return Text(x.String()), nil
	case *url.URL:
		if x == nil {
			return Null(), nil
		}
		return Text(x.String()), nil
	case JSON:
		b, err := json.Marshal(x.V)
		if err != nil {
			return Value{}, fmt.Errorf("squire: failed to marshal JSON value: %w", err)
		}
		return Text(string(b)), nil
	case RowID:
		return Integer(x.Int64()), nil
	case *int64:
		if x == nil {
			return Null(), nil
		}
		return Integer(*x), nil
	case *float64:
		if x == nil {
			return Null(), nil
		}
		return Real(*x), nil
	case *string:
		if x == nil {
			return Null(), nil
		}
		return Text(*x), nil
	case *[]byte:
		if x == nil {
			return Null(), nil
		}
		return Blob(*x), nil
	default:
		return Value{}, &UnsupportedTypeError{Type: fmt.Sprintf("%T", v)}
	}
}

// unsignedValue rejects unsigned values beyond the engine's signed
// 64-bit integer range instead of silently wrapping.
func unsignedValue(x uint64) (Value, error) {
	if x > math.MaxInt64 {
		return Value{}, &UnsupportedTypeError{Type: fmt.Sprintf("uint64 value %d beyond INTEGER range", x)}
	}
	return Integer(int64(x)), nil
}

// assign decodes a Value into the pointed-to target. column names the
// source column for diagnostics.
//
// Widening conversions are permitted; narrowing that would lose
// precision yields an *OverflowError, a storage class that cannot be
// losslessly coerced yields a *TypeMismatchError, and NULL into a
// non-optional target yields a *NullColumnError. Pointer-to-pointer
// targets are the optional form: NULL sets them to nil.
func assign(dest any, v Value, column string) error {
	switch d := dest.(type) {
	case *Value:
		*d = v
		return nil
	case *any:
		return assignAny(d, v)
	case *int64:
		return assignInt(v, column, math.MinInt64, math.MaxInt64, func(n int64) { *d = n })
	case *int:
		return assignInt(v, column, math.MinInt, math.MaxInt, func(n int64) { *d = int(n) })
	case *int32:
		return assignInt(v, column, math.MinInt32, math.MaxInt32, func(n int64) { *d = int32(n) })
	case *int16:
		return assignInt(v, column, math.MinInt16, math.MaxInt16, func(n int64) { *d = int16(n) })
	case *int8:
		return assignInt(v, column, math.MinInt8, math.MaxInt8, func(n int64) { *d = int8(n) })
	case *uint64:
		return assignInt(v, column, 0, math.MaxInt64, func(n int64) { *d = uint64(n) })
	case *uint32:
		return assignInt(v, column, 0, math.MaxUint32, func(n int64) { *d = uint32(n) })
	case *uint16:
		return assignInt(v, column, 0, math.MaxUint16, func(n int64) { *d = uint16(n) })
	case *uint8:
		return assignInt(v, column, 0, math.MaxUint8, func(n int64) { *d = uint8(n) })
	case *uint:
		return assignInt(v, column, 0, math.MaxInt64, func(n int64) { *d = uint(n) })
	case *bool:
		// Any nonzero integer is true, matching the engine's own
		// boolean convention.
		return assignInt(v, column, math.MinInt64, math.MaxInt64, func(n int64) { *d = n != 0 })
	case *float64:
		f, err := realValue(v, column)
		if err != nil {
			return err
		}
		*d = f
		return nil
	case *float32:
		f, err := realValue(v, column)
		if err != nil {
			return err
		}
		r := float32(f)
		if !math.IsInf(f, 0) && math.IsInf(float64(r), 0) {
			return &OverflowError{Column: column}
		}
		*d = r
		return nil
	case *string:
		if v.IsNull() {
			return &NullColumnError{Column: column}
		}
		s, ok := v.AsText()
		if !ok {
			return &TypeMismatchError{Column: column, Expected: TypeText, Actual: v.Kind()}
		}
		*d = s
		return nil
	case *[]byte:
		if v.IsNull() {
			return &NullColumnError{Column: column}
		}
		if b, ok := v.AsBlob(); ok {
			*d = b
			return nil
		}
		if s, ok := v.AsText(); ok {
			*d = []byte(s)
			return nil
		}
		return &TypeMismatchError{Column: column, Expected: TypeBlob, Actual: v.Kind()}
	case *RowID:
		n, err := integerValue(v, column)
		if err != nil {
			return err
		}
		id, ok := NewRowID(n)
		if !ok {
			return &OverflowError{Column: column}
		}
		*d = id
		return nil
	case *time.Time:
		n, err := integerValue(v, column)
		if err != nil {
			return err
		}
		*d = time.Unix(0, n)
		return nil
	case *time.Duration:
		n, err := integerValue(v, column)
		if err != nil {
			return err
		}
		*d = time.Duration(n)
		return nil
	case *uuid.UUID:
		return assignUUID(d, v, column)
	case *url.URL:
		if v.IsNull() {
			return &NullColumnError{Column: column}
		}
		s, ok := v.AsText()
		if !ok {
			return &TypeMismatchError{Column: column, Expected: TypeText, Actual: v.Kind()}
		}
		u, err := url.Parse(s)
		if err != nil {
			return fmt.Errorf("squire: column %q is not a valid URL: %w", column, err)
		}
		*d = *u
		return nil
	case *JSON:
		if v.IsNull() {
			return &NullColumnError{Column: column}
		}
		var raw []byte
		if s, ok := v.AsText(); ok {
			raw = []byte(s)
		} else if b, ok := v.AsBlob(); ok {
			raw = b
		} else {
			return &TypeMismatchError{Column: column, Expected: TypeText, Actual: v.Kind()}
		}
		if err := json.Unmarshal(raw, d.V); err != nil {
			return fmt.Errorf("squire: failed to unmarshal JSON column %q: %w", column, err)
		}
		return nil
	}

	return assignOptional(dest, v, column)
}

// assignAny decodes a Value into the natural Go type for its storage
// class: int64, float64, string, []byte, or nil.
func assignAny(d *any, v Value) error {
	switch v.Kind() {
	case TypeInteger:
		n, _ := v.AsInteger()
		*d = n
	case TypeReal:
		f, _ := v.AsReal()
		*d = f
	case TypeText:
		s, _ := v.AsText()
		*d = s
	case TypeBlob:
		b, _ := v.AsBlob()
		*d = b
	default:
		*d = nil
	}
	return nil
}

func assignUUID(d *uuid.UUID, v Value, column string) error {
	if v.IsNull() {
		return &NullColumnError{Column: column}
	}
	if b, ok := v.AsBlob(); ok {
		u, err := uuid.FromBytes(b)
		if err != nil {
			return fmt.Errorf("squire: column %q is not a valid UUID: %w", column, err)
		}
		*d = u
		return nil
	}
	if s, ok := v.AsText(); ok {
		u, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("squire: column %q is not a valid UUID: %w", column, err)
		}
		*d = u
		return nil
	}
	return &TypeMismatchError{Column: column, Expected: TypeBlob, Actual: v.Kind()}
}

// integerValue extracts the INTEGER payload, rejecting NULL and other
// storage classes.
func integerValue(v Value, column string) (int64, error) {
	if v.IsNull() {
		return 0, &NullColumnError{Column: column}
	}
	n, ok := v.AsInteger()
	if !ok {
		return 0, &TypeMismatchError{Column: column, Expected: TypeInteger, Actual: v.Kind()}
	}
	return n, nil
}

// realValue extracts a REAL payload, widening INTEGER values.
func realValue(v Value, column string) (float64, error) {
	if v.IsNull() {
		return 0, &NullColumnError{Column: column}
	}
	if f, ok := v.AsReal(); ok {
		return f, nil
	}
	if n, ok := v.AsInteger(); ok {
		return float64(n), nil
	}
	return 0, &TypeMismatchError{Column: column, Expected: TypeReal, Actual: v.Kind()}
}

func assignInt(v Value, column string, min, max int64, set func(int64)) error {
	n, err := integerValue(v, column)
	if err != nil {
		return err
	}
	if n < min || n > max {
		return &OverflowError{Column: column}
	}
	set(n)
	return nil
}

// assignOptional handles pointer-to-pointer targets: NULL sets the
// pointer to nil, anything else allocates and decodes into the new
// element.
func assignOptional(dest any, v Value, column string) error {
	switch d := dest.(type) {
	case **int64:
		return assignPtr(d, v, column)
	case **int:
		return assignPtr(d, v, column)
	case **int32:
		return assignPtr(d, v, column)
	case **bool:
		return assignPtr(d, v, column)
	case **float64:
		return assignPtr(d, v, column)
	case **string:
		return assignPtr(d, v, column)
	case **[]byte:
		return assignPtr(d, v, column)
	case **time.Time:
		return assignPtr(d, v, column)
	case **uuid.UUID:
		return assignPtr(d, v, column)
	case **RowID:
		return assignPtr(d, v, column)
	default:
		return &UnsupportedTypeError{Type: fmt.Sprintf("%T", dest)}
	}
}

func assignPtr[T any](d **T, v Value, column string) error {
	if v.IsNull() {
		*d = nil
		return nil
	}
	elem := new(T)
	if err := assign(elem, v, column); err != nil {
		return err
	}
	*d = elem
	return nil
}
