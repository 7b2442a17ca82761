// Package document defines the in-memory workbook object model: workbooks,
// worksheets, cells, typed cell values and style records. It carries no
// serialization logic - the xlsx package owns the wire format.
package document

import (
	"fmt"
	"time"
)

// Specification of a typed cell value variant.
// ENUM(nil, bool, number, text, error, dateTime)
type ValueKind int

// Error code literals defined by ECMA-376 for cells of type "e". The set is
// closed - anything else is ordinary text.
const (
	ErrNull  = "#NULL!"
	ErrDiv0  = "#DIV/0!"
	ErrValue = "#VALUE!"
	ErrRef   = "#REF!"
	ErrName  = "#NAME?"
	ErrNum   = "#NUM!"
	ErrNA    = "#N/A"
)

var errorCodes = map[string]struct{}{
	ErrNull: {}, ErrDiv0: {}, ErrValue: {}, ErrRef: {}, ErrName: {}, ErrNum: {}, ErrNA: {},
}

// IsErrorCode reports whether s is exactly one of the seven reserved
// ECMA-376 error literals. Comparison is case-sensitive.
func IsErrorCode(s string) bool {
	_, ok := errorCodes[s]
	return ok
}

// Value is a tagged union holding the content of a single cell. The zero
// Value is the absent value (ValueKindNil).
type Value struct {
	kind  ValueKind
	b     bool
	num   float64
	isInt bool
	text  string
	t     time.Time
}

func BoolValue(b bool) Value { return Value{kind: ValueKindBool, b: b} }

func NumberValue(f float64) Value { return Value{kind: ValueKindNumber, num: f} }

func IntValue(i int64) Value {
	return Value{kind: ValueKindNumber, num: float64(i), isInt: true}
}

func TextValue(s string) Value { return Value{kind: ValueKindText, text: s} }

// ErrorValue returns an error-typed value. The code must be one of the
// reserved literals; unknown codes are a caller contract violation.
func ErrorValue(code string) (Value, error) {
	if !IsErrorCode(code) {
		return Value{}, fmt.Errorf("not a valid cell error code: %q", code)
	}
	return Value{kind: ValueKindError, text: code}, nil
}

func TimeValue(t time.Time) Value { return Value{kind: ValueKindDateTime, t: t} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNil() bool     { return v.kind == ValueKindNil }
func (v Value) Bool() bool      { return v.b }
func (v Value) Float() float64  { return v.num }
func (v Value) IsInt() bool     { return v.isInt }
func (v Value) Int() int64      { return int64(v.num) }
func (v Value) Text() string    { return v.text }
func (v Value) Time() time.Time { return v.t }

// Equal compares two values structurally. Number comparison is exact,
// date/time comparison uses time.Time equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueKindNil:
		return true
	case ValueKindBool:
		return v.b == o.b
	case ValueKindNumber:
		return v.num == o.num && v.isInt == o.isInt
	case ValueKindText, ValueKindError:
		return v.text == o.text
	case ValueKindDateTime:
		return v.t.Equal(o.t)
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case ValueKindNil:
		return ""
	case ValueKindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case ValueKindNumber:
		if v.isInt {
			return fmt.Sprintf("%d", int64(v.num))
		}
		return fmt.Sprintf("%v", v.num)
	case ValueKindText, ValueKindError:
		return v.text
	case ValueKindDateTime:
		return v.t.Format(time.RFC3339)
	}
	return ""
}
