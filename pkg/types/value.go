package types

import "strconv"

// ValueType is the static or runtime type of a formula value.
type ValueType uint8

// Value types.
const (
	TypeAny ValueType = iota // unknown statically, any at runtime
	TypeNumber
	TypeBoolean
	TypeString
)

// String returns a human-readable name for the type.
func (t ValueType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	default:
		return "any"
	}
}

// Value is a runtime formula value. Strings only exist as accessor keys.
type Value struct {
	Type ValueType
	Num  float64
	Bool bool
	Str  string
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{Type: TypeNumber, Num: f}
}

// Boolean returns a boolean value.
func Boolean(b bool) Value {
	return Value{Type: TypeBoolean, Bool: b}
}

// String returns a string value.
func String(s string) Value {
	return Value{Type: TypeString, Str: s}
}

// Truthy coerces the value to a boolean: nonzero numbers are true.
func (v Value) Truthy() bool {
	switch v.Type {
	case TypeBoolean:
		return v.Bool
	case TypeNumber:
		return v.Num != 0
	case TypeString:
		return v.Str != ""
	default:
		return false
	}
}

// Interface returns the value as float64, bool or string.
func (v Value) Interface() interface{} {
	switch v.Type {
	case TypeNumber:
		return v.Num
	case TypeBoolean:
		return v.Bool
	case TypeString:
		return v.Str
	default:
		return nil
	}
}

// String formats the value for messages.
func (v Value) String() string {
	switch v.Type {
	case TypeNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeString:
		return strconv.Quote(v.Str)
	default:
		return "<nil>"
	}
}
