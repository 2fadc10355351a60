package project

import (
	"fmt"
	"strconv"
)

// ValueKind is the type of a metadata value. The numeric values are the
// METADATA_TYPE_* constants understood by the loader.
type ValueKind int

const (
	ValueInt    ValueKind = 1
	ValueBool   ValueKind = 2
	ValueString ValueKind = 3
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "int"
	case ValueBool:
		return "bool"
	case ValueString:
		return "string"
	default:
		return fmt.Sprintf("value(%d)", int(k))
	}
}

// Value is a typed metadata value. Only the field selected by Kind is set.
type Value struct {
	Kind ValueKind
	Int  int32
	Bool bool
	Str  []byte
}

// IntValue returns an Int value.
func IntValue(i int32) Value { return Value{Kind: ValueInt, Int: i} }

// BoolValue returns a Bool value.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// StringValue returns a String value holding raw bytes.
func StringValue(s []byte) Value { return Value{Kind: ValueString, Str: s} }

func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueString:
		return strconv.Quote(string(v.Str))
	default:
		return "<invalid>"
	}
}

// MetadataEntry is one key/value pair attached to an Owner. Offset is the
// byte offset of Name inside the metadata name table.
type MetadataEntry struct {
	Owner  Owner
	Name   string
	Offset int
	Value  Value
}
