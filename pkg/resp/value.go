package resp

import "strconv"

// Kind identifies a RESP2 value type by its sigil byte.
type Kind byte

// RESP2 kinds.
const (
	KindSimpleString Kind = '+'
	KindError        Kind = '-'
	KindInteger      Kind = ':'
	KindBulkString   Kind = '$'
	KindArray        Kind = '*'
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple-string"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulkString:
		return "bulk-string"
	case KindArray:
		return "array"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a decoded RESP2 value.
//
// Values are treated as immutable once built; an Array value owns its
// elements. Null is only meaningful for bulk strings and arrays.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Array []Value
	Null  bool
}

// SimpleString returns a status reply value.
func SimpleString(s string) Value {
	return Value{Kind: KindSimpleString, Str: s}
}

// Error returns an error reply value.
func Error(s string) Value {
	return Value{Kind: KindError, Str: s}
}

// Integer returns an integer value.
func Integer(n int64) Value {
	return Value{Kind: KindInteger, Int: n}
}

// BulkString returns a length-prefixed string value.
func BulkString(s string) Value {
	return Value{Kind: KindBulkString, Str: s}
}

// NullBulkString returns the null bulk string ($-1).
func NullBulkString() Value {
	return Value{Kind: KindBulkString, Null: true}
}

// ArrayOf returns an array holding elems in order.
func ArrayOf(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: KindArray, Array: elems}
}

// NullArray returns the null array (*-1).
func NullArray() Value {
	return Value{Kind: KindArray, Null: true}
}

// IsNull reports whether v is a null bulk string or a null array.
func (v Value) IsNull() bool {
	return v.Null && (v.Kind == KindBulkString || v.Kind == KindArray)
}

// Text returns the payload of a non-null simple or bulk string.
func (v Value) Text() (string, bool) {
	switch v.Kind {
	case KindSimpleString:
		return v.Str, true
	case KindBulkString:
		if v.Null {
			return "", false
		}
		return v.Str, true
	default:
		return "", false
	}
}

// Equal reports whether v and o describe the same RESP value.
// Fields that do not apply to a kind are ignored.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindSimpleString, KindError:
		return v.Str == o.Str
	case KindInteger:
		return v.Int == o.Int
	case KindBulkString:
		if v.Null || o.Null {
			return v.Null == o.Null
		}
		return v.Str == o.Str
	case KindArray:
		if v.Null || o.Null {
			return v.Null == o.Null
		}
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders v for logs and test failures. It is not the wire format.
func (v Value) String() string {
	switch v.Kind {
	case KindSimpleString:
		return "+" + strconv.Quote(v.Str)
	case KindError:
		return "-" + strconv.Quote(v.Str)
	case KindInteger:
		return ":" + strconv.FormatInt(v.Int, 10)
	case KindBulkString:
		if v.Null {
			return "$nil"
		}
		return "$" + strconv.Quote(v.Str)
	case KindArray:
		if v.Null {
			return "*nil"
		}
		s := "["
		for i, e := range v.Array {
			if i > 0 {
				s += " "
			}
			s += e.String()
		}
		return s + "]"
	default:
		return "<invalid>"
	}
}
