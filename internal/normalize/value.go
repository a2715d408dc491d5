package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindDecimal
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is the storage form of a single cell: an integer, an exact decimal,
// a string or a list of those scalars. The zero Value is the empty string.
type Value struct {
	kind Kind
	i    int64
	d    decimal.Decimal
	s    string
	list []Value
}

func IntValue(n int64) Value { return Value{kind: KindInt, i: n} }

func DecimalValue(d decimal.Decimal) Value { return Value{kind: KindDecimal, d: d} }

func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// ListValue builds a list value. Elements must be scalars.
func ListValue(elems ...Value) Value {
	l := make([]Value, len(elems))
	copy(l, elems)
	return Value{kind: KindList, list: l}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

func (v Value) Decimal() (decimal.Decimal, bool) { return v.d, v.kind == KindDecimal }

func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// List returns a copy of the list elements, or nil for scalars.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out
}

// String renders the value as text. Decimals keep the digits they were
// parsed from (minus trailing zeros), so "3.14" renders as "3.14".
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return v.d.String()
	case KindList:
		b, _ := v.MarshalJSON()
		return string(b)
	default:
		return v.s
	}
}

// Equal reports whether two values hold the same variant and content.
// Decimals compare numerically.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindDecimal:
		return v.d.Equal(o.d)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return v.s == o.s
	}
}

// MarshalJSON writes integers and decimals as JSON numbers carrying their
// exact digits, strings as JSON strings and lists as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindDecimal:
		return []byte(v.d.String()), nil
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v.s)
	}
}

// UnmarshalJSON is the inverse of MarshalJSON. Numbers without a fraction or
// exponent that fit in int64 decode as integers, every other number as a decimal.
func (v *Value) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return errors.New("normalize: invalid JSON value")
	}
	out, err := fromJSON(gjson.ParseBytes(b), true)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func fromJSON(r gjson.Result, allowList bool) (Value, error) {
	switch {
	case r.Type == gjson.Number:
		return numberValue(r.Raw)
	case r.Type == gjson.String:
		return StringValue(r.Str), nil
	case r.Type == gjson.True || r.Type == gjson.False:
		return StringValue(r.Raw), nil
	case r.IsArray() && allowList:
		elems := r.Array()
		out := make([]Value, 0, len(elems))
		for _, e := range elems {
			ev, err := fromJSON(e, false)
			if err != nil {
				return Value{}, err
			}
			out = append(out, ev)
		}
		return Value{kind: KindList, list: out}, nil
	default:
		return Value{}, fmt.Errorf("%w: %s is not a scalar", ErrCoercion, r.Raw)
	}
}

// ParseNumber coerces numeric text to an integer or, failing that, an exact
// decimal.
func ParseNumber(text string) (Value, error) {
	return numberValue(text)
}

func numberValue(text string) (Value, error) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return IntValue(n), nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q", ErrCoercion, text)
	}
	return DecimalValue(d), nil
}
