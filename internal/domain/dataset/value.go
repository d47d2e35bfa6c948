package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tags the scalar held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a single cell of an uploaded record: string, number, bool or null.
// Numbers keep their JSON literal so they round-trip without float noise.
type Value struct {
	kind Kind
	str  string
	b    bool
}

func Null() Value            { return Value{} }
func String(s string) Value  { return Value{kind: KindString, str: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Int(n int64) Value      { return Value{kind: KindNumber, str: strconv.FormatInt(n, 10)} }
func Float(f float64) Value  { return Value{kind: KindNumber, str: strconv.FormatFloat(f, 'f', -1, 64)} }
func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether the cell carries no usable content (null or "").
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// Number returns the numeric value; ok is false for non-number kinds.
func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.str, 64)
	return f, err == nil
}

// Text renders the value the way it would be shown in a spreadsheet cell.
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

func (v Value) String() string { return v.Text() }

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.str), nil
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}
	switch data[0] {
	case 'n':
		if string(data) != "null" {
			return fmt.Errorf("invalid value %q", data)
		}
		*v = Null()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '{', '[':
		return fmt.Errorf("nested values are not supported")
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid number %q: %w", data, err)
		}
		*v = Value{kind: KindNumber, str: n.String()}
	}
	return nil
}
