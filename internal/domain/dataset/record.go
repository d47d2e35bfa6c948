package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one column/value pair used to build a Record.
type Field struct {
	Key   string
	Value Value
}

// Record is one row of an uploaded file. Column order is preserved from the
// source so summaries list columns the way the user sees them.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord builds a record from fields in order; a repeated key overwrites
// the earlier value but keeps its position.
func NewRecord(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

// Keys returns the column names in source order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r Record) Len() int { return len(r.keys) }

func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object")
	}
	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Dataset is the parsed content of an uploaded file.
type Dataset []Record

// Columns returns the key set of the first record, or nil when empty.
func (d Dataset) Columns() []string {
	if len(d) == 0 {
		return nil
	}
	return d[0].Keys()
}

// Head returns at most n leading records.
func (d Dataset) Head(n int) Dataset {
	if n < 0 {
		n = 0
	}
	if len(d) < n {
		return d
	}
	return d[:n]
}
