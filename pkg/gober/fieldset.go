package gober

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FieldSet offers typed helpers on top of the rendered record fields.
type FieldSet struct {
	names []string
	data  map[string]string
}

// FieldSet returns a FieldSet wrapper for the result's record.
func (r Result) FieldSet() FieldSet {
	fs := FieldSet{data: make(map[string]string, len(r.Record.Fields))}
	for _, f := range r.Record.Fields {
		if _, dup := fs.data[f.Name]; dup {
			continue
		}
		fs.names = append(fs.names, f.Name)
		fs.data[f.Name] = f.Value
	}
	return fs
}

// Names returns the field names in record order.
func (fs FieldSet) Names() []string {
	return fs.names
}

// Map exposes the rendered JSON tokens keyed by field name.
func (fs FieldSet) Map() map[string]string {
	return fs.data
}

// Raw returns the rendered JSON token without conversions.
func (fs FieldSet) Raw(key string) (string, bool) {
	if fs.data == nil {
		return "", false
	}
	v, ok := fs.data[key]
	return v, ok
}

// Float returns the field parsed as float64.
func (fs FieldSet) Float(key string) (float64, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q is not numeric: %w", key, err)
	}
	return f, nil
}

// Int returns the field parsed as int64.
func (fs FieldSet) Int(key string) (int64, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q is not integer: %w", key, err)
	}
	return i, nil
}

// String returns the field as a string. JSON strings are unquoted; numbers
// are returned in their rendered form.
func (fs FieldSet) String(key string) (string, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return "", fmt.Errorf("field %q missing", key)
	}
	if len(v) > 0 && v[0] == '"' {
		var s string
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			return "", fmt.Errorf("field %q is not a valid string: %w", key, err)
		}
		return s, nil
	}
	return v, nil
}
