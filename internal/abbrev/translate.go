// Package abbrev expands the abbreviated records produced by early sensor
// firmware, which shortened every key to one letter to fit a radio frame:
//
//	{"a":512.07,"b":2950,"g":118}
//
// Keys are rewritten to their long names and the fields that firmware never
// sent are filled with fixed placeholders so the output has the same key set
// as current records.
package abbrev

import (
	"errors"
	"fmt"
	"strings"

	"github.com/field4d/gober/internal/addr"
	"github.com/field4d/gober/internal/record"
)

// Kind is the record kind produced by Translate.
const Kind = "abbreviated"

// ErrMalformed reports input that is not a flat abbreviated object.
var ErrMalformed = errors.New("malformed abbreviated record")

var longNames = map[string]string{
	"a": "light",
	"b": "battery",
	"c": "bmp_press",
	"d": "bmp_temp",
	"e": "hdc_temp",
	"f": "hdc_humidity",
	"g": "packet_number",
}

// Placeholders appended after the translated fields.
var placeholders = []record.Field{
	{Name: "battery_t", Value: "99"},
	{Name: "tmp107_amb", Value: "99.999"},
	{Name: "tmp107_obj", Value: "99.999"},
	{Name: "rssi", Value: "-99"},
}

// Translation is the result of Translate. Skipped lists the keys that had no
// long name; they are dropped together with their values.
type Translation struct {
	Record  record.Record
	Skipped []string
}

// Translate rewrites input into a record. Only the first object in input is
// read; anything after its closing brace is ignored. Unknown keys are dropped
// together with their values, whatever shape the value has.
func Translate(input string, sender addr.Address) (Translation, error) {
	pairs, err := splitPairs(input)
	if err != nil {
		return Translation{}, err
	}
	out := Translation{Record: record.New(Kind, sender)}
	for _, pair := range pairs {
		key, rest, err := splitKey(pair)
		if err != nil {
			return Translation{}, err
		}
		name, ok := longNames[key]
		if !ok {
			out.Skipped = append(out.Skipped, key)
			continue
		}
		value, err := pairValue(key, rest)
		if err != nil {
			return Translation{}, err
		}
		out.Record.Add(name, value)
	}
	out.Record.Fields = append(out.Record.Fields, placeholders...)
	out.Record.AddAddress()
	return out, nil
}

// splitPairs returns the trimmed, non-empty pairs of the first object in
// input. Commas and braces inside quoted strings do not separate pairs.
func splitPairs(input string) ([]string, error) {
	start := strings.IndexByte(input, '{')
	if start < 0 {
		return nil, fmt.Errorf("%w: missing '{'", ErrMalformed)
	}
	var pairs []string
	add := func(p string) {
		if p = strings.TrimSpace(p); p != "" {
			pairs = append(pairs, p)
		}
	}
	inQuote, escaped := false, false
	from := start + 1
	for i := from; i < len(input); i++ {
		c := input[i]
		switch {
		case escaped:
			escaped = false
		case inQuote && c == '\\':
			escaped = true
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == ',':
			add(input[from:i])
			from = i + 1
		case c == '}':
			add(input[from:i])
			return pairs, nil
		}
	}
	return nil, fmt.Errorf("%w: missing '}'", ErrMalformed)
}

// splitKey reads the quoted key at the start of pair and returns it with the
// text that follows.
func splitKey(pair string) (string, string, error) {
	if pair[0] != '"' {
		return "", "", fmt.Errorf("%w: key in %q is not quoted", ErrMalformed, pair)
	}
	end := strings.IndexByte(pair[1:], '"')
	if end < 0 {
		return "", "", fmt.Errorf("%w: key in %q is not terminated", ErrMalformed, pair)
	}
	return pair[1 : end+1], pair[end+2:], nil
}

func pairValue(key, rest string) (string, error) {
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, ":") {
		return "", fmt.Errorf("%w: key %q has no ':'", ErrMalformed, key)
	}
	value := strings.TrimSpace(rest[1:])
	if value == "" {
		return "", fmt.Errorf("%w: key %q has no value", ErrMalformed, key)
	}
	return value, nil
}
