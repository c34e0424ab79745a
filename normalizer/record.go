package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is an ordered field-to-value mapping recovered from one raw answer.
// Field order is the order keys appeared in the parsed object. All values are
// strings: numbers and booleans keep their literal text form, null becomes "".
type Record struct {
	fields []string
	values map[string]string
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set stores value under field. The first Set of a field fixes its position;
// setting it again replaces the value in place.
func (r *Record) Set(field, value string) {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
}

// Get returns the value for field and whether the field is present.
func (r *Record) Get(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Fields returns the field names in insertion order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len reports the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// parseRecord parses a cleaned answer as a single JSON object, preserving key
// order. encoding/json's map decoding would lose the order, so the object is
// walked token by token.
func parseRecord(s string) (*Record, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read opening token: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("answer is not a JSON object")
	}

	rec := NewRecord()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read field name: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("field name is not a string")
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("decode value of %q: %w", key, err)
		}
		rec.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read closing token: %w", err)
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON object")
	}
	return rec, nil
}

// decodeValue reads one JSON value and renders it as a string. Scalars keep
// their literal form; nested objects and arrays are re-encoded as compact
// JSON text.
func decodeValue(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	switch v := tok.(type) {
	case json.Delim:
		return decodeComposite(dec, v)
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeComposite(dec *json.Decoder, open json.Delim) (string, error) {
	value, err := buildComposite(dec, open)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func buildComposite(dec *json.Decoder, open json.Delim) (any, error) {
	if open == '{' {
		obj := make(map[string]any)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, errors.New("nested field name is not a string")
			}
			child, err := buildCompositeValue(dec)
			if err != nil {
				return nil, err
			}
			obj[key] = child
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	}

	arr := make([]any, 0)
	for dec.More() {
		child, err := buildCompositeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func buildCompositeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if delim, ok := tok.(json.Delim); ok {
		return buildComposite(dec, delim)
	}
	return tok, nil
}
