// Package document provides a structural variant type for loosely-shaped
// tenant records: an ordered collection of named fields with typed, fallible
// accessors. Typed projections (such as the user view) are built by explicit
// field mapping on top of it instead of reflection-based binding.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/allisson/identity/internal/errors"
)

// Field-access errors.
var (
	// ErrFieldMissing indicates the named field is not present in the document.
	ErrFieldMissing = apperrors.Wrap(apperrors.ErrInvalidInput, "field missing")

	// ErrFieldType indicates the named field holds a value of an unexpected type.
	ErrFieldType = apperrors.Wrap(apperrors.ErrInvalidInput, "field has unexpected type")
)

// Field is a single named value of a document.
type Field struct {
	Name  string
	Value any
}

// Document is an ordered map of named fields. Field order is insertion order
// and survives JSON round trips. The zero value is ready to use.
type Document struct {
	fields []Field
	index  map[string]int
}

// New creates an empty document.
func New() *Document {
	return &Document{index: make(map[string]int)}
}

// Set stores a field value, keeping the original position when the field
// already exists and appending otherwise.
func (d *Document) Set(name string, value any) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[name]; ok {
		d.fields[i].Value = value
		return
	}
	d.index[name] = len(d.fields)
	d.fields = append(d.fields, Field{Name: name, Value: value})
}

// Get returns the raw field value and whether the field exists.
func (d *Document) Get(name string) (any, bool) {
	if d.index == nil {
		return nil, false
	}
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.fields[i].Value, true
}

// Has reports whether the named field exists.
func (d *Document) Has(name string) bool {
	_, ok := d.Get(name)
	return ok
}

// Len returns the number of fields.
func (d *Document) Len() int {
	return len(d.fields)
}

// Fields returns the fields in insertion order.
func (d *Document) Fields() []Field {
	fields := make([]Field, len(d.fields))
	copy(fields, d.fields)
	return fields
}

// String returns the named field as a string.
func (d *Document) String(name string) (string, error) {
	value, ok := d.Get(name)
	if !ok {
		return "", apperrors.Wrap(ErrFieldMissing, name)
	}
	s, ok := value.(string)
	if !ok {
		return "", apperrors.Wrap(ErrFieldType, fmt.Sprintf("%s: expected string, got %T", name, value))
	}
	return s, nil
}

// Bool returns the named field as a bool.
func (d *Document) Bool(name string) (bool, error) {
	value, ok := d.Get(name)
	if !ok {
		return false, apperrors.Wrap(ErrFieldMissing, name)
	}
	b, ok := value.(bool)
	if !ok {
		return false, apperrors.Wrap(ErrFieldType, fmt.Sprintf("%s: expected bool, got %T", name, value))
	}
	return b, nil
}

// Int64 returns the named field as an int64, accepting the numeric types
// JSON decoding produces.
func (d *Document) Int64(name string) (int64, error) {
	value, ok := d.Get(name)
	if !ok {
		return 0, apperrors.Wrap(ErrFieldMissing, name)
	}
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	default:
		return 0, apperrors.Wrap(ErrFieldType, fmt.Sprintf("%s: expected number, got %T", name, value))
	}
}

// Time returns the named field as a time.Time, accepting time values and
// RFC 3339 strings.
func (d *Document) Time(name string) (time.Time, error) {
	value, ok := d.Get(name)
	if !ok {
		return time.Time{}, apperrors.Wrap(ErrFieldMissing, name)
	}
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, apperrors.Wrap(ErrFieldType, fmt.Sprintf("%s: %v", name, err))
		}
		return parsed, nil
	default:
		return time.Time{}, apperrors.Wrap(ErrFieldType, fmt.Sprintf("%s: expected time, got %T", name, value))
	}
}

// StringSlice returns the named field as a []string, accepting both typed
// slices and the []any form JSON decoding produces.
func (d *Document) StringSlice(name string) ([]string, error) {
	value, ok := d.Get(name)
	if !ok {
		return nil, apperrors.Wrap(ErrFieldMissing, name)
	}
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		values := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, apperrors.Wrap(ErrFieldType, fmt.Sprintf("%s[%d]: expected string, got %T", name, i, item))
			}
			values[i] = s
		}
		return values, nil
	default:
		return nil, apperrors.Wrap(ErrFieldType, fmt.Sprintf("%s: expected string slice, got %T", name, value))
	}
}

// MarshalJSON renders the document as a JSON object with fields in insertion
// order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range d.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving its field order.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "document must be a JSON object")
	}

	d.fields = nil
	d.index = make(map[string]int)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		d.Set(key, value)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
