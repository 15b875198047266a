package docstore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a raw event read from the document store. Producers own the
// schema; readers must tolerate missing or oddly-typed fields, so every
// accessor degrades to a zero value instead of failing.
type Document map[string]any

// String returns the named field as a string, or "" when absent.
func (d Document) String(key string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

// Float returns the named field as a float64, accepting any numeric encoding
// the driver may produce. Missing or non-numeric values yield 0.
func (d Document) Float(key string) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Int returns the named field truncated to an int.
func (d Document) Int(key string) int {
	return int(d.Float(key))
}

// Bool returns the named field as a bool, or false when absent.
func (d Document) Bool(key string) bool {
	if b, ok := d[key].(bool); ok {
		return b
	}
	return false
}

// Time returns the named field as a time.Time. The zero time signals absence.
func (d Document) Time(key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case primitive.DateTime:
		return v.Time()
	}
	return time.Time{}
}

// Child returns a nested document, or an empty one when the field is absent
// or not a mapping.
func (d Document) Child(key string) Document {
	switch v := d[key].(type) {
	case Document:
		return v
	case bson.M:
		return Document(v)
	case map[string]any:
		return Document(v)
	}
	return Document{}
}

// StringList returns the named field as a slice of strings, skipping any
// non-string elements.
func (d Document) StringList(key string) []string {
	var items []any
	switch v := d[key].(type) {
	case []string:
		return v
	case []any:
		items = v
	case primitive.A:
		items = v
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
