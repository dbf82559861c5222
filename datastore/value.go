package datastore

import "strconv"

// Typed coercion helpers for raw column values. Absence in storage (SQL NULL)
// and garbled values both decode to nil, never to a zero value and never to a
// panic. Entity code decides per field whether nil maps to "" or stays a
// pointer.

// AsString decodes a raw value into a string, or nil when absent.
func AsString(raw any) *string {
	switch v := raw.(type) {
	case string:
		return &v
	case []byte:
		s := string(v)
		return &s
	default:
		return nil
	}
}

// AsInt decodes a raw value into an int, or nil when absent.
func AsInt(raw any) *int {
	if v := AsInt64(raw); v != nil {
		i := int(*v)
		return &i
	}
	return nil
}

// AsInt64 decodes a raw value into an int64, or nil when absent.
func AsInt64(raw any) *int64 {
	switch v := raw.(type) {
	case int64:
		return &v
	case int:
		i := int64(v)
		return &i
	case float64:
		i := int64(v)
		return &i
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return &i
		}
		return nil
	default:
		return nil
	}
}

// AsFloat64 decodes a raw value into a float64, or nil when absent.
func AsFloat64(raw any) *float64 {
	switch v := raw.(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

// AsBool decodes a raw value into a bool, or nil when absent. SQLite stores
// booleans as integers.
func AsBool(raw any) *bool {
	switch v := raw.(type) {
	case bool:
		return &v
	case int64:
		b := v != 0
		return &b
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return &b
		}
		return nil
	default:
		return nil
	}
}
