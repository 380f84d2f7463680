package tado

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

var errNullValue = errors.New("null value")

// requireKeys fails when any of keys is absent from the JSON object in data.
// A null value is accepted only when the matching field of T is a pointer,
// an interface or raw JSON.
func requireKeys[T any](data []byte, typeName string, keys ...string) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return &SchemaError{Type: typeName, Err: err}
	}
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			return &SchemaError{Type: typeName, Field: key}
		}
		if !present(raw) && !nullable(reflect.TypeOf((*T)(nil)).Elem(), key) {
			return &SchemaError{Type: typeName, Field: key, Err: errNullValue}
		}
	}
	return nil
}

// nullable reports whether the field tagged key in struct type t can hold
// a JSON null. Unknown keys are treated as nullable.
func nullable(t reflect.Type, key string) bool {
	if t.Kind() != reflect.Struct {
		return true
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name != key {
			continue
		}
		switch field.Type.Kind() {
		case reflect.Pointer, reflect.Interface:
			return true
		}
		return field.Type == reflect.TypeOf((*json.RawMessage)(nil)).Elem()
	}
	return true
}

// decode parses a response body into out. Type mismatches surface as
// schema errors, so callers see one failure kind for malformed payloads.
func decode[T any](data []byte, typeName string) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			return out, err
		}
		return out, &SchemaError{Type: typeName, Err: err}
	}
	return out, nil
}

// unmarshalRequired checks keys and then decodes into out, which must be a
// method-less alias of the calling type to avoid recursing into UnmarshalJSON.
func unmarshalRequired[T any](data []byte, out *T, typeName string, keys ...string) error {
	if err := requireKeys[T](data, typeName, keys...); err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// present reports whether an optional raw field exists and is not null.
func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
