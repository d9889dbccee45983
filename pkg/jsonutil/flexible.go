package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// FlexibleStringValue converts a JSON scalar to a string. Form-minded clients
// send `true`, `"true"` and `1` interchangeably for the same option. Returns
// empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) (string, error) {
	v, err := decodeScalar(raw)
	if err != nil || v == nil {
		return "", err
	}
	if n, ok := v.(json.Number); ok {
		return n.String(), nil
	}
	return cast.ToStringE(v)
}

// FlexibleIntValue converts a JSON number or numeric string to an int.
// Returns 0 for null/empty.
func FlexibleIntValue(raw json.RawMessage) (int, error) {
	v, err := decodeScalar(raw)
	if err != nil || v == nil {
		return 0, err
	}
	if n, ok := v.(json.Number); ok {
		v = n.String()
	}
	if s, ok := v.(string); ok && s == "" {
		return 0, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %s", raw)
	}
	return n, nil
}

func decodeScalar(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case string, bool, json.Number:
		return v, nil
	default:
		return nil, fmt.Errorf("expected a string, number or boolean, got %s", raw)
	}
}
