// ABOUTME: Shared field-extraction helpers for the entity normalizers
// ABOUTME: Converts arbitrary raw records to maps and reads legacy-aliased values
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// asMap converts any raw record to a JSON object map. Unencodable input
// yields an empty map; normalizers are total and never fail.
func asMap(raw interface{}) map[string]interface{} {
	if m, ok := raw.(map[string]interface{}); ok {
		return m
	}

	blob, err := json.Marshal(raw)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(blob, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

// str returns the first non-empty string value among the given keys.
// Numeric values are rendered as strings so legacy numeric ids survive.
func str(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			if v == math.Trunc(v) {
				return strconv.FormatInt(int64(v), 10)
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// num returns the first numeric value among the given keys, accepting
// numbers and numeric strings.
func num(m map[string]interface{}, keys ...string) (int, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return int(v), true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// boolField returns the first boolean value among the given keys.
func boolField(m map[string]interface{}, keys ...string) (bool, bool) {
	for _, key := range keys {
		if v, ok := m[key].(bool); ok {
			return v, true
		}
	}
	return false, false
}

// strList extracts a string slice from the first matching key.
func strList(m map[string]interface{}, keys ...string) []string {
	for _, key := range keys {
		list, ok := m[key].([]interface{})
		if !ok {
			continue
		}
		var out []string
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// timeField parses the first parseable timestamp among the given keys.
// Accepts RFC3339 (with or without nanoseconds) and bare dates.
func timeField(m map[string]interface{}, keys ...string) (time.Time, bool) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}
	for _, key := range keys {
		s, ok := m[key].(string)
		if !ok || s == "" {
			continue
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// subMap returns a nested object under the first matching key.
func subMap(m map[string]interface{}, keys ...string) map[string]interface{} {
	for _, key := range keys {
		if sub, ok := m[key].(map[string]interface{}); ok {
			return sub
		}
	}
	return nil
}
