package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const detailFallback = "validation failed"

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// detailFromBody extracts and normalizes the "detail" member of an error
// response. Bodies that are not the JSON envelope give "".
func detailFromBody(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	return NormalizeDetail(eb.Detail)
}

// NormalizeDetail flattens a validation detail into one readable string.
// The detail may be a string, an array of field errors ({loc, msg, type})
// or a nested object. The result is never empty.
func NormalizeDetail(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		if s := strings.TrimSpace(string(raw)); s != "" {
			return s
		}
		return detailFallback
	}
	if s := strings.TrimSpace(flatten(v)); s != "" {
		return s
	}
	return detailFallback
}

func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := flattenItem(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		return flattenObject(t)
	default:
		return fmt.Sprint(t)
	}
}

// flattenItem renders one element of a field error array.
func flattenItem(item any) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return flatten(item)
	}
	msg, ok := obj["msg"].(string)
	if !ok {
		return flattenObject(obj)
	}
	if field := fieldFromLoc(obj["loc"]); field != "" {
		return field + ": " + msg
	}
	return msg
}

func flattenObject(obj map[string]any) string {
	for _, k := range []string{"msg", "message", "detail", "error"} {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if s := flatten(obj[k]); s != "" {
			parts = append(parts, k+": "+s)
		}
	}
	return strings.Join(parts, "; ")
}

// fieldFromLoc returns the innermost named location of a field error,
// skipping the "body"/"query" prefixes and list indexes.
func fieldFromLoc(loc any) string {
	parts, ok := loc.([]any)
	if !ok {
		return ""
	}
	for i := len(parts) - 1; i >= 0; i-- {
		s, ok := parts[i].(string)
		if !ok {
			continue
		}
		switch s {
		case "body", "query", "path", "header":
			return ""
		}
		return s
	}
	return ""
}
