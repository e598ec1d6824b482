package visibility

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const extrasPrefix = "extras."

func isExtrasPath(path string) bool {
	return strings.HasPrefix(strings.ToLower(path), extrasPrefix)
}

// Lookup resolves a dotted path against values, preferring an exact key match
// so flattened keys such as "cta.headline" keep working.
func Lookup(values map[string]any, path string) (any, bool) {
	return lookupMap(values, path)
}

func lookup(ctx Context, key string) (any, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	if isExtrasPath(key) {
		return lookupMap(ctx.Extras, strings.TrimSpace(key[len(extrasPrefix):]))
	}
	return lookupMap(ctx.Values, key)
}

func lookupMap(values map[string]any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

// equal compares a form value against a literal, coercing the form value to
// the literal's kind (so "true" == true and "3" == 3).
func equal(got, want any) bool {
	switch w := want.(type) {
	case nil:
		return got == nil
	case bool:
		b, ok := coerceBool(got)
		return ok && b == w
	case string:
		if got == nil {
			return false
		}
		return coerceString(got) == w
	}
	if wantNum, ok := coerceNumber(want); ok {
		gotNum, ok := coerceNumber(got)
		return ok && gotNum == wantNum
	}
	return reflect.DeepEqual(got, want)
}

func anyEqual(got any, candidates []any) bool {
	for _, candidate := range candidates {
		if equal(got, candidate) {
			return true
		}
	}
	return false
}

func contains(got, want any) bool {
	switch typed := got.(type) {
	case nil:
		return false
	case string:
		return strings.Contains(typed, coerceString(want))
	case []any:
		for _, item := range typed {
			if equal(item, want) {
				return true
			}
		}
		return false
	case []string:
		needle := coerceString(want)
		for _, item := range typed {
			if item == needle {
				return true
			}
		}
		return false
	case map[string]any:
		_, ok := typed[coerceString(want)]
		return ok
	}

	rv := reflect.ValueOf(got)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			if equal(rv.Index(i).Interface(), want) {
				return true
			}
		}
	}
	return false
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	}
	if n, ok := coerceNumber(value); ok {
		return n != 0
	}
	return !isEmpty(value)
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed, true
		}
		return strings.TrimSpace(v) != "", true
	default:
		return truthy(value), true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}
