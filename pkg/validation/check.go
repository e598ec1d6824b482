package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-formflow/pkg/model"
)

const (
	defaultRequiredMessage = "Required"
	dateLayout             = "2006-01-02"
)

// Check validates value. present reports whether the key exists in the value
// set at all. It returns the parsed value (unwrapped and coerced) together
// with any issues; a missing or nil value passes only for optional rules.
func (v *Validator) Check(value any, present bool) (any, []Issue) {
	if present {
		value = v.prepare(value)
	}
	if !present || value == nil {
		if v.rule.IsOptional() {
			return nil, nil
		}
		return nil, []Issue{v.issue("", model.KeywordRequired, defaultRequiredMessage)}
	}

	normalized, err := normalize(value)
	if err != nil {
		return value, []Issue{v.issue("", model.KeywordType, "unsupported value")}
	}
	if err := v.schema.Validate(normalized); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return value, v.issuesFrom(verr)
		}
		return value, []Issue{v.issue("", model.KeywordType, err.Error())}
	}
	return value, nil
}

// Valid reports whether value satisfies the rule.
func (v *Validator) Valid(value any) bool {
	_, issues := v.Check(value, true)
	return len(issues) == 0
}

func (v *Validator) prepare(value any) any {
	rule := v.rule
	if rule.Unwrap != "" {
		if obj, ok := value.(map[string]any); ok {
			if inner, ok := obj[rule.Unwrap]; ok {
				value = inner
			}
		}
	}
	if t, ok := value.(time.Time); ok && rule.EffectiveType() == model.TypeDate {
		return t.Format(dateLayout)
	}
	if rule.Coerce {
		return coerce(rule.EffectiveType(), value)
	}
	return value
}

// coerce converts primitive input to the target scalar type. Blank strings
// become nil so optional numeric inputs left empty count as absent.
func coerce(target model.RuleType, value any) any {
	switch target {
	case model.TypeNumber, model.TypeInteger:
		switch typed := value.(type) {
		case string:
			trimmed := strings.TrimSpace(typed)
			if trimmed == "" {
				return nil
			}
			if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return f
			}
		case json.Number:
			if f, err := typed.Float64(); err == nil {
				return f
			}
		case bool:
			if typed {
				return 1.0
			}
			return 0.0
		}
	case model.TypeBoolean:
		switch typed := value.(type) {
		case string:
			trimmed := strings.TrimSpace(typed)
			if trimmed == "" {
				return nil
			}
			if b, err := strconv.ParseBool(trimmed); err == nil {
				return b
			}
		case float64:
			return typed != 0
		case int:
			return typed != 0
		}
	case model.TypeString, model.TypeDate:
		switch typed := value.(type) {
		case string:
			return typed
		case json.Number:
			return typed.String()
		case bool, int, int64, float64, float32:
			return fmt.Sprint(typed)
		}
	}
	return value
}

// normalize converts arbitrary Go values to the JSON data model the schema
// validator understands.
func normalize(value any) (any, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *Validator) issuesFrom(root *jsonschema.ValidationError) []Issue {
	var out []Issue
	seen := make(map[string]struct{})

	var walk func(*jsonschema.ValidationError)
	walk = func(err *jsonschema.ValidationError) {
		if len(err.Causes) > 0 && !strings.HasSuffix(err.KeywordLocation, "/anyOf") {
			for _, cause := range err.Causes {
				walk(cause)
			}
			return
		}
		keyword := keywordOf(err.KeywordLocation)
		path := pointerToPath(err.InstanceLocation)
		key := keyword + "\x00" + path
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, v.issue(path, keyword, err.Message))
	}
	walk(root)

	if len(out) == 0 {
		out = append(out, v.issue("", model.KeywordType, root.Message))
	}
	return out
}

func (v *Validator) issue(path, keyword, fallback string) Issue {
	full := v.field
	if path != "" {
		full = v.field + "." + path
	}
	return Issue{
		Field:   v.field,
		Path:    full,
		Keyword: keyword,
		Message: v.message(path, keyword, fallback),
	}
}

func (v *Validator) message(path, keyword, fallback string) string {
	if path != "" && v.rule.Items != nil {
		if msg := v.rule.Items.MessageFor(keyword); msg != "" {
			return msg
		}
	}
	if msg := v.rule.MessageFor(keyword); msg != "" {
		return msg
	}
	if keyword == model.KeywordRequired {
		if msg := v.rule.MessageFor(model.KeywordType); msg != "" {
			return msg
		}
	}
	return fallback
}

// keywordOf maps a keyword location such as "/items/minLength" to its final
// keyword. anyOf failures are reported as type mismatches.
func keywordOf(location string) string {
	location = strings.TrimSuffix(location, "/")
	if location == "" || strings.HasSuffix(location, "/anyOf") {
		return model.KeywordType
	}
	idx := strings.LastIndexByte(location, '/')
	return location[idx+1:]
}

func pointerToPath(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(pointer, "#"), "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return strings.Join(parts, ".")
}
