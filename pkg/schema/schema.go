package schema

import (
	"slices"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

const draft202012 = "https://json-schema.org/draft/2020-12/schema"

// Schema is an ordered, name-keyed set of field validators, the object
// schema of a form or page.
type Schema struct {
	keys       []string
	validators map[string]*validation.Validator
}

func newSchema(keys []string, validators map[string]*validation.Validator) *Schema {
	return &Schema{
		keys:       append([]string(nil), keys...),
		validators: cloneValidators(validators, keys),
	}
}

// Keys returns the field names in declaration order.
func (s *Schema) Keys() []string {
	return append([]string(nil), s.keys...)
}

func (s *Schema) Len() int {
	return len(s.keys)
}

func (s *Schema) Has(name string) bool {
	_, ok := s.validators[name]
	return ok
}

// Rule returns the rule for name.
func (s *Schema) Rule(name string) (model.Rule, bool) {
	v, ok := s.validators[name]
	if !ok {
		return model.Rule{}, false
	}
	return v.Rule(), true
}

// Pick returns a schema restricted to names; unknown names are ignored.
func (s *Schema) Pick(names ...string) *Schema {
	keys := make([]string, 0, len(names))
	for _, key := range s.keys {
		if slices.Contains(names, key) {
			keys = append(keys, key)
		}
	}
	return newSchema(keys, s.validators)
}

// Omit returns a schema without names.
func (s *Schema) Omit(names ...string) *Schema {
	keys := make([]string, 0, len(s.keys))
	for _, key := range s.keys {
		if !slices.Contains(names, key) {
			keys = append(keys, key)
		}
	}
	return newSchema(keys, s.validators)
}

// Validate checks values against every key of the schema. Keys not declared
// by the schema are ignored.
func (s *Schema) Validate(values map[string]any) validation.Result {
	_, issues := s.run(values)
	return validation.NewResult(issues)
}

// Parse validates values and returns the parsed object: declared keys only,
// with unwrap and coercion applied. Missing optional keys stay absent. On
// failure the error is a *validation.Error.
func (s *Schema) Parse(values map[string]any) (map[string]any, error) {
	out, issues := s.run(values)
	if len(issues) > 0 {
		return nil, validation.NewResult(issues).Err()
	}
	return out, nil
}

func (s *Schema) run(values map[string]any) (map[string]any, []validation.Issue) {
	out := make(map[string]any, len(s.keys))
	var issues []validation.Issue
	for _, key := range s.keys {
		raw, present := values[key]
		parsed, fieldIssues := s.validators[key].Check(raw, present)
		if len(fieldIssues) > 0 {
			issues = append(issues, fieldIssues...)
			continue
		}
		if present {
			out[key] = parsed
		}
	}
	return out, issues
}

// JSONSchema exports the schema as a Draft 2020-12 object schema. Keys whose
// rule is not optional are listed as required.
func (s *Schema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.keys))
	required := make([]any, 0, len(s.keys))
	for _, key := range s.keys {
		rule := s.validators[key].Rule()
		properties[key] = validation.Document(rule)
		if !rule.IsOptional() {
			required = append(required, key)
		}
	}
	doc := map[string]any{
		"$schema":    draft202012,
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}
