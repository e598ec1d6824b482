package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-formflow/pkg/model"
)

const resourceBase = "https://formflow.local/rules/"

// Validator checks values for a single field.
type Validator struct {
	field  string
	rule   model.Rule
	schema *jsonschema.Schema
}

// Compile builds the validator for field's rule. Invalid rules, such as a
// pattern that does not compile, are reported here rather than at check time.
func Compile(field string, rule model.Rule) (*Validator, error) {
	if err := rule.Check(); err != nil {
		return nil, fmt.Errorf("validation: field %q: %w", field, err)
	}

	payload, err := json.Marshal(Document(rule))
	if err != nil {
		return nil, fmt.Errorf("validation: field %q: encode schema: %w", field, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	resource := resourceBase + url.PathEscape(field) + ".schema.json"
	if err := compiler.AddResource(resource, bytes.NewReader(payload)); err != nil {
		return nil, fmt.Errorf("validation: field %q: load schema: %w", field, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("validation: field %q: compile schema: %w", field, err)
	}

	return &Validator{field: field, rule: rule, schema: compiled}, nil
}

// MustCompile is Compile for statically known rules; it panics on error.
func MustCompile(field string, rule model.Rule) *Validator {
	v, err := Compile(field, rule)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Validator) Field() string    { return v.field }
func (v *Validator) Rule() model.Rule { return v.rule }

// Document returns the JSON Schema the rule compiles to. Presence is not
// part of the document; callers list required keys on the enclosing object.
func Document(rule model.Rule) map[string]any {
	doc := map[string]any{}

	switch rule.EffectiveType() {
	case model.TypeString:
		doc["type"] = "string"
		stringKeywords(doc, rule)
	case model.TypeDate:
		doc["type"] = "string"
		if rule.Format == "" {
			doc["format"] = "date"
		}
		stringKeywords(doc, rule)
	case model.TypeNumber:
		doc["type"] = "number"
		numberKeywords(doc, rule)
	case model.TypeInteger:
		doc["type"] = "integer"
		numberKeywords(doc, rule)
	case model.TypeBoolean:
		doc["type"] = "boolean"
	case model.TypeArray:
		doc["type"] = "array"
		if rule.MinItems != nil {
			doc["minItems"] = *rule.MinItems
		}
		if rule.MaxItems != nil {
			doc["maxItems"] = *rule.MaxItems
		}
		if rule.Items != nil {
			doc["items"] = Document(*rule.Items)
		}
	case model.TypeObject:
		doc["type"] = "object"
	case model.TypeFile:
		doc["anyOf"] = []any{
			map[string]any{"type": "string", "minLength": 1},
			map[string]any{
				"type":       "object",
				"required":   []any{"name"},
				"properties": map[string]any{"name": map[string]any{"type": "string", "minLength": 1}},
			},
		}
	}

	if len(rule.Enum) > 0 {
		doc["enum"] = append([]any(nil), rule.Enum...)
	}

	if rule.Nullable {
		switch typed := doc["type"].(type) {
		case string:
			doc["type"] = []any{typed, "null"}
		default:
			if branches, ok := doc["anyOf"].([]any); ok {
				doc["anyOf"] = append(branches, map[string]any{"type": "null"})
			}
		}
		if enum, ok := doc["enum"].([]any); ok {
			doc["enum"] = append(enum, nil)
		}
	}
	return doc
}

func stringKeywords(doc map[string]any, rule model.Rule) {
	if rule.MinLength != nil {
		doc["minLength"] = *rule.MinLength
	}
	if rule.MaxLength != nil {
		doc["maxLength"] = *rule.MaxLength
	}
	if rule.Pattern != "" {
		doc["pattern"] = rule.Pattern
	}
	switch rule.Format {
	case model.FormatEmail:
		doc["format"] = "email"
	case model.FormatURL:
		doc["format"] = "uri"
	case model.FormatDate:
		doc["format"] = "date"
	}
}

func numberKeywords(doc map[string]any, rule model.Rule) {
	if rule.Minimum != nil {
		doc["minimum"] = *rule.Minimum
	}
	if rule.Maximum != nil {
		doc["maximum"] = *rule.Maximum
	}
}
