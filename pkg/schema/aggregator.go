package schema

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Aggregator holds the compiled rules of a form configuration. It is
// immutable after New and safe for concurrent use.
type Aggregator struct {
	cfg        model.FormConfig
	fields     []model.Field
	order      []string
	validators map[string]*validation.Validator
	form       *Schema
}

// New flattens cfg (flat page fields first, then sections) and compiles every
// field rule. A rule that cannot be compiled fails construction.
func New(cfg model.FormConfig) (*Aggregator, error) {
	fields := cfg.Fields()
	agg := &Aggregator{
		cfg:        cfg,
		fields:     fields,
		validators: make(map[string]*validation.Validator, len(fields)),
	}

	for _, field := range fields {
		validator, err := validation.Compile(field.Name, field.Rule)
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		if _, seen := agg.validators[field.Name]; !seen {
			agg.order = append(agg.order, field.Name)
		}
		agg.validators[field.Name] = validator
	}

	agg.form = newSchema(agg.order, agg.validators)
	return agg, nil
}

// MustNew is New for statically authored forms; it panics on error.
func MustNew(cfg model.FormConfig) *Aggregator {
	agg, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return agg
}

// Config returns the configuration the aggregator was built from.
func (a *Aggregator) Config() model.FormConfig {
	return a.cfg
}

// FormSchema returns the combined schema; its key set is every field name.
func (a *Aggregator) FormSchema() *Schema {
	return a.form
}

// PageSchema returns the schema restricted to one page's fields.
func (a *Aggregator) PageSchema(pageID string) (*Schema, bool) {
	page, ok := a.cfg.Page(pageID)
	if !ok {
		return nil, false
	}
	var keys []string
	seen := make(map[string]struct{})
	for _, field := range page.AllFields() {
		if _, dup := seen[field.Name]; dup {
			continue
		}
		seen[field.Name] = struct{}{}
		keys = append(keys, field.Name)
	}
	return newSchema(keys, a.validators), true
}

// FieldRule returns the rule registered for name.
func (a *Aggregator) FieldRule(name string) (model.Rule, bool) {
	validator, ok := a.validators[name]
	if !ok {
		return model.Rule{}, false
	}
	return validator.Rule(), true
}

// FieldValidator returns the compiled validator registered for name.
func (a *Aggregator) FieldValidator(name string) (*validation.Validator, bool) {
	validator, ok := a.validators[name]
	return validator, ok
}

// Fields returns every field in declaration order, duplicates included.
func (a *Aggregator) Fields() []model.Field {
	return append([]model.Field(nil), a.fields...)
}

// Field returns the first field declared with name.
func (a *Aggregator) Field(name string) (model.Field, bool) {
	for _, field := range a.fields {
		if field.Name == name {
			return field, true
		}
	}
	return model.Field{}, false
}

// PageFields returns one page's fields: flat fields, then section fields.
func (a *Aggregator) PageFields(pageID string) ([]model.Field, bool) {
	page, ok := a.cfg.Page(pageID)
	if !ok {
		return nil, false
	}
	return page.AllFields(), true
}

// Shape maps every field name to its registered rule.
func (a *Aggregator) Shape() map[string]model.Rule {
	out := make(map[string]model.Rule, len(a.validators))
	for name, validator := range a.validators {
		out[name] = validator.Rule()
	}
	return out
}

func cloneValidators(in map[string]*validation.Validator, keys []string) map[string]*validation.Validator {
	out := make(map[string]*validation.Validator, len(keys))
	for _, key := range keys {
		if v, ok := in[key]; ok {
			out[key] = v
		}
	}
	return out
}
