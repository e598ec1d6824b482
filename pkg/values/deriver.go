package values

import (
	"log/slog"
	"maps"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/widgets"
)

// Deriver computes default and edit-mode values for a form.
type Deriver struct {
	agg      *schema.Aggregator
	registry *widgets.Registry
	logger   *slog.Logger
}

// Option customises a Deriver.
type Option func(*Deriver)

// WithRegistry overrides the component kind registry.
func WithRegistry(reg *widgets.Registry) Option {
	return func(d *Deriver) {
		if reg != nil {
			d.registry = reg
		}
	}
}

// WithLogger sets the logger used for validation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deriver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New returns a Deriver over an existing aggregator.
func New(agg *schema.Aggregator, opts ...Option) *Deriver {
	d := &Deriver{
		agg:      agg,
		registry: widgets.Default,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// FromConfig builds the aggregator for cfg and returns a Deriver over it.
func FromConfig(cfg model.FormConfig, opts ...Option) (*Deriver, error) {
	agg, err := schema.New(cfg)
	if err != nil {
		return nil, err
	}
	return New(agg, opts...), nil
}

// Aggregator exposes the schema aggregator backing the deriver.
func (d *Deriver) Aggregator() *schema.Aggregator {
	return d.agg
}

// Default returns the initial value for a single field.
func (d *Deriver) Default(field model.Field) any {
	if value, ok := field.DefaultValue(); ok {
		return cloneValue(value)
	}

	rule, ok := d.agg.FieldRule(field.Name)
	optional := !ok || rule.IsOptional()

	switch d.registry.KindOf(field) {
	case widgets.KindMulti:
		return []any{}
	case widgets.KindChoice:
		if optional {
			return nil
		}
		return ""
	case widgets.KindPicker, widgets.KindNumber:
		return nil
	default:
		return ""
	}
}

// Initial returns the create-mode values for every field.
func (d *Deriver) Initial() map[string]any {
	return d.collect(d.agg.Fields())
}

// Edit returns the defaults overridden key by key by data. Every key in data
// wins, falsy values included, and keys unknown to the form are kept.
func (d *Deriver) Edit(data map[string]any) map[string]any {
	return merge(d.Initial(), data)
}

// Page returns the create-mode values for one page; an unknown page yields
// an empty map.
func (d *Deriver) Page(pageID string) map[string]any {
	fields, ok := d.agg.PageFields(pageID)
	if !ok {
		return map[string]any{}
	}
	return d.collect(fields)
}

// PageEdit merges data over one page's defaults. As with Edit, all of data
// is carried over, including keys belonging to other pages.
func (d *Deriver) PageEdit(pageID string, data map[string]any) map[string]any {
	return merge(d.Page(pageID), data)
}

// Validated parses the create-mode values through the form schema. When
// parsing fails the failure is logged and the unvalidated values returned.
func (d *Deriver) Validated() map[string]any {
	initial := d.Initial()
	parsed, err := d.agg.FormSchema().Parse(initial)
	if err != nil {
		d.logger.Warn("initial values validation failed, returning defaults", "error", err)
		return initial
	}
	return parsed
}

// ValidatedEdit is Validated for edit-mode values.
func (d *Deriver) ValidatedEdit(data map[string]any) map[string]any {
	merged := d.Edit(data)
	parsed, err := d.agg.FormSchema().Parse(merged)
	if err != nil {
		d.logger.Warn("edit initial values validation failed, returning merged values", "error", err)
		return merged
	}
	return parsed
}

func (d *Deriver) collect(fields []model.Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		out[field.Name] = d.Default(field)
	}
	return out
}

func merge(defaults, data map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(data))
	maps.Copy(out, defaults)
	maps.Copy(out, data)
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
