package orchestrator

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/goliatone/go-formflow/pkg/behavior"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/values"
	"github.com/goliatone/go-formflow/pkg/widgets"
)

// Mode selects between creating a new record and editing an existing one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// ErrUnknownPage is returned when a page id does not exist in the form.
var ErrUnknownPage = errors.New("orchestrator: unknown page")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithMode sets create or edit mode. Unknown values fall back to create.
func WithMode(mode Mode) Option {
	return func(o *Orchestrator) {
		if mode == ModeEdit {
			o.mode = ModeEdit
			return
		}
		o.mode = ModeCreate
	}
}

// WithEditData supplies the existing record merged over defaults in edit
// mode.
func WithEditData(data map[string]any) Option {
	return func(o *Orchestrator) {
		if data == nil {
			o.editData = nil
			return
		}
		o.editData = maps.Clone(data)
	}
}

// WithLogger injects the logger used for validation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistry injects the component kind registry used for defaults.
func WithRegistry(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		if registry != nil {
			o.registry = registry
		}
	}
}

// WithTransformer registers a Transformer applied to the configuration
// before it is validated and compiled.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.transformers = append(o.transformers, t)
		}
	}
}

// WithoutConfigCheck skips FormConfig.Validate. Duplicate names then resolve
// last-write-wins in schemas and defaults.
func WithoutConfigCheck() Option {
	return func(o *Orchestrator) {
		o.skipCheck = true
	}
}

// Orchestrator is a form session over one configuration.
type Orchestrator struct {
	cfg          model.FormConfig
	mode         Mode
	editData     map[string]any
	logger       *slog.Logger
	registry     *widgets.Registry
	transformers []Transformer
	skipCheck    bool

	agg     *schema.Aggregator
	deriver *values.Deriver
}

// New validates cfg, applies transformers and builds the schemas and
// deriver.
func New(cfg model.FormConfig, options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		mode:     ModeCreate,
		logger:   slog.Default(),
		registry: widgets.Default,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}

	for _, t := range o.transformers {
		if err := t.Transform(&cfg); err != nil {
			return nil, fmt.Errorf("orchestrator: transform config: %w", err)
		}
	}
	if !o.skipCheck {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("orchestrator: invalid config: %w", err)
		}
	}

	agg, err := schema.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	o.cfg = cfg
	o.agg = agg
	o.deriver = values.New(agg, values.WithRegistry(o.registry), values.WithLogger(o.logger))
	return o, nil
}

func (o *Orchestrator) Mode() Mode                     { return o.mode }
func (o *Orchestrator) IsEditMode() bool               { return o.mode == ModeEdit }
func (o *Orchestrator) Config() model.FormConfig       { return o.cfg }
func (o *Orchestrator) Aggregator() *schema.Aggregator { return o.agg }
func (o *Orchestrator) Deriver() *values.Deriver       { return o.deriver }

func (o *Orchestrator) FormSchema() *schema.Schema {
	return o.agg.FormSchema()
}

func (o *Orchestrator) PageSchema(pageID string) (*schema.Schema, bool) {
	return o.agg.PageSchema(pageID)
}

func (o *Orchestrator) FieldRule(name string) (model.Rule, bool) {
	return o.agg.FieldRule(name)
}

func (o *Orchestrator) Field(name string) (model.Field, bool) {
	return o.agg.Field(name)
}

func (o *Orchestrator) Fields() []model.Field {
	return o.agg.Fields()
}

// InitialValues returns the edit merge in edit mode with data supplied, and
// the create-mode defaults otherwise.
func (o *Orchestrator) InitialValues() map[string]any {
	if o.editing() {
		return o.deriver.Edit(o.editData)
	}
	return o.deriver.Initial()
}

// PageValues is InitialValues for one page.
func (o *Orchestrator) PageValues(pageID string) map[string]any {
	if o.editing() {
		return o.deriver.PageEdit(pageID, o.editData)
	}
	return o.deriver.Page(pageID)
}

// FieldsWithDefaults returns every field with props.defaultValue set to its
// initial value; data, when non-nil, is merged over the defaults first.
func (o *Orchestrator) FieldsWithDefaults(data map[string]any) []model.Field {
	initial := o.valuesFor(data)
	fields := o.agg.Fields()
	for i, field := range fields {
		fields[i] = field.WithDefault(initial[field.Name])
	}
	return fields
}

// FieldWithDefault returns the named field with its initial value injected,
// using the session's edit data when present.
func (o *Orchestrator) FieldWithDefault(name string) (model.Field, bool) {
	field, ok := o.agg.Field(name)
	if !ok {
		return model.Field{}, false
	}
	return field.WithDefault(o.valuesFor(o.editData)[name]), true
}

// ConfigWithDefaults returns a copy of the configuration with every field's
// initial value injected, using the session's edit data when present.
func (o *Orchestrator) ConfigWithDefaults() model.FormConfig {
	initial := o.valuesFor(o.editData)
	return o.cfg.MapFields(func(field model.Field) model.Field {
		return field.WithDefault(initial[field.Name])
	})
}

// Validate checks values against every field not hidden by them.
func (o *Orchestrator) Validate(values map[string]any) validation.Result {
	return o.visibleSchema(o.agg.FormSchema(), o.cfg.Fields(), values).Validate(values)
}

// Parse validates the visible fields and returns the parsed submission.
func (o *Orchestrator) Parse(values map[string]any) (map[string]any, error) {
	return o.visibleSchema(o.agg.FormSchema(), o.cfg.Fields(), values).Parse(values)
}

// ValidatePage checks one page's visible fields.
func (o *Orchestrator) ValidatePage(pageID string, values map[string]any) (validation.Result, error) {
	page, ok := o.cfg.Page(pageID)
	if !ok {
		return validation.Result{}, fmt.Errorf("%w: %q", ErrUnknownPage, pageID)
	}
	pageSchema, _ := o.agg.PageSchema(pageID)
	return o.visibleSchema(pageSchema, page.AllFields(), values).Validate(values), nil
}

func (o *Orchestrator) visibleSchema(s *schema.Schema, fields []model.Field, values map[string]any) *schema.Schema {
	hidden := behavior.HiddenNames(fields, values)
	if len(hidden) == 0 {
		return s
	}
	return s.Omit(hidden...)
}

func (o *Orchestrator) editing() bool {
	return o.mode == ModeEdit && o.editData != nil
}

func (o *Orchestrator) valuesFor(data map[string]any) map[string]any {
	if data != nil {
		return o.deriver.Edit(data)
	}
	return o.deriver.Initial()
}
