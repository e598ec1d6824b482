// Package formflow is the entry point for declarative multi-page forms. It
// re-exports the types callers touch most and wraps the loader and the
// orchestrator for the common paths.
package formflow

import (
	"io/fs"

	"github.com/goliatone/go-formflow/pkg/loader"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// FormConfig describes a multi-page form.
type FormConfig = model.FormConfig

// Field is one input of a form.
type Field = model.Field

// Rule is the declarative validation attached to a field.
type Rule = model.Rule

// Orchestrator is a form session over one configuration.
type Orchestrator = orchestrator.Orchestrator

// Option customises an Orchestrator.
type Option = orchestrator.Option

// Result is the outcome of validating a submission.
type Result = validation.Result

// New builds a form session for cfg.
func New(cfg FormConfig, options ...Option) (*Orchestrator, error) {
	return orchestrator.New(cfg, options...)
}

// Edit builds a form session in edit mode, merging data over the defaults.
func Edit(cfg FormConfig, data map[string]any, options ...Option) (*Orchestrator, error) {
	options = append([]Option{orchestrator.WithMode(orchestrator.ModeEdit), orchestrator.WithEditData(data)}, options...)
	return orchestrator.New(cfg, options...)
}

// LoadForms parses every form document in fsys.
func LoadForms(fsys fs.FS) (*loader.Store, error) {
	return loader.LoadFS(fsys)
}

// BundledForms returns the forms shipped with the module.
func BundledForms() (*loader.Store, error) {
	return loader.Bundled()
}
