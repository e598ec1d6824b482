package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateField reports two fields sharing a name.
	ErrDuplicateField = errors.New("model: duplicate field name")
	// ErrDuplicatePage reports two pages sharing an id.
	ErrDuplicatePage = errors.New("model: duplicate page id")
	// ErrUnknownField reports a condition, dependency, lookup or cascade
	// reference to a field that does not exist.
	ErrUnknownField = errors.New("model: unknown field reference")
	// ErrInvalidLayout reports a column span outside 1..12 or a negative row.
	ErrInvalidLayout = errors.New("model: invalid layout")
	// ErrInvalidField reports a field that is structurally unusable.
	ErrInvalidField = errors.New("model: invalid field")
)

const (
	MinColSpan = 1
	MaxColSpan = 12
)

// Validate checks the configuration ahead of time. Every problem found is
// reported; the returned error joins them and each one matches its sentinel
// with errors.Is.
func (c FormConfig) Validate() error {
	var errs []error

	pages := make(map[string]struct{}, len(c.Pages))
	for idx, page := range c.Pages {
		if strings.TrimSpace(page.ID) == "" {
			errs = append(errs, fmt.Errorf("%w: page %d has no id", ErrInvalidField, idx))
			continue
		}
		if _, ok := pages[page.ID]; ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicatePage, page.ID))
		}
		pages[page.ID] = struct{}{}
	}

	fields := c.Fields()
	names := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field.Name) == "" {
			errs = append(errs, fmt.Errorf("%w: field with label %q has no name", ErrInvalidField, field.Label))
			continue
		}
		if _, ok := names[field.Name]; ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateField, field.Name))
		}
		names[field.Name] = struct{}{}
	}

	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		errs = append(errs, checkField(field, names)...)
	}

	return errors.Join(errs...)
}

func checkField(field Field, names map[string]struct{}) []error {
	var errs []error

	if field.ColSpan != 0 && (field.ColSpan < MinColSpan || field.ColSpan > MaxColSpan) {
		errs = append(errs, fmt.Errorf("%w: field %q colSpan %d outside %d..%d", ErrInvalidLayout, field.Name, field.ColSpan, MinColSpan, MaxColSpan))
	}
	if field.Row < 0 {
		errs = append(errs, fmt.Errorf("%w: field %q row %d is negative", ErrInvalidLayout, field.Name, field.Row))
	}
	if err := field.Rule.Check(); err != nil {
		errs = append(errs, fmt.Errorf("%w: field %q validation: %v", ErrInvalidField, field.Name, err))
	}

	if field.Hidden != nil {
		if err := field.Hidden.Check(); err != nil {
			errs = append(errs, fmt.Errorf("%w: field %q hidden: %w", ErrInvalidField, field.Name, err))
		}
	}
	if field.Disabled != nil {
		if err := field.Disabled.Check(); err != nil {
			errs = append(errs, fmt.Errorf("%w: field %q disabled: %w", ErrInvalidField, field.Name, err))
		}
	}
	if field.Lookup != nil && strings.TrimSpace(field.Lookup.Endpoint) == "" {
		errs = append(errs, fmt.Errorf("%w: field %q lookup has no endpoint", ErrInvalidField, field.Name))
	}

	for _, dep := range field.DependsOn {
		if dep == field.Name {
			errs = append(errs, fmt.Errorf("%w: field %q depends on itself", ErrInvalidField, field.Name))
		}
	}
	for _, ref := range field.References() {
		if _, ok := names[ref]; !ok {
			errs = append(errs, fmt.Errorf("%w: field %q references %q", ErrUnknownField, field.Name, ref))
		}
	}
	return errs
}
