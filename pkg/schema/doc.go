// Package schema aggregates per-field validation rules into name-keyed
// schemas for a whole form or a single page.
//
// The Aggregator keys exclusively by field name. When handed a configuration
// that was not run through model.FormConfig.Validate, a name declared twice
// resolves to the later field's rule while keeping the position of its first
// declaration.
package schema
