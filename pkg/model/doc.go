// Package model defines the declarative form configuration: pages made of
// flat fields and/or sections, fields carrying a validation Rule, a UI
// component tag, layout hints and behavior hooks (hidden/disabled conditions,
// dependsOn, clearOnChange, cascade and async lookup settings).
//
// Field names are the join key for schemas and values and must be unique
// across the whole configuration; FormConfig.Validate reports collisions,
// dangling dependency references and out-of-range column spans before a form
// is put into service.
package model
