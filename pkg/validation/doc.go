// Package validation checks form values against model.Rule definitions.
//
// Each rule is compiled once into a Draft 2020-12 JSON Schema (formats are
// asserted) and evaluated with santhosh-tekuri/jsonschema. Presence, coercion
// and unwrapping are handled before the schema runs, so a failing value
// yields structured Issues rather than an error string.
package validation
