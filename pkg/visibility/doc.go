// Package visibility models field conditions as small declarative trees.
//
// A Condition is a tagged node (eq, neq, in, contains, empty, truthy, and, or,
// not, ...) evaluated against the current form values. Conditions serialise to
// JSON and YAML either as explicit nodes:
//
//	hidden:
//	  op: neq
//	  field: employment_type
//	  value: employed
//
// or as a string shorthand that parses into the same nodes:
//
//	hidden: 'employment_type != "employed"'
//
// Values are looked up by dot path (`province.code`), preferring an exact key
// match first. The `extras.` prefix reads from Context.Extras so callers can
// inject roles or feature flags without mixing them into form values.
package visibility
