// Package values derives initial form values from a configuration: explicit
// props.defaultValue first, then a fallback chosen by the field's component
// kind. Edit flows merge caller-supplied record data on top, key by key.
package values
