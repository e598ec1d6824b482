// Package behavior evaluates the declarative field hooks against current form
// values: hidden and disabled conditions, and the clear-on-change plan that
// follows a dependency update.
package behavior

import (
	"maps"
	"reflect"
	"slices"
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formflow/pkg/model"
)

// compareOpts treats nil and empty collections alike and tolerates structs
// with unexported fields in caller values.
var compareOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// Equal reports whether two form values are the same for change detection.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, compareOpts...)
}

// IsHidden reports whether field's hidden condition holds for values.
func IsHidden(field model.Field, values map[string]any) bool {
	return field.Hidden != nil && field.Hidden.Evaluate(values)
}

// IsDisabled reports whether field's disabled condition holds for values.
func IsDisabled(field model.Field, values map[string]any) bool {
	return field.Disabled != nil && field.Disabled.Evaluate(values)
}

// Hidden returns the names of every hidden field of cfg.
func Hidden(cfg model.FormConfig, values map[string]any) map[string]bool {
	out := make(map[string]bool)
	for _, field := range cfg.Fields() {
		if IsHidden(field, values) {
			out[field.Name] = true
		}
	}
	return out
}

// Disabled returns the names of the disabled fields among fields.
func Disabled(fields []model.Field, values map[string]any) map[string]bool {
	out := make(map[string]bool)
	for _, field := range fields {
		if IsDisabled(field, values) {
			out[field.Name] = true
		}
	}
	return out
}

// Visible filters fields down to those not hidden, keeping order.
func Visible(fields []model.Field, values map[string]any) []model.Field {
	out := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		if !IsHidden(field, values) {
			out = append(out, field)
		}
	}
	return out
}

// HiddenNames lists the hidden fields among fields, in order.
func HiddenNames(fields []model.Field, values map[string]any) []string {
	var out []string
	for _, field := range fields {
		if IsHidden(field, values) {
			out = append(out, field.Name)
		}
	}
	return out
}

// Dependents lists the fields that declare name in dependsOn.
func Dependents(cfg model.FormConfig, name string) []string {
	var out []string
	for _, field := range cfg.Fields() {
		if slices.Contains(field.DependsOn, name) && !slices.Contains(out, field.Name) {
			out = append(out, field.Name)
		}
	}
	return out
}

// Changed returns the sorted keys whose values differ between prev and next.
// Keys present on one side only count as changed.
func Changed(prev, next map[string]any) []string {
	var out []string
	for key, before := range prev {
		after, ok := next[key]
		if !ok || !Equal(before, after) {
			out = append(out, key)
		}
	}
	for key := range next {
		if _, ok := prev[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Reset applies the clear-on-change plan for the changed fields and returns
// the updated values along with the fields that were actually reset, in
// reset order.
//
// A field is reset to its entry in defaults when it lists a changed field in
// dependsOn and clears on change, or when a changed field names it in
// cascade.clearFields. Resets propagate: a reset field that changed value
// counts as changed itself. Fields in the original changed set are never
// reset. values is not modified.
func Reset(cfg model.FormConfig, values map[string]any, changed []string, defaults map[string]any) (map[string]any, []string) {
	out := make(map[string]any, len(values))
	maps.Copy(out, values)

	fields := cfg.Fields()
	byName := make(map[string]model.Field, len(fields))
	for _, field := range fields {
		byName[field.Name] = field
	}

	protected := make(map[string]struct{}, len(changed))
	for _, name := range changed {
		protected[name] = struct{}{}
	}

	var cleared []string
	done := make(map[string]struct{})
	queue := append([]string(nil), changed...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		for _, target := range targets(fields, byName, name) {
			if _, ok := protected[target]; ok {
				continue
			}
			if _, ok := done[target]; ok {
				continue
			}
			done[target] = struct{}{}

			next := cloneValue(defaults[target])
			before, had := out[target]
			out[target] = next
			if had && Equal(before, next) {
				continue
			}
			cleared = append(cleared, target)
			queue = append(queue, target)
		}
	}
	return out, cleared
}

func targets(fields []model.Field, byName map[string]model.Field, name string) []string {
	var out []string
	for _, field := range fields {
		if field.ShouldClearOnChange() && slices.Contains(field.DependsOn, name) && !slices.Contains(out, field.Name) {
			out = append(out, field.Name)
		}
	}
	if source, ok := byName[name]; ok && source.Cascade != nil {
		for _, target := range source.Cascade.ClearFields {
			if !slices.Contains(out, target) {
				out = append(out, target)
			}
		}
	}
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
