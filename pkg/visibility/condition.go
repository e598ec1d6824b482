package visibility

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Op identifies the node kind of a Condition.
type Op string

const (
	OpEq          Op = "eq"
	OpNeq         Op = "neq"
	OpIn          Op = "in"
	OpNotIn       Op = "notIn"
	OpContains    Op = "contains"
	OpNotContains Op = "notContains"
	OpEmpty       Op = "empty"
	OpNotEmpty    Op = "notEmpty"
	OpTruthy      Op = "truthy"
	OpAnd         Op = "and"
	OpOr          Op = "or"
	OpNot         Op = "not"
)

// ErrInvalidCondition marks structurally invalid condition trees.
var ErrInvalidCondition = errors.New("visibility: invalid condition")

// Condition is a declarative predicate over form values. Leaf nodes compare
// the value at Field against Value/Values; composite nodes combine children.
type Condition struct {
	Op         Op          `json:"op" yaml:"op"`
	Field      string      `json:"field,omitempty" yaml:"field,omitempty"`
	Value      any         `json:"value,omitempty" yaml:"value,omitempty"`
	Values     []any       `json:"values,omitempty" yaml:"values,omitempty"`
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Context carries the inputs a condition is evaluated against.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

func Eq(field string, value any) Condition {
	return Condition{Op: OpEq, Field: field, Value: value}
}

func Neq(field string, value any) Condition {
	return Condition{Op: OpNeq, Field: field, Value: value}
}

func In(field string, values ...any) Condition {
	return Condition{Op: OpIn, Field: field, Values: values}
}

func NotIn(field string, values ...any) Condition {
	return Condition{Op: OpNotIn, Field: field, Values: values}
}

func Contains(field string, value any) Condition {
	return Condition{Op: OpContains, Field: field, Value: value}
}

func NotContains(field string, value any) Condition {
	return Condition{Op: OpNotContains, Field: field, Value: value}
}

func Empty(field string) Condition {
	return Condition{Op: OpEmpty, Field: field}
}

func NotEmpty(field string) Condition {
	return Condition{Op: OpNotEmpty, Field: field}
}

func Truthy(field string) Condition {
	return Condition{Op: OpTruthy, Field: field}
}

func And(conditions ...Condition) Condition {
	return Condition{Op: OpAnd, Conditions: conditions}
}

func Or(conditions ...Condition) Condition {
	return Condition{Op: OpOr, Conditions: conditions}
}

func Not(condition Condition) Condition {
	return Condition{Op: OpNot, Conditions: []Condition{condition}}
}

// Evaluate reports whether the condition holds for values.
func (c Condition) Evaluate(values map[string]any) bool {
	return c.EvaluateContext(Context{Values: values})
}

// EvaluateContext evaluates the condition with access to Context.Extras.
// Structurally invalid nodes evaluate to false; run Check ahead of time to
// surface them as errors.
func (c Condition) EvaluateContext(ctx Context) bool {
	switch c.Op {
	case OpAnd:
		for _, child := range c.Conditions {
			if !child.EvaluateContext(ctx) {
				return false
			}
		}
		return true
	case OpOr:
		for _, child := range c.Conditions {
			if child.EvaluateContext(ctx) {
				return true
			}
		}
		return false
	case OpNot:
		if len(c.Conditions) != 1 {
			return false
		}
		return !c.Conditions[0].EvaluateContext(ctx)
	}

	got, _ := lookup(ctx, c.Field)
	switch c.Op {
	case OpEq:
		return equal(got, c.Value)
	case OpNeq:
		return !equal(got, c.Value)
	case OpIn:
		return anyEqual(got, c.Values)
	case OpNotIn:
		return !anyEqual(got, c.Values)
	case OpContains:
		return contains(got, c.Value)
	case OpNotContains:
		return !contains(got, c.Value)
	case OpEmpty:
		return isEmpty(got)
	case OpNotEmpty:
		return !isEmpty(got)
	case OpTruthy:
		return truthy(got)
	default:
		return false
	}
}

// Check validates the structure of the condition tree.
func (c Condition) Check() error {
	switch c.Op {
	case OpAnd, OpOr:
		if len(c.Conditions) == 0 {
			return fmt.Errorf("%w: %q requires at least one condition", ErrInvalidCondition, c.Op)
		}
		for idx, child := range c.Conditions {
			if err := child.Check(); err != nil {
				return fmt.Errorf("%s[%d]: %w", c.Op, idx, err)
			}
		}
		return nil
	case OpNot:
		if len(c.Conditions) != 1 {
			return fmt.Errorf("%w: %q requires exactly one condition", ErrInvalidCondition, c.Op)
		}
		return c.Conditions[0].Check()
	case OpEq, OpNeq, OpContains, OpNotContains, OpEmpty, OpNotEmpty, OpTruthy:
		if strings.TrimSpace(c.Field) == "" {
			return fmt.Errorf("%w: %q requires a field", ErrInvalidCondition, c.Op)
		}
		return nil
	case OpIn, OpNotIn:
		if strings.TrimSpace(c.Field) == "" {
			return fmt.Errorf("%w: %q requires a field", ErrInvalidCondition, c.Op)
		}
		if len(c.Values) == 0 {
			return fmt.Errorf("%w: %q requires values", ErrInvalidCondition, c.Op)
		}
		return nil
	case "":
		return fmt.Errorf("%w: missing op", ErrInvalidCondition)
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidCondition, c.Op)
	}
}

// Fields lists the value paths referenced by the condition, in first-seen
// order. Paths under the `extras.` prefix are not form fields and are skipped.
func (c Condition) Fields() []string {
	seen := make(map[string]struct{})
	var out []string
	var walk func(Condition)
	walk = func(node Condition) {
		if field := strings.TrimSpace(node.Field); field != "" && !isExtrasPath(field) {
			if _, ok := seen[field]; !ok {
				seen[field] = struct{}{}
				out = append(out, field)
			}
		}
		for _, child := range node.Conditions {
			walk(child)
		}
	}
	walk(c)
	return out
}

// RootField returns the first segment of a dotted value path, i.e. the form
// field a path such as "province.code" reads from.
func RootField(path string) string {
	path = strings.TrimSpace(path)
	if idx := strings.IndexByte(path, '.'); idx >= 0 {
		return path[:idx]
	}
	return path
}

// UnmarshalJSON accepts either an explicit node object or a string shorthand.
func (c *Condition) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var expr string
		if err := json.Unmarshal(trimmed, &expr); err != nil {
			return err
		}
		parsed, err := Parse(expr)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	type plain Condition
	var raw plain
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	*c = Condition(raw)
	return nil
}

// UnmarshalYAML accepts either an explicit node mapping or a scalar shorthand.
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var expr string
		if err := node.Decode(&expr); err != nil {
			return err
		}
		parsed, err := Parse(expr)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	type plain Condition
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*c = Condition(raw)
	return nil
}

// String renders the condition in the shorthand accepted by Parse.
func (c Condition) String() string {
	switch c.Op {
	case OpAnd, OpOr:
		sep := " && "
		if c.Op == OpOr {
			sep = " || "
		}
		parts := make([]string, 0, len(c.Conditions))
		for _, child := range c.Conditions {
			parts = append(parts, child.groupedString())
		}
		return strings.Join(parts, sep)
	case OpNot:
		if len(c.Conditions) != 1 {
			return "!()"
		}
		return "!" + c.Conditions[0].groupedString()
	case OpEq:
		return c.Field + " == " + formatLiteral(c.Value)
	case OpNeq:
		return c.Field + " != " + formatLiteral(c.Value)
	case OpContains:
		return c.Field + " contains " + formatLiteral(c.Value)
	case OpNotContains:
		return "!(" + c.Field + " contains " + formatLiteral(c.Value) + ")"
	case OpIn, OpNotIn:
		items := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			items = append(items, formatLiteral(v))
		}
		expr := c.Field + " in [" + strings.Join(items, ", ") + "]"
		if c.Op == OpNotIn {
			return "!(" + expr + ")"
		}
		return expr
	case OpEmpty:
		return c.Field + " is empty"
	case OpNotEmpty:
		return c.Field + " is not empty"
	case OpTruthy:
		return c.Field
	default:
		return string(c.Op)
	}
}

func (c Condition) groupedString() string {
	switch c.Op {
	case OpAnd, OpOr:
		return "(" + c.String() + ")"
	default:
		return c.String()
	}
}

func formatLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		out, _ := json.Marshal(v)
		return string(out)
	default:
		return fmt.Sprint(v)
	}
}
