package model

import (
	"fmt"
	"maps"
	"slices"
)

// RuleType names the value kind a Rule accepts.
type RuleType string

const (
	TypeAny     RuleType = "any"
	TypeString  RuleType = "string"
	TypeNumber  RuleType = "number"
	TypeInteger RuleType = "integer"
	TypeBoolean RuleType = "boolean"
	TypeArray   RuleType = "array"
	TypeObject  RuleType = "object"
	TypeFile    RuleType = "file"
	TypeDate    RuleType = "date"
)

// Issue keywords used as keys of Rule.Messages. They mirror the JSON Schema
// keyword a rule compiles to, plus "required" for missing values.
const (
	KeywordRequired  = "required"
	KeywordType      = "type"
	KeywordMinLength = "minLength"
	KeywordMaxLength = "maxLength"
	KeywordMinimum   = "minimum"
	KeywordMaximum   = "maximum"
	KeywordMinItems  = "minItems"
	KeywordMaxItems  = "maxItems"
	KeywordPattern   = "pattern"
	KeywordFormat    = "format"
	KeywordEnum      = "enum"
)

const (
	FormatEmail = "email"
	FormatURL   = "url"
	FormatDate  = "date"
)

// Rule is the declarative validation rule attached to a field. The zero Rule
// is untyped and optional: it accepts anything, including a missing value.
//
// Unwrap names an object key to extract before checking, so a select value
// such as {"label": "Acme", "value": "L-01"} validates (and parses) as
// "L-01". Coerce converts strings to the rule's scalar type before checking.
type Rule struct {
	Type      RuleType          `json:"type,omitempty" yaml:"type,omitempty"`
	Optional  bool              `json:"optional,omitempty" yaml:"optional,omitempty"`
	Nullable  bool              `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Coerce    bool              `json:"coerce,omitempty" yaml:"coerce,omitempty"`
	MinLength *int              `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int              `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Minimum   *float64          `json:"min,omitempty" yaml:"min,omitempty"`
	Maximum   *float64          `json:"max,omitempty" yaml:"max,omitempty"`
	MinItems  *int              `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems  *int              `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	Pattern   string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Format    string            `json:"format,omitempty" yaml:"format,omitempty"`
	Enum      []any             `json:"enum,omitempty" yaml:"enum,omitempty"`
	Items     *Rule             `json:"items,omitempty" yaml:"items,omitempty"`
	Unwrap    string            `json:"unwrap,omitempty" yaml:"unwrap,omitempty"`
	Message   string            `json:"message,omitempty" yaml:"message,omitempty"`
	Messages  map[string]string `json:"messages,omitempty" yaml:"messages,omitempty"`
}

func String() Rule  { return Rule{Type: TypeString} }
func Number() Rule  { return Rule{Type: TypeNumber} }
func Integer() Rule { return Rule{Type: TypeInteger} }
func Boolean() Rule { return Rule{Type: TypeBoolean} }
func Object() Rule  { return Rule{Type: TypeObject} }
func File() Rule    { return Rule{Type: TypeFile} }
func Date() Rule    { return Rule{Type: TypeDate} }
func Any() Rule     { return Rule{Type: TypeAny} }

// Array accepts a list whose items satisfy items.
func Array(items Rule) Rule {
	return Rule{Type: TypeArray, Items: &items}
}

// IsOptional reports whether a missing value passes the rule. Nullable rules,
// and the untyped zero Rule, count as optional.
func (r Rule) IsOptional() bool {
	return r.Optional || r.Nullable || r.Type == ""
}

// EffectiveType resolves the untyped zero value to TypeAny.
func (r Rule) EffectiveType() RuleType {
	if r.Type == "" {
		return TypeAny
	}
	return r.Type
}

// MessageFor returns the message configured for keyword, falling back to the
// rule-wide Message.
func (r Rule) MessageFor(keyword string) string {
	if msg, ok := r.Messages[keyword]; ok && msg != "" {
		return msg
	}
	return r.Message
}

// AsOptional lets the value be absent.
func (r Rule) AsOptional() Rule {
	r.Optional = true
	return r
}

// AsNullable allows an explicit null value.
func (r Rule) AsNullable() Rule {
	r.Nullable = true
	return r
}

// Coerced converts string input to the rule's scalar type before checking.
func (r Rule) Coerced() Rule {
	r.Coerce = true
	return r
}

// WithMessage sets the rule-wide fallback message.
func (r Rule) WithMessage(msg string) Rule {
	r.Message = msg
	return r
}

// Min sets the lower bound: length for strings, item count for arrays and
// value for numbers.
func (r Rule) Min(n float64, msg ...string) Rule {
	switch r.Type {
	case TypeString, TypeDate:
		v := int(n)
		r.MinLength = &v
		return r.withKeywordMessage(KeywordMinLength, msg)
	case TypeArray:
		v := int(n)
		r.MinItems = &v
		return r.withKeywordMessage(KeywordMinItems, msg)
	default:
		r.Minimum = &n
		return r.withKeywordMessage(KeywordMinimum, msg)
	}
}

// Max sets the upper bound with the same dispatch as Min.
func (r Rule) Max(n float64, msg ...string) Rule {
	switch r.Type {
	case TypeString, TypeDate:
		v := int(n)
		r.MaxLength = &v
		return r.withKeywordMessage(KeywordMaxLength, msg)
	case TypeArray:
		v := int(n)
		r.MaxItems = &v
		return r.withKeywordMessage(KeywordMaxItems, msg)
	default:
		r.Maximum = &n
		return r.withKeywordMessage(KeywordMaximum, msg)
	}
}

func (r Rule) Email(msg ...string) Rule {
	r.Format = FormatEmail
	return r.withKeywordMessage(KeywordFormat, msg)
}

func (r Rule) URL(msg ...string) Rule {
	r.Format = FormatURL
	return r.withKeywordMessage(KeywordFormat, msg)
}

// Match requires the value to match the regular expression pattern.
func (r Rule) Match(pattern string, msg ...string) Rule {
	r.Pattern = pattern
	return r.withKeywordMessage(KeywordPattern, msg)
}

// OneOf restricts the value to the listed literals.
func (r Rule) OneOf(values ...any) Rule {
	r.Enum = append([]any(nil), values...)
	return r
}

// UnwrapKey extracts key from object values before checking.
func (r Rule) UnwrapKey(key string) Rule {
	r.Unwrap = key
	return r
}

// Required sets the message reported for a missing value.
func (r Rule) Required(msg string) Rule {
	return r.withKeywordMessage(KeywordRequired, []string{msg})
}

// TypeMessage sets the message reported for a value of the wrong kind.
func (r Rule) TypeMessage(msg string) Rule {
	return r.withKeywordMessage(KeywordType, []string{msg})
}

func (r Rule) withKeywordMessage(keyword string, msg []string) Rule {
	if len(msg) == 0 || msg[0] == "" {
		return r
	}
	messages := make(map[string]string, len(r.Messages)+1)
	maps.Copy(messages, r.Messages)
	messages[keyword] = msg[0]
	r.Messages = messages
	return r
}

// Check reports rule definitions that can never be satisfied or compiled.
func (r Rule) Check() error {
	switch r.EffectiveType() {
	case TypeAny, TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject, TypeFile, TypeDate:
	default:
		return fmt.Errorf("unknown rule type %q", r.Type)
	}
	switch r.Format {
	case "", FormatEmail, FormatURL, FormatDate:
	default:
		return fmt.Errorf("unknown format %q", r.Format)
	}
	if r.MinLength != nil && r.MaxLength != nil && *r.MinLength > *r.MaxLength {
		return fmt.Errorf("minLength %d exceeds maxLength %d", *r.MinLength, *r.MaxLength)
	}
	if r.Minimum != nil && r.Maximum != nil && *r.Minimum > *r.Maximum {
		return fmt.Errorf("min %v exceeds max %v", *r.Minimum, *r.Maximum)
	}
	if r.MinItems != nil && r.MaxItems != nil && *r.MinItems > *r.MaxItems {
		return fmt.Errorf("minItems %d exceeds maxItems %d", *r.MinItems, *r.MaxItems)
	}
	if r.Items != nil {
		if err := r.Items.Check(); err != nil {
			return fmt.Errorf("items: %w", err)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
