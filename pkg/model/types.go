package model

import (
	"maps"
	"net/url"
	"strings"

	"github.com/goliatone/go-formflow/pkg/visibility"
)

// PropDefaultValue is the props key holding an explicit field default.
const PropDefaultValue = "defaultValue"

// FormConfig is the top-level, immutable description of a multi-page form.
type FormConfig struct {
	ID                 string `json:"id,omitempty" yaml:"id,omitempty"`
	Title              string `json:"title,omitempty" yaml:"title,omitempty"`
	Pages              []Page `json:"pages" yaml:"pages"`
	SubmitButtonText   string `json:"submitButtonText,omitempty" yaml:"submitButtonText,omitempty"`
	PreviousButtonText string `json:"previousButtonText,omitempty" yaml:"previousButtonText,omitempty"`
	NextButtonText     string `json:"nextButtonText,omitempty" yaml:"nextButtonText,omitempty"`
}

// Page is one step of the form. Flat fields and sections may be combined;
// flat fields always come first.
type Page struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Fields      []Field   `json:"fields,omitempty" yaml:"fields,omitempty"`
	Sections    []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Section groups fields inside a page, typically rendered as a card.
type Section struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Field is a single input's full declarative description.
type Field struct {
	Name          string                `json:"name" yaml:"name"`
	Label         string                `json:"label,omitempty" yaml:"label,omitempty"`
	Description   string                `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder   string                `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Component     string                `json:"component" yaml:"component"`
	Type          string                `json:"type,omitempty" yaml:"type,omitempty"`
	Rule          Rule                  `json:"validation" yaml:"validation"`
	Row           int                   `json:"row,omitempty" yaml:"row,omitempty"`
	ColSpan       int                   `json:"colSpan,omitempty" yaml:"colSpan,omitempty"`
	Props         map[string]any        `json:"props,omitempty" yaml:"props,omitempty"`
	Attrs         map[string]any        `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Hidden        *visibility.Condition `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Disabled      *visibility.Condition `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	DependsOn     []string              `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	ClearOnChange *bool                 `json:"clearOnChange,omitempty" yaml:"clearOnChange,omitempty"`
	Cascade       *Cascade              `json:"cascade,omitempty" yaml:"cascade,omitempty"`
	Lookup        *Lookup               `json:"lookup,omitempty" yaml:"lookup,omitempty"`
}

// Cascade lists fields reset whenever this field's value changes.
type Cascade struct {
	ClearFields []string `json:"clearFields,omitempty" yaml:"clearFields,omitempty"`
}

// Lookup describes where an async choice component loads its options from.
// Params maps a query parameter to a value path, e.g.
// province_code -> province.code.
type Lookup struct {
	Endpoint    string            `json:"endpoint" yaml:"endpoint"`
	SearchParam string            `json:"searchParam,omitempty" yaml:"searchParam,omitempty"`
	Params      map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	LabelKey    string            `json:"labelKey,omitempty" yaml:"labelKey,omitempty"`
	ValueKey    string            `json:"valueKey,omitempty" yaml:"valueKey,omitempty"`
	MinChars    int               `json:"minChars,omitempty" yaml:"minChars,omitempty"`
}

// Option is a static choice offered by radio, select and checkbox components.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// Bool returns a pointer to v, handy for ClearOnChange literals.
func Bool(v bool) *bool {
	return &v
}

// Fields returns every field of the form: for each page, its flat fields
// followed by its sections' fields.
func (c FormConfig) Fields() []Field {
	var out []Field
	for _, page := range c.Pages {
		out = append(out, page.AllFields()...)
	}
	return out
}

// Page returns the page with the given id.
func (c FormConfig) Page(id string) (Page, bool) {
	for _, page := range c.Pages {
		if page.ID == id {
			return page, true
		}
	}
	return Page{}, false
}

// PageIDs lists page identifiers in declaration order.
func (c FormConfig) PageIDs() []string {
	out := make([]string, 0, len(c.Pages))
	for _, page := range c.Pages {
		out = append(out, page.ID)
	}
	return out
}

// MapFields returns a copy of the config where every field was passed
// through fn. Pages and sections keep their order.
func (c FormConfig) MapFields(fn func(Field) Field) FormConfig {
	out := c
	out.Pages = make([]Page, len(c.Pages))
	for i, page := range c.Pages {
		next := page
		if page.Fields != nil {
			next.Fields = make([]Field, len(page.Fields))
			for j, field := range page.Fields {
				next.Fields[j] = fn(field)
			}
		}
		if page.Sections != nil {
			next.Sections = make([]Section, len(page.Sections))
			for j, section := range page.Sections {
				copied := section
				copied.Fields = make([]Field, len(section.Fields))
				for k, field := range section.Fields {
					copied.Fields[k] = fn(field)
				}
				next.Sections[j] = copied
			}
		}
		out.Pages[i] = next
	}
	return out
}

// AllFields returns the page's flat fields followed by its sections' fields.
func (p Page) AllFields() []Field {
	out := make([]Field, 0, len(p.Fields))
	out = append(out, p.Fields...)
	for _, section := range p.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// ShouldClearOnChange reports whether the field resets when one of its
// dependencies changes. It defaults to true once dependsOn is set.
func (f Field) ShouldClearOnChange() bool {
	if f.ClearOnChange != nil {
		return *f.ClearOnChange
	}
	return len(f.DependsOn) > 0
}

// DefaultValue returns props.defaultValue. A present key wins even when its
// value is nil.
func (f Field) DefaultValue() (any, bool) {
	if f.Props == nil {
		return nil, false
	}
	value, ok := f.Props[PropDefaultValue]
	return value, ok
}

// WithDefault returns a copy of the field with props.defaultValue set.
// The receiver's props map is left untouched.
func (f Field) WithDefault(value any) Field {
	props := make(map[string]any, len(f.Props)+1)
	maps.Copy(props, f.Props)
	props[PropDefaultValue] = value
	f.Props = props
	return f
}

// Options returns the static choices from props.items or props.options.
func (f Field) Options() []Option {
	raw, ok := f.Props["items"]
	if !ok {
		raw = f.Props["options"]
	}
	items, ok := raw.([]any)
	if !ok {
		if typed, ok := raw.([]Option); ok {
			return append([]Option(nil), typed...)
		}
		return nil
	}

	out := make([]Option, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case map[string]any:
			label, _ := typed["label"].(string)
			out = append(out, Option{Label: label, Value: typed["value"]})
		case Option:
			out = append(out, typed)
		case string:
			out = append(out, Option{Label: typed, Value: typed})
		}
	}
	return out
}

// References lists every field name this field reads from: its conditions,
// dependsOn, lookup params and cascade targets.
func (f Field) References() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		name := visibility.RootField(path)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if f.Hidden != nil {
		for _, path := range f.Hidden.Fields() {
			add(path)
		}
	}
	if f.Disabled != nil {
		for _, path := range f.Disabled.Fields() {
			add(path)
		}
	}
	for _, dep := range f.DependsOn {
		add(dep)
	}
	if f.Lookup != nil {
		for _, key := range sortedKeys(f.Lookup.Params) {
			add(f.Lookup.Params[key])
		}
	}
	if f.Cascade != nil {
		for _, target := range f.Cascade.ClearFields {
			add(target)
		}
	}
	return out
}

// Query builds the lookup request parameters from the current values. The
// second result is false when a mapped value path is missing or empty, in
// which case the caller should not issue the request.
func (l Lookup) Query(values map[string]any, search string) (url.Values, bool) {
	query := url.Values{}
	for _, param := range sortedKeys(l.Params) {
		value, ok := visibility.Lookup(values, l.Params[param])
		if !ok || value == nil {
			return nil, false
		}
		str := strings.TrimSpace(stringify(value))
		if str == "" {
			return nil, false
		}
		query.Set(param, str)
	}
	if l.SearchParam != "" {
		if l.MinChars > 0 && len([]rune(strings.TrimSpace(search))) < l.MinChars {
			return nil, false
		}
		query.Set(l.SearchParam, search)
	}
	return query, true
}

// URL joins the endpoint with the encoded query.
func (l Lookup) URL(query url.Values) string {
	if len(query) == 0 {
		return l.Endpoint
	}
	sep := "?"
	if strings.Contains(l.Endpoint, "?") {
		sep = "&"
	}
	return l.Endpoint + sep + query.Encode()
}
