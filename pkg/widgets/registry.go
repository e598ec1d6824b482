package widgets

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Kind groups UI components by how their empty value is represented.
type Kind string

const (
	// KindMulti components hold a collection (checkbox groups).
	KindMulti Kind = "multi"
	// KindChoice components hold a single selected option.
	KindChoice Kind = "choice"
	// KindPicker components hold a file or date chosen through a picker.
	KindPicker Kind = "picker"
	// KindNumber covers numeric inputs.
	KindNumber Kind = "number"
	// KindText is the fallback for everything else.
	KindText Kind = "text"
)

// PropKind is the props key that pins a field to a kind explicitly.
const PropKind = "kind"

// Component tags recognised by the built-in matchers.
const (
	ComponentCheckboxGroup = "UCheckboxGroup"
	ComponentCheckbox      = "UCheckbox"
	ComponentRadioGroup    = "URadioGroup"
	ComponentSelect        = "USelect"
	ComponentAsyncSelect   = "UAsyncSelect"
	ComponentSelectMenu    = "USelectMenu"
	ComponentFileInput     = "UFileInput"
	ComponentFileUpload    = "UFileUpload"
	ComponentCalendar      = "UCalendar"
	ComponentDatePicker    = "UDatePicker"
	ComponentInput         = "UInput"
	ComponentTextarea      = "UTextarea"
	ComponentAddress       = "UAddress"
)

// Matcher decides whether a kind applies to the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	kind     Kind
	priority int
	match    Matcher
	order    int
}

// Registry resolves fields to kinds based on an explicit props hint or
// registered matchers. Higher priority wins; ties fall back to registration
// order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Default is the shared registry with built-ins only.
var Default = NewRegistry()

// Register adds a matcher for kind with the provided priority.
func (r *Registry) Register(kind Kind, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	if strings.TrimSpace(string(kind)) == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		kind:     kind,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// RegisterComponents maps component tags to kind.
func (r *Registry) RegisterComponents(kind Kind, priority int, components ...string) {
	tags := append([]string(nil), components...)
	r.Register(kind, priority, func(field model.Field) bool {
		return slices.Contains(tags, strings.TrimSpace(field.Component))
	})
}

// Resolve returns the kind matched for field. props.kind is honoured before
// matcher evaluation.
func (r *Registry) Resolve(field model.Field) (Kind, bool) {
	if explicit := explicitKind(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.kind, true
		}
	}
	return "", false
}

// KindOf is Resolve with KindText as the fallback.
func (r *Registry) KindOf(field model.Field) Kind {
	if kind, ok := r.Resolve(field); ok {
		return kind
	}
	return KindText
}

func explicitKind(field model.Field) Kind {
	raw, ok := field.Props[PropKind].(string)
	if !ok {
		return ""
	}
	switch kind := Kind(strings.TrimSpace(strings.ToLower(raw))); kind {
	case KindMulti, KindChoice, KindPicker, KindNumber, KindText:
		return kind
	}
	return ""
}

func (r *Registry) registerBuiltins() {
	r.RegisterComponents(KindMulti, 100, ComponentCheckboxGroup, ComponentCheckbox)
	r.RegisterComponents(KindChoice, 90, ComponentRadioGroup, ComponentSelect, ComponentAsyncSelect, ComponentSelectMenu)
	r.RegisterComponents(KindPicker, 80, ComponentFileInput, ComponentFileUpload, ComponentCalendar, ComponentDatePicker)

	r.Register(KindNumber, 10, func(field model.Field) bool {
		return strings.EqualFold(strings.TrimSpace(field.Type), "number")
	})
}
