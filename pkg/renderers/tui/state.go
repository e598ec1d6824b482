package tui

import (
	"maps"

	"github.com/goliatone/go-formflow/pkg/behavior"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// State tracks the collected values of a fill session and the issues from
// the latest page validation, keyed by field name.
type State struct {
	cfg      model.FormConfig
	defaults map[string]any
	values   map[string]any
	issues   map[string][]validation.Issue
}

// NewState seeds the state with initial values. defaults are the values a
// field returns to when one of its dependencies changes.
func NewState(cfg model.FormConfig, initial, defaults map[string]any) *State {
	values := make(map[string]any, len(initial))
	maps.Copy(values, initial)
	return &State{
		cfg:      cfg,
		defaults: defaults,
		values:   values,
		issues:   make(map[string][]validation.Issue),
	}
}

// Values returns a copy of the current values.
func (s *State) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	maps.Copy(out, s.values)
	return out
}

// Value returns the current value of name.
func (s *State) Value(name string) (any, bool) {
	value, ok := s.values[name]
	return value, ok
}

// Set records an answer and applies the clear-on-change plan, returning the
// fields that were reset as a consequence.
func (s *State) Set(name string, value any) []string {
	next := s.Values()
	next[name] = value
	changed := behavior.Changed(s.values, next)
	if len(changed) == 0 {
		return nil
	}
	updated, cleared := behavior.Reset(s.cfg, next, changed, s.defaults)
	s.values = updated
	return cleared
}

// SetResult replaces the recorded issues with the ones in result.
func (s *State) SetResult(result validation.Result) {
	s.issues = result.ByField()
}

// IssuesFor returns the issues recorded for name.
func (s *State) IssuesFor(name string) []validation.Issue {
	return s.issues[name]
}
