package tui

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/behavior"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/widgets"
)

// NoneLabel is the first option offered by selects whose value may be left
// empty.
const NoneLabel = "(none)"

type choice struct {
	label string
	value any
}

func (f *Filler) ask(ctx context.Context, field model.Field, state *State, cache map[string][]choice) (any, error) {
	current, _ := state.Value(field.Name)
	if field.Lookup != nil && f.fetcher != nil {
		return f.askLookup(ctx, field, state, cache)
	}

	kind := f.registry.KindOf(field)
	switch {
	case kind == widgets.KindMulti:
		choices := staticChoices(field)
		if len(choices) == 0 {
			return f.askBool(ctx, field, current)
		}
		return f.askMulti(ctx, field, choices, current)
	case kind == widgets.KindChoice:
		return f.askChoice(ctx, field, staticChoices(field), current)
	case field.Rule.EffectiveType() == model.TypeBoolean:
		return f.askBool(ctx, field, current)
	case kind == widgets.KindNumber:
		return f.askNumber(ctx, field, current)
	default:
		return f.askText(ctx, field, current)
	}
}

func (f *Filler) askChoice(ctx context.Context, field model.Field, choices []choice, current any) (any, error) {
	if len(choices) == 0 {
		return f.askText(ctx, field, current)
	}

	offset := 0
	options := make([]string, 0, len(choices)+1)
	if field.Rule.IsOptional() {
		options = append(options, NoneLabel)
		offset = 1
	}
	selected := -1
	for i, c := range choices {
		options = append(options, c.label)
		if selected < 0 && current != nil && behavior.Equal(c.value, current) {
			selected = i + offset
		}
	}

	idx, err := f.driver.Select(ctx, SelectConfig{
		Message:  displayLabel(field),
		Options:  options,
		Selected: selected,
		Help:     displayHelp(field),
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(options) {
		return nil, fmt.Errorf("tui: %s: selection %d out of range", field.Name, idx)
	}
	if idx < offset {
		return nil, nil
	}
	return choices[idx-offset].value, nil
}

func (f *Filler) askMulti(ctx context.Context, field model.Field, choices []choice, current any) (any, error) {
	options := make([]string, len(choices))
	var defaults []int
	selected, _ := current.([]any)
	for i, c := range choices {
		options[i] = c.label
		for _, value := range selected {
			if behavior.Equal(c.value, value) {
				defaults = append(defaults, i)
				break
			}
		}
	}

	indices, err := f.driver.MultiSelect(ctx, SelectConfig{
		Message: displayLabel(field),
		Options: options,
		Checked: defaults,
		Help:    displayHelp(field),
	})
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(choices) {
			return nil, fmt.Errorf("tui: %s: selection %d out of range", field.Name, idx)
		}
		out = append(out, choices[idx].value)
	}
	return out, nil
}

func (f *Filler) askBool(ctx context.Context, field model.Field, current any) (any, error) {
	def, _ := current.(bool)
	return f.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(field),
		Default: def,
		Help:    displayHelp(field),
	})
}

func (f *Filler) askNumber(ctx context.Context, field model.Field, current any) (any, error) {
	response, err := f.driver.Input(ctx, InputConfig{
		Message: displayLabel(field),
		Default: stringValue(current),
		Help:    displayHelp(field),
		Validator: func(raw string) error {
			if strings.TrimSpace(raw) == "" {
				return nil
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
				return errors.New("enter a number")
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		// The rule reports the type mismatch.
		return trimmed, nil
	}
	return n, nil
}

func (f *Filler) askText(ctx context.Context, field model.Field, current any) (any, error) {
	cfg := InputConfig{
		Message: displayLabel(field),
		Default: stringValue(current),
		Help:    displayHelp(field),
	}

	var (
		response string
		err      error
	)
	switch {
	case strings.EqualFold(field.Component, widgets.ComponentTextarea):
		response, err = f.driver.TextArea(ctx, TextAreaConfig{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help})
	case strings.EqualFold(field.Type, "password"):
		response, err = f.driver.Password(ctx, cfg)
	default:
		response, err = f.driver.Input(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		if field.Rule.IsOptional() {
			return nil, nil
		}
		return "", nil
	}
	if field.Rule.EffectiveType() == model.TypeFile {
		return map[string]any{"name": filepath.Base(trimmed), "path": trimmed}, nil
	}
	return response, nil
}

func (f *Filler) askLookup(ctx context.Context, field model.Field, state *State, cache map[string][]choice) (any, error) {
	lk := *field.Lookup
	current, _ := state.Value(field.Name)

	var search string
	if lk.SearchParam != "" {
		var err error
		search, err = f.driver.Input(ctx, InputConfig{
			Message: displayLabel(field),
			Help:    displayHelp(field),
			Validator: func(raw string) error {
				if lk.MinChars > 0 && len([]rune(strings.TrimSpace(raw))) < lk.MinChars {
					return fmt.Errorf("enter at least %d characters", lk.MinChars)
				}
				return nil
			},
		})
		if err != nil {
			return nil, err
		}
	}

	query, ok := lk.Query(state.Values(), search)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLookupNotReady, field.Name)
	}
	key := lk.Endpoint + "?" + query.Encode()
	choices, cached := cache[key]
	if !cached {
		items, err := f.fetcher.Fetch(ctx, lk.Endpoint, query)
		if err != nil {
			return nil, err
		}
		choices = lookupChoices(lk, items)
		cache[key] = choices
	}
	if len(choices) == 0 {
		if err := f.driver.Info(ctx, fmt.Sprintf("%s%s: no matches", f.theme.InfoPrefix, displayLabel(field))); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return f.askChoice(ctx, field, choices, current)
}

func staticChoices(field model.Field) []choice {
	options := field.Options()
	out := make([]choice, 0, len(options))
	for _, option := range options {
		label := option.Label
		if label == "" {
			label = stringValue(option.Value)
		}
		out = append(out, choice{label: label, value: option.Value})
	}
	if len(out) == 0 {
		for _, value := range field.Rule.Enum {
			out = append(out, choice{label: stringValue(value), value: value})
		}
	}
	return out
}

// lookupChoices keeps each item whole so value paths such as province.code
// resolve, adding label and value keys for components that expect them.
func lookupChoices(lk model.Lookup, items []map[string]any) []choice {
	labelKey := firstNonEmpty(lk.LabelKey, "label")
	valueKey := firstNonEmpty(lk.ValueKey, "value")
	out := make([]choice, 0, len(items))
	for _, item := range items {
		value := make(map[string]any, len(item)+2)
		maps.Copy(value, item)
		label := stringValue(item[labelKey])
		if _, ok := value["label"]; !ok {
			value["label"] = label
		}
		if _, ok := value["value"]; !ok {
			value["value"] = item[valueKey]
		}
		out = append(out, choice{label: label, value: value})
	}
	return out
}

func displayLabel(field model.Field) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	return field.Name
}

func displayHelp(field model.Field) string {
	if desc := strings.TrimSpace(field.Description); desc != "" {
		return desc
	}
	if placeholder := strings.TrimSpace(field.Placeholder); placeholder != "" {
		return placeholder
	}
	placeholder, _ := field.Props["placeholder"].(string)
	return placeholder
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
		if label, ok := v["label"].(string); ok {
			return label
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
