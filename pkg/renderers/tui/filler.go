package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/behavior"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/widgets"
)

// Filler walks a form page by page on a terminal, prompting every visible
// field and re-prompting the ones that fail page validation.
type Filler struct {
	driver            PromptDriver
	fetcher           Fetcher
	registry          *widgets.Registry
	logger            *slog.Logger
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
}

// New constructs a filler with defaults (survey driver, JSON output, no
// lookup fetcher).
func New(options ...Option) *Filler {
	f := &Filler{
		registry:     widgets.Default,
		logger:       slog.Default(),
		outputFormat: OutputFormatJSON,
		maxAttempts:  DefaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

// Name reports the renderer identifier.
func (f *Filler) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (f *Filler) ContentType() string {
	switch f.outputFormat {
	case OutputFormatYAML:
		return "application/yaml"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render fills the form and serializes the parsed submission.
func (f *Filler) Render(ctx context.Context, orch *orchestrator.Orchestrator) ([]byte, error) {
	values, err := f.Fill(ctx, orch)
	if err != nil {
		return nil, err
	}
	return f.serialize(values)
}

// Fill prompts every page in order, starting from the orchestrator's initial
// values, and returns the parsed submission.
func (f *Filler) Fill(ctx context.Context, orch *orchestrator.Orchestrator) (map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if orch == nil {
		return nil, errors.New("tui: orchestrator is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := orch.Config()
	state := NewState(cfg, orch.InitialValues(), orch.Deriver().Initial())
	cache := make(map[string][]choice)

	for idx, page := range cfg.Pages {
		heading := fmt.Sprintf("%s[%d/%d] %s", f.theme.PageHeading, idx+1, len(cfg.Pages), page.Title)
		if err := f.driver.Info(ctx, heading); err != nil {
			return nil, err
		}
		if err := f.fillPage(ctx, orch, page, state, cache); err != nil {
			return nil, err
		}
	}

	parsed, err := orch.Parse(state.Values())
	if err != nil {
		return nil, fmt.Errorf("tui: submission: %w", err)
	}
	if f.submitTransformer != nil {
		parsed, err = f.submitTransformer(parsed)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return parsed, nil
}

func (f *Filler) fillPage(ctx context.Context, orch *orchestrator.Orchestrator, page model.Page, state *State, cache map[string][]choice) error {
	fields := page.AllFields()
	pending := fields
	for attempt := 1; ; attempt++ {
		for _, field := range pending {
			if err := f.promptField(ctx, field, state, cache); err != nil {
				return err
			}
		}

		result, err := orch.ValidatePage(page.ID, state.Values())
		if err != nil {
			return err
		}
		state.SetResult(result)
		if result.Valid {
			return nil
		}
		if attempt >= f.maxAttempts {
			return fmt.Errorf("%w: page %q: %w", ErrTooManyAttempts, page.ID, result.Err())
		}

		for _, issue := range result.Issues {
			label := issue.Field
			if field, ok := findField(fields, issue.Field); ok {
				label = displayLabel(field)
			}
			if err := f.driver.Info(ctx, fmt.Sprintf("%s%s: %s", f.theme.ErrorPrefix, label, issue.Message)); err != nil {
				return err
			}
		}
		pending = failing(fields, result)
	}
}

func (f *Filler) promptField(ctx context.Context, field model.Field, state *State, cache map[string][]choice) error {
	values := state.Values()
	if behavior.IsHidden(field, values) || behavior.IsDisabled(field, values) {
		return nil
	}

	answer, err := f.ask(ctx, field, state, cache)
	if errors.Is(err, ErrLookupNotReady) {
		f.logger.Debug("tui: lookup skipped", "field", field.Name, "error", err)
		return f.driver.Info(ctx, fmt.Sprintf("%s%s: no options available yet", f.theme.InfoPrefix, displayLabel(field)))
	}
	if err != nil {
		return err
	}

	if cleared := state.Set(field.Name, answer); len(cleared) > 0 {
		f.logger.Debug("tui: reset dependents", "field", field.Name, "cleared", cleared)
	}
	return nil
}

func (f *Filler) serialize(values map[string]any) ([]byte, error) {
	switch f.outputFormat {
	case OutputFormatYAML:
		out, err := yaml.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: encode yaml: %w", err)
		}
		return out, nil
	case OutputFormatPrettyText:
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		for _, key := range keys {
			encoded, err := json.Marshal(values[key])
			if err != nil {
				return nil, fmt.Errorf("tui: encode %s: %w", key, err)
			}
			fmt.Fprintf(&buf, "%s: %s\n", key, encoded)
		}
		return buf.Bytes(), nil
	default:
		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return append(out, '\n'), nil
	}
}

func failing(fields []model.Field, result validation.Result) []model.Field {
	byField := result.ByField()
	out := make([]model.Field, 0, len(byField))
	for _, field := range fields {
		if _, ok := byField[field.Name]; ok {
			out = append(out, field)
		}
	}
	return out
}

func findField(fields []model.Field, name string) (model.Field, bool) {
	idx := slices.IndexFunc(fields, func(field model.Field) bool { return field.Name == name })
	if idx < 0 {
		return model.Field{}, false
	}
	return fields[idx], true
}
