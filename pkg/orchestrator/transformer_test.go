package orchestrator_test

import (
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

const presetJSON = `{
  "submitButtonText": "Send",
  "nextButtonText": "Continue",
  "pages": {"extra": {"title": "More about you"}},
  "fields": {
    "full_name": {"label": "Name", "placeholder": "Jane Doe"},
    "skills": {"props": {"orientation": "vertical"}}
  }
}`

func TestJSONPresetTransformer(t *testing.T) {
	t.Parallel()

	transformer, err := orchestrator.NewJSONPresetTransformer([]byte(presetJSON))
	if err != nil {
		t.Fatalf("NewJSONPresetTransformer: %v", err)
	}

	cfg := testsupport.SampleForm()
	if err := transformer.Transform(&cfg); err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if cfg.SubmitButtonText != "Send" || cfg.NextButtonText != "Continue" {
		t.Fatalf("unexpected button text %+v", cfg)
	}
	if cfg.PreviousButtonText != "" {
		t.Fatalf("expected empty patch to leave previous text, got %q", cfg.PreviousButtonText)
	}
	page, _ := cfg.Page("extra")
	if page.Title != "More about you" {
		t.Fatalf("unexpected page title %q", page.Title)
	}

	byName := make(map[string]model.Field)
	for _, field := range cfg.Fields() {
		byName[field.Name] = field
	}
	if got := byName["full_name"]; got.Label != "Name" || got.Placeholder != "Jane Doe" {
		t.Fatalf("unexpected full_name patch %+v", got)
	}
	skills := byName["skills"]
	if skills.Props["orientation"] != "vertical" {
		t.Fatalf("expected orientation prop, got %v", skills.Props)
	}
	if _, ok := skills.Props["items"]; !ok {
		t.Fatalf("expected existing props to be kept, got %v", skills.Props)
	}

	original := testsupport.SampleForm()
	for _, field := range original.Fields() {
		if field.Name == "skills" {
			if _, ok := field.Props["orientation"]; ok {
				t.Fatalf("expected fixture props to remain unchanged")
			}
		}
	}
}

func TestJSONPresetTransformerUnknownTargets(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"field": `{"fields": {"nope": {"label": "x"}}}`,
		"page":  `{"pages": {"nope": {"title": "x"}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			transformer, err := orchestrator.NewJSONPresetTransformer([]byte(doc))
			if err != nil {
				t.Fatalf("NewJSONPresetTransformer: %v", err)
			}
			cfg := testsupport.SampleForm()
			if err := transformer.Transform(&cfg); err == nil {
				t.Fatalf("expected unknown %s error", name)
			}
		})
	}
}

func TestJSONPresetTransformerFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"presets/en.json": {Data: []byte(presetJSON)}}
	transformer, err := orchestrator.NewJSONPresetTransformerFromFS(fsys, "presets/en.json")
	if err != nil {
		t.Fatalf("NewJSONPresetTransformerFromFS: %v", err)
	}
	orch, err := orchestrator.New(testsupport.SampleForm(), orchestrator.WithTransformer(transformer))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if orch.Config().SubmitButtonText != "Send" {
		t.Fatalf("expected preset to apply, got %q", orch.Config().SubmitButtonText)
	}

	if _, err := orchestrator.NewJSONPresetTransformerFromFS(fsys, "missing.json"); err == nil {
		t.Fatalf("expected missing file error")
	}
	if _, err := orchestrator.NewJSONPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("expected empty document error")
	}
}
