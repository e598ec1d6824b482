package values_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/values"
	"github.com/goliatone/go-formflow/pkg/widgets"
)

func newDeriver(t *testing.T, opts ...values.Option) *values.Deriver {
	t.Helper()
	d, err := values.FromConfig(testsupport.SampleForm(), opts...)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	return d
}

func TestInitialValues(t *testing.T) {
	t.Parallel()

	got := newDeriver(t).Initial()
	want := map[string]any{
		"full_name":       "",
		"employment_type": "",
		"company_name":    "",
		"salary":          nil,
		"skills":          []any{},
		"skills_other":    "",
		"shirt_size":      nil,
		"resume":          nil,
		"country":         "KH",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("initial values mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckboxGroupDefaultIsFreshEmptyCollection(t *testing.T) {
	t.Parallel()

	d := newDeriver(t)
	initial := d.Initial()
	first := initial["skills"].([]any)
	if first == nil || len(first) != 0 {
		t.Fatalf("expected empty non-nil collection, got %#v", first)
	}
	initial["skills"] = append(first, "mutated")
	if again := d.Initial()["skills"].([]any); len(again) != 0 {
		t.Fatalf("defaults must not be shared across calls")
	}
}

func TestDefaultPrecedence(t *testing.T) {
	t.Parallel()

	d := newDeriver(t)
	cases := []struct {
		name  string
		field model.Field
		want  any
	}{
		{
			name:  "explicit nil default wins",
			field: model.Field{Name: "skills", Component: widgets.ComponentCheckboxGroup, Props: map[string]any{model.PropDefaultValue: nil}},
			want:  nil,
		},
		{
			name:  "explicit default wins over component",
			field: model.Field{Name: "salary", Component: widgets.ComponentInput, Type: "number", Props: map[string]any{model.PropDefaultValue: 10}},
			want:  10,
		},
		{
			name:  "required choice",
			field: model.Field{Name: "employment_type", Component: widgets.ComponentSelect},
			want:  "",
		},
		{
			name:  "nullable choice",
			field: model.Field{Name: "shirt_size", Component: widgets.ComponentSelect},
			want:  nil,
		},
		{
			name:  "unknown field choice counts as optional",
			field: model.Field{Name: "not_registered", Component: widgets.ComponentRadioGroup},
			want:  nil,
		},
		{
			name:  "date picker",
			field: model.Field{Name: "dob", Component: widgets.ComponentCalendar, Type: "date"},
			want:  nil,
		},
		{
			name:  "textarea",
			field: model.Field{Name: "cover", Component: widgets.ComponentTextarea},
			want:  "",
		},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, d.Default(tc.field)); diff != "" {
			t.Fatalf("%s: default mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestEditMergeOverridesKeyByKey(t *testing.T) {
	t.Parallel()

	d := newDeriver(t)
	defaults := d.Initial()
	user := map[string]any{
		"full_name":  "",
		"salary":     0,
		"skills":     nil,
		"country":    "",
		"legacy_key": false,
	}

	got := d.Edit(user)
	want := make(map[string]any, len(defaults)+1)
	for key, value := range defaults {
		want[key] = value
	}
	for key, value := range user {
		want[key] = value
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("edit merge mismatch (-want +got):\n%s", diff)
	}
	if user["skills"] != nil {
		t.Fatalf("caller data must not be mutated")
	}
}

func TestPageValues(t *testing.T) {
	t.Parallel()

	d := newDeriver(t)
	got := d.Page("profile")
	want := map[string]any{
		"full_name":       "",
		"employment_type": "",
		"company_name":    "",
		"salary":          nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("page values mismatch (-want +got):\n%s", diff)
	}
	if got := d.Page("missing"); len(got) != 0 || got == nil {
		t.Fatalf("unknown page should yield an empty map, got %#v", got)
	}

	edit := d.PageEdit("profile", map[string]any{"full_name": "Dara", "skills": []any{"go"}})
	if edit["full_name"] != "Dara" || edit["salary"] != nil {
		t.Fatalf("unexpected page edit values %#v", edit)
	}
	if _, ok := edit["skills"]; !ok {
		t.Fatalf("page edit carries over all caller data")
	}
}

func TestValidatedFallsBackAndLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	d := newDeriver(t, values.WithLogger(logger))

	got := d.Validated()
	if diff := cmp.Diff(d.Initial(), got); diff != "" {
		t.Fatalf("expected unvalidated defaults (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "initial values validation failed") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}

func TestValidatedEditParses(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := newDeriver(t, values.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	got := d.ValidatedEdit(map[string]any{
		"full_name":       "Dara",
		"employment_type": "employed",
		"company_name":    "Acme",
		"salary":          "100",
		"skills":          []any{"go"},
		"skills_other":    "Rust",
		"legacy_key":      "dropped",
	})
	want := map[string]any{
		"full_name":       "Dara",
		"employment_type": "employed",
		"company_name":    "Acme",
		"salary":          100.0,
		"skills":          []any{"go"},
		"skills_other":    "Rust",
		"shirt_size":      nil,
		"resume":          nil,
		"country":         "KH",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("validated edit mismatch (-want +got):\n%s", diff)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no warning, got %q", buf.String())
	}

	fallback := d.ValidatedEdit(map[string]any{"full_name": ""})
	if fallback["full_name"] != "" || fallback["skills"] == nil {
		t.Fatalf("expected merged values on failure, got %#v", fallback)
	}
	if !strings.Contains(buf.String(), "edit initial values validation failed") {
		t.Fatalf("expected edit warning, got %q", buf.String())
	}
}

func TestCustomRegistry(t *testing.T) {
	t.Parallel()

	reg := widgets.NewRegistry()
	reg.RegisterComponents(widgets.KindMulti, 500, widgets.ComponentInput)
	d := newDeriver(t, values.WithRegistry(reg))
	if diff := cmp.Diff([]any{}, d.Initial()["full_name"]); diff != "" {
		t.Fatalf("custom registry not applied (-want +got):\n%s", diff)
	}
}
