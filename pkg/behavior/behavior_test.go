package behavior_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/behavior"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

func addressForm() model.FormConfig {
	return model.FormConfig{Pages: []model.Page{{
		ID: "address",
		Fields: []model.Field{
			{Name: "province", Component: "UAddress", Rule: model.Object(), Cascade: &model.Cascade{ClearFields: []string{"street"}}},
			{Name: "district", Component: "UAddress", Rule: model.Object(), DependsOn: []string{"province"}},
			{Name: "commune", Component: "UAddress", Rule: model.Object(), DependsOn: []string{"district", "province"}},
			{Name: "village", Component: "UAddress", Rule: model.Object(), DependsOn: []string{"commune"}},
			{Name: "note", Component: "UInput", Rule: model.String(), DependsOn: []string{"province"}, ClearOnChange: model.Bool(false)},
			{Name: "street", Component: "UInput", Rule: model.String().AsOptional()},
		},
	}}}
}

func TestHiddenAndVisible(t *testing.T) {
	t.Parallel()

	cfg := testsupport.SampleForm()
	values := map[string]any{"employment_type": "unemployed", "skills": []any{"go"}}

	hidden := behavior.Hidden(cfg, values)
	want := map[string]bool{"company_name": true, "skills_other": true}
	if diff := cmp.Diff(want, hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}

	values = map[string]any{"employment_type": "employed", "skills": []any{"go", "others"}}
	if got := behavior.Hidden(cfg, values); len(got) != 0 {
		t.Fatalf("expected nothing hidden, got %v", got)
	}

	page, _ := cfg.Page("profile")
	visible := behavior.Visible(page.AllFields(), map[string]any{"employment_type": "unemployed"})
	var names []string
	for _, field := range visible {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"full_name", "employment_type", "salary"}, names); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"company_name"}, behavior.HiddenNames(page.AllFields(), map[string]any{})); diff != "" {
		t.Fatalf("hidden names mismatch (-want +got):\n%s", diff)
	}
}

func TestDisabled(t *testing.T) {
	t.Parallel()

	cond := visibility.Eq("locked", true)
	fields := []model.Field{{Name: "a", Disabled: &cond}, {Name: "b"}}
	if diff := cmp.Diff(map[string]bool{"a": true}, behavior.Disabled(fields, map[string]any{"locked": "true"})); diff != "" {
		t.Fatalf("disabled mismatch (-want +got):\n%s", diff)
	}
	if behavior.IsDisabled(fields[0], nil) {
		t.Fatalf("expected enabled without values")
	}
}

func TestDependents(t *testing.T) {
	t.Parallel()

	got := behavior.Dependents(addressForm(), "province")
	if diff := cmp.Diff([]string{"district", "commune", "note"}, got); diff != "" {
		t.Fatalf("dependents mismatch (-want +got):\n%s", diff)
	}
	if got := behavior.Dependents(addressForm(), "street"); got != nil {
		t.Fatalf("expected no dependents, got %v", got)
	}
}

func TestChanged(t *testing.T) {
	t.Parallel()

	prev := map[string]any{"a": "x", "b": []any{"1"}, "c": map[string]any{"code": "01"}, "gone": 1, "empty": []any{}}
	next := map[string]any{"a": "x", "b": []any{"1", "2"}, "c": map[string]any{"code": "01"}, "new": true, "empty": []any(nil)}
	if diff := cmp.Diff([]string{"b", "gone", "new"}, behavior.Changed(prev, next)); diff != "" {
		t.Fatalf("changed mismatch (-want +got):\n%s", diff)
	}
}

func TestResetCascadesTransitively(t *testing.T) {
	t.Parallel()

	cfg := addressForm()
	defaults := map[string]any{"province": nil, "district": nil, "commune": nil, "village": nil, "note": "", "street": ""}
	values := map[string]any{
		"province": map[string]any{"code": "02"},
		"district": map[string]any{"code": "0102"},
		"commune":  map[string]any{"code": "010201"},
		"village":  map[string]any{"code": "01020101"},
		"note":     "keep me",
		"street":   "53",
	}

	got, cleared := behavior.Reset(cfg, values, []string{"province"}, defaults)
	want := map[string]any{
		"province": map[string]any{"code": "02"},
		"district": nil,
		"commune":  nil,
		"village":  nil,
		"note":     "keep me",
		"street":   "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reset values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"district", "commune", "street", "village"}, cleared); diff != "" {
		t.Fatalf("cleared order mismatch (-want +got):\n%s", diff)
	}
	if values["district"] == nil {
		t.Fatalf("Reset must not modify its input")
	}
}

func TestResetSkipsUnchangedAndProtected(t *testing.T) {
	t.Parallel()

	cfg := addressForm()
	defaults := map[string]any{"district": nil, "commune": nil, "village": nil}
	values := map[string]any{"district": nil, "commune": nil, "village": map[string]any{"code": "x"}}

	_, cleared := behavior.Reset(cfg, values, []string{"province"}, defaults)
	if diff := cmp.Diff([]string{"street"}, cleared); diff != "" {
		t.Fatalf("cleared mismatch (-want +got):\n%s", diff)
	}

	got, cleared := behavior.Reset(cfg, map[string]any{"district": "d", "commune": "c"}, []string{"district", "commune"}, defaults)
	if len(cleared) != 1 || cleared[0] != "village" {
		t.Fatalf("expected only village to reset, got %v", cleared)
	}
	if got["district"] != "d" || got["commune"] != "c" {
		t.Fatalf("changed fields must keep user input, got %v", got)
	}
}

func TestResetDefaultsAreCloned(t *testing.T) {
	t.Parallel()

	cfg := model.FormConfig{Pages: []model.Page{{ID: "p", Fields: []model.Field{
		{Name: "skills", Component: "UCheckboxGroup", Rule: model.Array(model.String())},
		{Name: "tags", Component: "UCheckboxGroup", Rule: model.Array(model.String()), DependsOn: []string{"skills"}},
	}}}}
	defaults := map[string]any{"tags": []any{}}
	got, _ := behavior.Reset(cfg, map[string]any{"tags": []any{"a"}}, []string{"skills"}, defaults)
	tags := got["tags"].([]any)
	got["tags"] = append(tags, "b")
	if len(defaults["tags"].([]any)) != 0 {
		t.Fatalf("defaults must not alias reset values")
	}
}
