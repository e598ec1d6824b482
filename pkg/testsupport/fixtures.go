package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// SampleForm returns a small two-page form exercising every component kind:
// a section page with a dependent, conditionally hidden field and a flat page
// with a checkbox group, an optional select and a file picker.
func SampleForm() model.FormConfig {
	hiddenCompany := visibility.Neq("employment_type", "employed")
	hiddenOther := visibility.Not(visibility.Contains("skills", "others"))

	return model.FormConfig{
		ID:               "sample",
		Title:            "Sample",
		SubmitButtonText: "Submit",
		Pages: []model.Page{
			{
				ID:    "profile",
				Title: "Profile",
				Fields: []model.Field{
					{
						Name:      "full_name",
						Label:     "Full name",
						Component: "UInput",
						Type:      "text",
						Rule:      model.String().Min(1, "Required"),
						Row:       1,
						ColSpan:   12,
					},
				},
				Sections: []model.Section{
					{
						ID:    "employment",
						Title: "Employment",
						Fields: []model.Field{
							{
								Name:      "employment_type",
								Label:     "Employment type",
								Component: "USelect",
								Type:      "text",
								Rule:      model.String().Min(1, "Required"),
								Props: map[string]any{
									"options": []any{
										map[string]any{"label": "Employed", "value": "employed"},
										map[string]any{"label": "Unemployed", "value": "unemployed"},
									},
								},
							},
							{
								Name:      "company_name",
								Label:     "Company",
								Component: "UInput",
								Type:      "text",
								Rule:      model.String().Min(1, "Company is required"),
								Hidden:    &hiddenCompany,
								DependsOn: []string{"employment_type"},
							},
							{
								Name:          "salary",
								Label:         "Salary",
								Component:     "UInput",
								Type:          "number",
								Rule:          model.Number().Coerced().AsOptional(),
								DependsOn:     []string{"employment_type"},
								ClearOnChange: model.Bool(false),
							},
						},
					},
				},
			},
			{
				ID:    "extra",
				Title: "Extra",
				Fields: []model.Field{
					{
						Name:      "skills",
						Label:     "Skills",
						Component: "UCheckboxGroup",
						Type:      "radio",
						Rule:      model.Array(model.String()).Min(1, "Select at least one"),
						Props: map[string]any{
							"items": []any{
								map[string]any{"label": "Go", "value": "go"},
								map[string]any{"label": "Others", "value": "others"},
							},
						},
					},
					{
						Name:      "skills_other",
						Label:     "Other skills",
						Component: "UInput",
						Type:      "text",
						Rule:      model.String().Min(1).AsOptional(),
						Hidden:    &hiddenOther,
						DependsOn: []string{"skills"},
					},
					{
						Name:      "shirt_size",
						Label:     "Shirt size",
						Component: "USelect",
						Type:      "text",
						Rule:      model.String().OneOf("s", "m", "l").AsNullable(),
					},
					{
						Name:      "resume",
						Label:     "Resume",
						Component: "UFileInput",
						Type:      "file",
						Rule:      model.File().AsOptional(),
					},
					{
						Name:      "country",
						Label:     "Country",
						Component: "UInput",
						Type:      "text",
						Rule:      model.String(),
						Props:     map[string]any{model.PropDefaultValue: "KH"},
					},
				},
			},
		},
	}
}

// LoadForm reads a JSON form config fixture.
func LoadForm(t *testing.T, path string) model.FormConfig {
	t.Helper()

	form, err := LoadFormFromPath(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadFormFromPath returns a FormConfig without requiring testing.T.
func LoadFormFromPath(path string) (model.FormConfig, error) {
	if path == "" {
		return model.FormConfig{}, errors.New("testsupport: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormConfig{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	var out model.FormConfig
	if err := json.Unmarshal(data, &out); err != nil {
		return model.FormConfig{}, fmt.Errorf("testsupport: unmarshal form: %w", err)
	}
	return out, nil
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// AssertJSONGolden round-trips value through JSON and compares it with the
// golden file at path, refreshing the file first when UPDATE_GOLDENS is set.
func AssertJSONGolden(t *testing.T, path string, value any) {
	t.Helper()

	WriteGolden(t, path, value)

	payload, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	var got any
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	var want any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
	if diff := CompareGolden(want, got); diff != "" {
		t.Fatalf("golden mismatch %s (-want +got):\n%s", path, diff)
	}
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
