package formflow

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func TestNewAndEdit(t *testing.T) {
	t.Parallel()

	orch, err := New(testsupport.SampleForm())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if orch.IsEditMode() {
		t.Fatalf("expected create mode")
	}

	edit, err := Edit(testsupport.SampleForm(), map[string]any{"full_name": "Ada"})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !edit.IsEditMode() {
		t.Fatalf("expected edit mode")
	}
	if got := edit.InitialValues()["full_name"]; got != "Ada" {
		t.Fatalf("expected edit data merged, got %v", got)
	}
}

func TestLoadForms(t *testing.T) {
	t.Parallel()

	store, err := LoadForms(fstest.MapFS{
		"contact.yaml": {Data: []byte("forms:\n  contact:\n    pages: [{id: p, fields: [{name: a, component: UInput}]}]\n")},
	})
	if err != nil {
		t.Fatalf("LoadForms: %v", err)
	}
	if diff := cmp.Diff([]string{"contact"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	bundled, err := BundledForms()
	if err != nil {
		t.Fatalf("BundledForms: %v", err)
	}
	if _, ok := bundled.Form("job-application"); !ok {
		t.Fatalf("expected bundled job-application form")
	}
}
