package orchestrator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Transformer mutates a FormConfig before it is validated and compiled.
// Implementations can relabel fields, inject props or translate button text.
type Transformer interface {
	Transform(cfg *model.FormConfig) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(cfg *model.FormConfig) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(cfg *model.FormConfig) error {
	if fn == nil {
		return nil
	}
	return fn(cfg)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON
// document, typically a translation of labels and button text:
//
//	{
//	  "submitButtonText": "Submit",
//	  "pages": {"documents": {"title": "Attachments"}},
//	  "fields": {
//	    "gender": {"label": "Gender", "props": {"orientation": "vertical"}}
//	  }
//	}
type JSONPresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	SubmitButtonText   string                `json:"submitButtonText"`
	PreviousButtonText string                `json:"previousButtonText"`
	NextButtonText     string                `json:"nextButtonText"`
	Pages              map[string]pagePatch  `json:"pages"`
	Fields             map[string]fieldPatch `json:"fields"`
}

type pagePatch struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type fieldPatch struct {
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Placeholder string         `json:"placeholder"`
	Props       map[string]any `json:"props"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document presetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied config. A
// patch naming a page or field that does not exist is an error.
func (t *JSONPresetTransformer) Transform(cfg *model.FormConfig) error {
	if cfg == nil {
		return errors.New("json preset transformer: config is nil")
	}
	doc := t.document

	setIfNotEmpty(&cfg.SubmitButtonText, doc.SubmitButtonText)
	setIfNotEmpty(&cfg.PreviousButtonText, doc.PreviousButtonText)
	setIfNotEmpty(&cfg.NextButtonText, doc.NextButtonText)

	for id := range doc.Pages {
		if _, ok := cfg.Page(id); !ok {
			return fmt.Errorf("json preset transformer: page %q not found", id)
		}
	}
	known := make(map[string]struct{})
	for _, field := range cfg.Fields() {
		known[field.Name] = struct{}{}
	}
	for name := range doc.Fields {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("json preset transformer: field %q not found", name)
		}
	}

	for i := range cfg.Pages {
		if patch, ok := doc.Pages[cfg.Pages[i].ID]; ok {
			setIfNotEmpty(&cfg.Pages[i].Title, patch.Title)
			setIfNotEmpty(&cfg.Pages[i].Description, patch.Description)
		}
	}
	*cfg = cfg.MapFields(func(field model.Field) model.Field {
		if patch, ok := doc.Fields[field.Name]; ok {
			return applyFieldPatch(field, patch)
		}
		return field
	})
	return nil
}

func applyFieldPatch(field model.Field, patch fieldPatch) model.Field {
	setIfNotEmpty(&field.Label, patch.Label)
	setIfNotEmpty(&field.Description, patch.Description)
	setIfNotEmpty(&field.Placeholder, patch.Placeholder)
	if len(patch.Props) > 0 {
		props := make(map[string]any, len(field.Props)+len(patch.Props))
		maps.Copy(props, field.Props)
		maps.Copy(props, patch.Props)
		field.Props = props
	}
	return field
}

func setIfNotEmpty(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}
