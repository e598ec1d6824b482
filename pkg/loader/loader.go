package loader

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Store holds the forms loaded from one or more documents.
type Store struct {
	forms   map[string]model.FormConfig
	sources map[string]string
}

type documentFile struct {
	Forms map[string]model.FormConfig `json:"forms" yaml:"forms"`
}

// Parse decodes a single document. JSON is tried first, then YAML. source
// names the document in error messages.
func Parse(data []byte, source string) (map[string]model.FormConfig, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.FormConfig, len(doc.Forms))
	for rawID, form := range doc.Forms {
		normalised, err := normaliseForm(rawID, form, source)
		if err != nil {
			return nil, err
		}
		out[normalised.ID] = normalised
	}
	return out, nil
}

// LoadFS walks fsys and parses every .json, .yaml and .yml file. A form id
// defined twice, in the same or different files, is an error. A nil fsys
// yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{
		forms:   make(map[string]model.FormConfig),
		sources: make(map[string]string),
	}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isFormFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("loader: read %s: %w", path, err)
		}
		forms, err := Parse(data, path)
		if err != nil {
			return err
		}
		for id, form := range forms {
			if previous, exists := store.sources[id]; exists {
				return fmt.Errorf("loader: duplicate form %q (files %s and %s)", id, previous, path)
			}
			store.forms[id] = form
			store.sources[id] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Form returns the form registered under id.
func (s *Store) Form(id string) (model.FormConfig, bool) {
	if s == nil {
		return model.FormConfig{}, false
	}
	form, ok := s.forms[id]
	return form, ok
}

// Source reports the file a form was loaded from.
func (s *Store) Source(id string) (string, bool) {
	if s == nil {
		return "", false
	}
	source, ok := s.sources[id]
	return source, ok
}

// IDs lists the loaded form ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("loader: file %s is empty", source)
	}

	jsonErr := json.Unmarshal(data, &doc)
	if jsonErr == nil {
		return doc, nil
	}
	doc = documentFile{}
	yamlErr := yaml.Unmarshal(data, &doc)
	if yamlErr == nil {
		return doc, nil
	}
	if looksLikeJSON(data) {
		return documentFile{}, fmt.Errorf("loader: parse %s: %w", source, jsonErr)
	}
	return documentFile{}, fmt.Errorf("loader: parse %s: %w", source, yamlErr)
}

func normaliseForm(rawID string, form model.FormConfig, source string) (model.FormConfig, error) {
	id := strings.TrimSpace(rawID)
	if id == "" {
		return model.FormConfig{}, fmt.Errorf("loader: file %s defines an empty form id", source)
	}
	if form.ID != "" && form.ID != id {
		return model.FormConfig{}, fmt.Errorf("loader: form %q (file %s) declares mismatched id %q", id, source, form.ID)
	}
	form.ID = id
	if len(form.Pages) == 0 {
		return model.FormConfig{}, fmt.Errorf("loader: form %q (file %s) has no pages", id, source)
	}

	for i := range form.Pages {
		page := &form.Pages[i]
		page.Icon = SanitizeIcon(page.Icon)
		for j := range page.Sections {
			page.Sections[j].Icon = SanitizeIcon(page.Sections[j].Icon)
		}
	}

	if err := form.Validate(); err != nil {
		return model.FormConfig{}, fmt.Errorf("loader: form %q (file %s): %w", id, source, err)
	}
	return form, nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{")
}

func isFormFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
