package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-formflow/components/lookup"
	"github.com/goliatone/go-formflow/components/lookup/formwiring"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
)

const maxBodyBytes = 1 << 20

type formSummary struct {
	ID     string   `json:"id"`
	Title  string   `json:"title,omitempty"`
	Source string   `json:"source"`
	Pages  []string `json:"pages"`
}

type valuesRequest struct {
	Mode string         `json:"mode"`
	Data map[string]any `json:"data"`
	Page string         `json:"page"`
}

type valuesResponse struct {
	Mode   orchestrator.Mode `json:"mode"`
	Values map[string]any    `json:"values"`
}

type validateResponse struct {
	validation.Result
	Values map[string]any `json:"values,omitempty"`
}

func (s *Server) registerForms(mux *http.ServeMux) []string {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /api/forms", s.listForms},
		{"GET /api/forms/{id}", s.getForm},
		{"GET /api/forms/{id}/schema", s.getSchema},
		{"POST /api/forms/{id}/values", s.postValues},
		{"POST /api/forms/{id}/validate", s.postValidate},
	}
	patterns := make([]string, 0, len(routes))
	for _, route := range routes {
		mux.HandleFunc(route.pattern, route.handler)
		patterns = append(patterns, route.pattern)
	}
	return patterns
}

func (s *Server) listForms(w http.ResponseWriter, _ *http.Request) {
	ids := s.forms.IDs()
	out := make([]formSummary, 0, len(ids))
	for _, id := range ids {
		form, _ := s.forms.Form(id)
		source, _ := s.forms.Source(id)
		out = append(out, formSummary{ID: id, Title: form.Title, Source: source, Pages: form.PageIDs()})
	}
	writeJSON(w, http.StatusOK, out)
}

// getForm returns the configuration with initial values injected and lookup
// endpoints mounted where this server serves them.
func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	orch, ok := s.orchestrator(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.rebase(orch.ConfigWithDefaults()))
}

func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	orch, ok := s.orchestrator(w, r)
	if !ok {
		return
	}
	var target *schema.Schema
	if page := r.URL.Query().Get("page"); page != "" {
		pageSchema, found := orch.PageSchema(page)
		if !found {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown page %q", page))
			return
		}
		target = pageSchema
	} else {
		target = orch.FormSchema()
	}
	writeJSON(w, http.StatusOK, target.JSONSchema())
}

// postValues derives initial values, merging data over the defaults in edit
// mode.
func (s *Server) postValues(w http.ResponseWriter, r *http.Request) {
	var req valuesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	orch, ok := s.orchestrator(w, r,
		orchestrator.WithMode(orchestrator.Mode(req.Mode)),
		orchestrator.WithEditData(req.Data),
	)
	if !ok {
		return
	}

	values := orch.InitialValues()
	if req.Page != "" {
		if _, found := orch.Config().Page(req.Page); !found {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown page %q", req.Page))
			return
		}
		values = orch.PageValues(req.Page)
	}
	writeJSON(w, http.StatusOK, valuesResponse{Mode: orch.Mode(), Values: values})
}

// postValidate checks a submission, or one page of it with ?page=. Valid
// whole-form submissions are returned parsed.
func (s *Server) postValidate(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if !decodeBody(w, r, &values) {
		return
	}
	orch, ok := s.orchestrator(w, r)
	if !ok {
		return
	}

	if page := r.URL.Query().Get("page"); page != "" {
		result, err := orch.ValidatePage(page, values)
		if errors.Is(err, orchestrator.ErrUnknownPage) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeResult(w, validateResponse{Result: result})
		return
	}

	parsed, err := orch.Parse(values)
	if err != nil {
		writeResult(w, validateResponse{Result: validation.NewResult(validation.Issues(err))})
		return
	}
	writeResult(w, validateResponse{Result: validation.NewResult(nil), Values: parsed})
}

func (s *Server) orchestrator(w http.ResponseWriter, r *http.Request, opts ...orchestrator.Option) (*orchestrator.Orchestrator, bool) {
	id := r.PathValue("id")
	form, ok := s.forms.Form(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown form %q", id))
		return nil, false
	}
	opts = append([]orchestrator.Option{orchestrator.WithLogger(s.logger)}, opts...)
	orch, err := orchestrator.New(form, opts...)
	if err != nil {
		s.logger.Error("form configuration rejected", "form", id, "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Invalid form configuration")
		return nil, false
	}
	return orch, true
}

func (s *Server) rebase(cfg model.FormConfig) model.FormConfig {
	opts := s.lookupOpts
	return formwiring.Rebase(cfg, s.cfg.Lookup.BasePath, func(o *lookup.Options) { *o = opts })
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

func writeResult(w http.ResponseWriter, resp validateResponse) {
	code := http.StatusOK
	if !resp.Valid {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, resp)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{"statusCode": code, "message": message})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
