package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/pkg/loader"
	"github.com/goliatone/go-formflow/pkg/model"
)

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{Addr: "127.0.0.1:0", ReadTimeout: time.Second, ShutdownTimeout: time.Second},
		Lookup: config.LookupConfig{Store: config.StoreMemory, MinFilterLength: 2, LicenseLimit: 10},
		Log:    config.LogConfig{Level: "info", Format: "text"},
		Metrics: config.MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func newTestServer(t *testing.T, cfg config.Config, logs io.Writer) *Server {
	t.Helper()
	forms, err := loader.Bundled()
	require.NoError(t, err)
	if logs == nil {
		logs = io.Discard
	}
	srv, err := New(context.Background(), cfg, forms, WithLogger(slog.New(slog.NewTextHandler(logs, nil))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthzAssignsRequestID(t *testing.T) {
	var logs bytes.Buffer
	srv := newTestServer(t, testConfig(), &logs)

	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "request_id="+id)
	assert.Contains(t, logs.String(), "path=/healthz")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["forms"])
}

func TestRequestIDIsReused(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "", RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = do(t, srv.Handler(), http.MethodGet, "/healthz", "", RequestIDHeader, strings.Repeat("x", 200))
	assert.NotEqual(t, strings.Repeat("x", 200), rec.Header().Get(RequestIDHeader))
}

func TestLookupRoutesAndMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Lookup.BasePath = "/forms"
	srv := newTestServer(t, cfg, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/forms/api/address/provinces", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var provinces []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &provinces))
	assert.Len(t, provinces, 25)

	rec = do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "formflow_lookup_requests_total")
	assert.Contains(t, srv.Patterns(), "GET /metrics")
	assert.Contains(t, srv.Patterns(), "/forms/api/address/provinces")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	srv := newTestServer(t, cfg, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormsAPI(t *testing.T) {
	cfg := testConfig()
	cfg.Lookup.BasePath = "/forms"
	srv := newTestServer(t, cfg, nil)
	h := srv.Handler()

	t.Run("list", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/forms", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var got []formSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "job-application", got[0].ID)
		assert.Equal(t, []string{"personal-employment", "additional-info", "documents"}, got[0].Pages)
	})

	t.Run("config is rebased", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/forms/job-application", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var form model.FormConfig
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
		var province model.Field
		for _, field := range form.Fields() {
			if field.Name == "province" {
				province = field
			}
		}
		require.NotNil(t, province.Lookup)
		assert.Equal(t, "/forms/api/address/provinces", province.Lookup.Endpoint)
		_, hasDefault := province.DefaultValue()
		assert.True(t, hasDefault)
	})

	t.Run("unknown form", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/forms/missing", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("schema", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/forms/job-application/schema?page=documents", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "object", doc["type"])

		rec = do(t, h, http.MethodGet, "/api/forms/job-application/schema?page=nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("edit values", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/forms/job-application/values",
			`{"mode":"edit","data":{"registration_choice":"new","legacy":true}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var got valuesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "edit", string(got.Mode))
		assert.Equal(t, "new", got.Values["registration_choice"])
		assert.Equal(t, true, got.Values["legacy"])
	})

	t.Run("create values for page", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/forms/job-application/values", `{"page":"documents"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var got valuesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "create", string(got.Mode))
		assert.NotContains(t, got.Values, "registration_choice")
	})

	t.Run("validate page", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/forms/job-application/validate?page=personal-employment", `{}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var got validateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.False(t, got.Valid)
		fields := make([]string, 0, len(got.Issues))
		for _, issue := range got.Issues {
			fields = append(fields, issue.Field)
		}
		assert.Contains(t, fields, "registration_choice")
		assert.NotContains(t, fields, "search_info")
	})

	t.Run("validate whole form", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/forms/job-application/validate", `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/forms/job-application/validate", `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSQLiteLookupStore(t *testing.T) {
	cfg := testConfig()
	cfg.Lookup.Store = config.StoreSQLite
	cfg.Lookup.SQLiteDSN = filepath.Join(t.TempDir(), "lookup.db")
	srv := newTestServer(t, cfg, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/address/districts?province_code=01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var districts []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &districts))
	require.NotEmpty(t, districts)
	assert.Equal(t, "01", districts[0]["province_code"])
}

func TestNewRequiresForms(t *testing.T) {
	_, err := New(context.Background(), testConfig(), nil)
	assert.Error(t, err)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	url := "http://" + listener.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeDrainsInFlightLookups(t *testing.T) {
	cfg := testConfig()
	cfg.Lookup.Delay = 300 * time.Millisecond
	srv := newTestServer(t, cfg, nil)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	base := "http://" + listener.Addr().String()
	client := &http.Client{Timeout: 3 * time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	type result struct {
		code int
		body []byte
		err  error
	}
	inflight := make(chan result, 1)
	go func() {
		resp, err := client.Get(base + "/api/address/provinces")
		if err != nil {
			inflight <- result{err: err}
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		inflight <- result{code: resp.StatusCode, body: body, err: err}
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	got := <-inflight
	require.NoError(t, got.err)
	assert.Equal(t, http.StatusOK, got.code)
	var provinces []map[string]any
	require.NoError(t, json.Unmarshal(got.body, &provinces), "body %q", got.body)
	assert.Len(t, provinces, 25)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
