package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"
)

// Endpoint names one lookup route. It doubles as the metrics label.
type Endpoint string

const (
	EndpointProvinces Endpoint = "provinces"
	EndpointDistricts Endpoint = "districts"
	EndpointCommunes  Endpoint = "communes"
	EndpointVillages  Endpoint = "villages"
	EndpointLicenses  Endpoint = "licenses"
)

// Endpoints lists every data endpoint in registration order.
func Endpoints() []Endpoint {
	return []Endpoint{EndpointProvinces, EndpointDistricts, EndpointCommunes, EndpointVillages, EndpointLicenses}
}

// Path returns the route path configured for e.
func (o Options) Path(e Endpoint) string {
	switch e {
	case EndpointProvinces:
		return o.ProvincesPath
	case EndpointDistricts:
		return o.DistrictsPath
	case EndpointCommunes:
		return o.CommunesPath
	case EndpointVillages:
		return o.VillagesPath
	case EndpointLicenses:
		return o.LicensesPath
	}
	return ""
}

// FailureMessage is the message of every 500 response body.
const FailureMessage = "Search failed"

// statusClientClosed is recorded for requests whose context ended before the
// response was written.
const statusClientClosed = 499

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// NewHandler builds a handler serving every lookup route, including the
// OpenAPI document, at its configured path.
func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions is NewHandler for a pre-built Options value. When the
// OpenAPI document cannot be built the error is logged and only the data
// routes are served.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	mux := http.NewServeMux()
	if _, err := RegisterRoutesWithOptions(mux, "", opts); err != nil {
		opts.Logger.Error("lookup openapi document unavailable", "error", err)
		registerData(mux, "", opts)
	}
	return mux
}

// EndpointHandler builds the handler for a single endpoint.
func EndpointHandler(e Endpoint, fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return endpointHandler(e, opts, resolveStore(opts))
}

func endpointHandler(e Endpoint, opts Options, store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if !allowMethod(w, r) {
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		start := time.Now()
		code, count := http.StatusOK, 0
		defer func() {
			opts.Metrics.observe(string(e), code, count, time.Since(start))
		}()
		defer func() {
			if rec := recover(); rec != nil {
				opts.Logger.Error("lookup handler panicked", "endpoint", e, "panic", rec)
				code = http.StatusInternalServerError
				writeFailure(w)
			}
		}()

		ctx := r.Context()
		items, n, err := fetch(ctx, e, r.URL.Query(), opts, store)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				opts.Logger.Debug("lookup request ended early", "endpoint", e, "error", err)
				code = statusClientClosed
				return
			}
			opts.Logger.Error("lookup search failed", "endpoint", e, "error", err)
			code = http.StatusInternalServerError
			writeFailure(w)
			return
		}
		count = n
		writeJSON(w, r, http.StatusOK, items)
	})
}

func fetch(ctx context.Context, e Endpoint, query url.Values, opts Options, store Store) (any, int, error) {
	switch e {
	case EndpointProvinces:
		items, err := store.Provinces(ctx)
		if err != nil {
			return nil, 0, err
		}
		return settle(ctx, opts, items)
	case EndpointDistricts:
		return filtered(ctx, opts, query.Get(opts.ProvinceParam), store.Districts)
	case EndpointCommunes:
		return filtered(ctx, opts, query.Get(opts.DistrictParam), store.Communes)
	case EndpointVillages:
		return filtered(ctx, opts, query.Get(opts.CommuneParam), store.Villages)
	case EndpointLicenses:
		return filtered(ctx, opts, query.Get(opts.SearchParam), func(ctx context.Context, q string) ([]License, error) {
			return store.SearchLicenses(ctx, q, opts.LicenseLimit)
		})
	}
	return nil, 0, errors.New("lookup: unknown endpoint " + string(e))
}

func filtered[T any](ctx context.Context, opts Options, raw string, load func(context.Context, string) ([]T, error)) (any, int, error) {
	if raw == "" || utf8.RuneCountInString(raw) < opts.MinFilterLength {
		return []T{}, 0, nil
	}
	items, err := load(ctx, raw)
	if err != nil {
		return nil, 0, err
	}
	return settle(ctx, opts, items)
}

func settle[T any](ctx context.Context, opts Options, items []T) (any, int, error) {
	if items == nil {
		items = []T{}
	}
	if err := pause(ctx, opts.Delay); err != nil {
		return nil, 0, err
	}
	return items, len(items), nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeFailure(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(errorResponse{
		StatusCode: http.StatusInternalServerError,
		Message:    FailureMessage,
	})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

type unavailableStore struct{ err error }

func (s unavailableStore) Provinces(context.Context) ([]Province, error) {
	return nil, s.err
}

func (s unavailableStore) Districts(context.Context, string) ([]District, error) {
	return nil, s.err
}

func (s unavailableStore) Communes(context.Context, string) ([]Commune, error) {
	return nil, s.err
}

func (s unavailableStore) Villages(context.Context, string) ([]Village, error) {
	return nil, s.err
}

func (s unavailableStore) SearchLicenses(context.Context, string, int) ([]License, error) {
	return nil, s.err
}

func resolveStore(opts Options) Store {
	if opts.Store != nil {
		return opts.Store
	}
	store, err := DefaultStore()
	if err != nil {
		return unavailableStore{err: err}
	}
	return store
}
