package lookup

import (
	"errors"
	"net/http"
	"path"
	"strings"
)

// Mux is satisfied by *http.ServeMux and by routers exposing the same
// Handle method.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full mount path for endpoint e under basePath.
func MountPath(basePath string, e Endpoint, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.Path(e))
}

// RegisterRoutes registers every lookup route and the OpenAPI document under
// basePath on mux, returning the registered patterns.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) ([]string, error) {
	return RegisterRoutesWithOptions(mux, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions registers the routes using a pre-built Options
// value. Nothing is registered when the OpenAPI document cannot be built.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) ([]string, error) {
	if mux == nil {
		return nil, errors.New("lookup: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })

	docHandler, err := OpenAPIHandler(basePath, opts)
	if err != nil {
		return nil, err
	}
	patterns := registerData(mux, basePath, opts)
	pattern := mountPath(basePath, opts.OpenAPIPath)
	mux.Handle(pattern, docHandler)
	return append(patterns, pattern), nil
}

func registerData(mux Mux, basePath string, opts Options) []string {
	store := resolveStore(opts)
	patterns := make([]string, 0, len(Endpoints())+1)
	for _, e := range Endpoints() {
		pattern := mountPath(basePath, opts.Path(e))
		mux.Handle(pattern, endpointHandler(e, opts, store))
		patterns = append(patterns, pattern)
	}
	return patterns
}

// mountPath joins basePath and routePath into a rooted, cleaned pattern.
func mountPath(basePath, routePath string) string {
	return path.Join("/", strings.TrimSpace(basePath), strings.TrimSpace(routePath))
}
