package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const openAPIPath = "data/openapi.yaml"

// defaultPaths are the route paths used in the embedded document.
var defaultPaths = map[Endpoint]string{
	EndpointProvinces: "/api/address/provinces",
	EndpointDistricts: "/api/address/districts",
	EndpointCommunes:  "/api/address/communes",
	EndpointVillages:  "/api/address/villages",
	EndpointLicenses:  "/api/licenses/search",
}

// OpenAPIDocument loads and validates the embedded OpenAPI description,
// rewritten to the paths and query parameters configured in opts. A
// non-empty basePath is advertised as the document server.
func OpenAPIDocument(ctx context.Context, basePath string, opts Options) (*openapi3.T, error) {
	raw, err := dataFS.ReadFile(openAPIPath)
	if err != nil {
		return nil, fmt.Errorf("lookup: read openapi document: %w", err)
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("lookup: load openapi document: %w", err)
	}

	filters := map[Endpoint]string{
		EndpointDistricts: opts.ProvinceParam,
		EndpointCommunes:  opts.DistrictParam,
		EndpointVillages:  opts.CommuneParam,
		EndpointLicenses:  opts.SearchParam,
	}
	paths := openapi3.NewPaths()
	for _, e := range Endpoints() {
		item := doc.Paths.Value(defaultPaths[e])
		if item == nil {
			return nil, fmt.Errorf("lookup: openapi document is missing %s", defaultPaths[e])
		}
		if name, ok := filters[e]; ok && item.Get != nil {
			for _, param := range item.Get.Parameters {
				if param != nil && param.Value != nil && param.Value.In == openapi3.ParameterInQuery {
					param.Value.Name = name
				}
			}
		}
		paths.Set(mountPath("", opts.Path(e)), item)
	}
	doc.Paths = paths
	if basePath != "" && basePath != "/" {
		doc.Servers = openapi3.Servers{&openapi3.Server{URL: strings.TrimRight(mountPath(basePath, "/"), "/")}}
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("lookup: validate openapi document: %w", err)
	}
	return doc, nil
}

// OpenAPIHandler serves the document built by OpenAPIDocument as JSON.
func OpenAPIHandler(basePath string, opts Options) (http.Handler, error) {
	doc, err := OpenAPIDocument(context.Background(), basePath, opts)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("lookup: encode openapi document: %w", err)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(payload)
	}), nil
}
