package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// Fetcher loads lookup results for an endpoint and query.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, query url.Values) ([]map[string]any, error)
}

// HTTPFetcher issues GET requests. Relative endpoints are resolved against
// BaseURL.
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string
}

func (h *HTTPFetcher) Fetch(ctx context.Context, endpoint string, query url.Values) ([]map[string]any, error) {
	target, err := resolve(h.BaseURL, endpoint, query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("tui: build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tui: lookup %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	return decodeItems(endpoint, resp.StatusCode, resp.Body)
}

// HandlerFetcher serves lookups from an in-process handler, such as the
// lookup component mounted without a network listener.
type HandlerFetcher struct {
	Handler http.Handler
}

func (h *HandlerFetcher) Fetch(ctx context.Context, endpoint string, query url.Values) ([]map[string]any, error) {
	if h.Handler == nil {
		return nil, fmt.Errorf("tui: lookup %s: no handler", endpoint)
	}
	target, err := resolve("", endpoint, query)
	if err != nil {
		return nil, err
	}
	req := httptest.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Handler.ServeHTTP(rec, req)
	return decodeItems(endpoint, rec.Code, rec.Body)
}

func resolve(baseURL, endpoint string, query url.Values) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", fmt.Errorf("tui: lookup endpoint %q: %w", endpoint, err)
	}
	if base := strings.TrimSpace(baseURL); base != "" && !ref.IsAbs() {
		parsed, err := url.Parse(strings.TrimRight(base, "/") + "/")
		if err != nil {
			return "", fmt.Errorf("tui: lookup base url %q: %w", baseURL, err)
		}
		ref = parsed.ResolveReference(&url.URL{Path: strings.TrimLeft(ref.Path, "/"), RawQuery: ref.RawQuery})
	}
	merged := ref.Query()
	for key, vals := range query {
		merged[key] = vals
	}
	ref.RawQuery = merged.Encode()
	return ref.String(), nil
}

func decodeItems(endpoint string, status int, body io.Reader) ([]map[string]any, error) {
	if status != http.StatusOK {
		return nil, fmt.Errorf("tui: lookup %s: status %d", endpoint, status)
	}
	var items []map[string]any
	if err := json.NewDecoder(body).Decode(&items); err != nil {
		return nil, fmt.Errorf("tui: decode lookup %s: %w", endpoint, err)
	}
	return items, nil
}
