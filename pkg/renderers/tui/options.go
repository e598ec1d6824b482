package tui

import (
	"log/slog"
	"net/http"

	"github.com/goliatone/go-formflow/pkg/widgets"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML emits a YAML document.
	OutputFormatYAML OutputFormat = "yaml"
	// OutputFormatPrettyText emits one "name: value" line per field.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// DefaultMaxAttempts bounds how often a page is re-prompted.
const DefaultMaxAttempts = 5

// Theme captures optional message prefixes the filler applies to info lines.
type Theme struct {
	PageHeading string
	InfoPrefix  string
	ErrorPrefix string
}

// SubmitTransformer mutates collected values before serialization.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures the Filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(f *Filler) {
		if format != "" {
			f.outputFormat = format
		}
	}
}

// WithFetcher sets the source of lookup options. Without one, lookup fields
// fall back to free text input.
func WithFetcher(fetcher Fetcher) Option {
	return func(f *Filler) {
		f.fetcher = fetcher
	}
}

// WithHTTPClient fetches lookup options over HTTP, resolving relative
// endpoints against baseURL.
func WithHTTPClient(client *http.Client, baseURL string) Option {
	return func(f *Filler) {
		f.fetcher = &HTTPFetcher{Client: client, BaseURL: baseURL}
	}
}

// WithSubmitTransformer allows callers to mutate collected values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(f *Filler) {
		f.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(f *Filler) {
		f.theme = theme
	}
}

// WithMaxAttempts bounds page re-prompting. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithRegistry overrides the widget registry used to pick prompt kinds.
func WithRegistry(registry *widgets.Registry) Option {
	return func(f *Filler) {
		if registry != nil {
			f.registry = registry
		}
	}
}

// WithLogger sets the logger for reset and lookup diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}
