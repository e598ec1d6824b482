package lookup

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultDelay           = 300 * time.Millisecond
	DefaultMinFilterLength = 2
)

type GuardFunc func(r *http.Request) error

type Options struct {
	ProvincesPath string
	DistrictsPath string
	CommunesPath  string
	VillagesPath  string
	LicensesPath  string
	OpenAPIPath   string

	ProvinceParam string
	DistrictParam string
	CommuneParam  string
	SearchParam   string

	MinFilterLength int
	LicenseLimit    int
	Delay           time.Duration
	Guard           GuardFunc

	Store   Store
	Logger  *slog.Logger
	Metrics *Metrics
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		ProvincesPath:   "/api/address/provinces",
		DistrictsPath:   "/api/address/districts",
		CommunesPath:    "/api/address/communes",
		VillagesPath:    "/api/address/villages",
		LicensesPath:    "/api/licenses/search",
		OpenAPIPath:     "/api/openapi.json",
		ProvinceParam:   "province_code",
		DistrictParam:   "district_code",
		CommuneParam:    "commune_code",
		SearchParam:     "q",
		MinFilterLength: DefaultMinFilterLength,
		LicenseLimit:    DefaultLicenseLimit,
		Delay:           DefaultDelay,
	}
}

// NewOptions applies fns over DefaultOptions and restores defaults for any
// value left empty. A negative delay is treated as zero.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	defaults := DefaultOptions()
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&opts.ProvincesPath, defaults.ProvincesPath)
	fill(&opts.DistrictsPath, defaults.DistrictsPath)
	fill(&opts.CommunesPath, defaults.CommunesPath)
	fill(&opts.VillagesPath, defaults.VillagesPath)
	fill(&opts.LicensesPath, defaults.LicensesPath)
	fill(&opts.OpenAPIPath, defaults.OpenAPIPath)
	fill(&opts.ProvinceParam, defaults.ProvinceParam)
	fill(&opts.DistrictParam, defaults.DistrictParam)
	fill(&opts.CommuneParam, defaults.CommuneParam)
	fill(&opts.SearchParam, defaults.SearchParam)

	if opts.MinFilterLength < 0 {
		opts.MinFilterLength = 0
	}
	if opts.LicenseLimit <= 0 {
		opts.LicenseLimit = DefaultLicenseLimit
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

func WithDelay(delay time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Delay = delay
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithStore sets the data source. A nil store falls back to the embedded
// fixtures.
func WithStore(store Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = store
	}
}

// WithFixtures serves fixtures from a MemoryStore.
func WithFixtures(fixtures Fixtures) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = NewMemoryStore(fixtures)
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithMetrics(metrics *Metrics) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Metrics = metrics
	}
}

func WithLicenseLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LicenseLimit = limit
	}
}

func WithMinFilterLength(n int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MinFilterLength = n
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}
