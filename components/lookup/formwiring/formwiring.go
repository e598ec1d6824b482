// Package formwiring builds form fields wired to the lookup component's
// endpoints, so a form and the handlers serving it agree on paths and
// parameter names.
package formwiring

import (
	"strings"

	"github.com/goliatone/go-formflow/components/lookup"
	"github.com/goliatone/go-formflow/pkg/model"
)

// Address field names produced by AddressFields.
const (
	FieldProvince = "province"
	FieldDistrict = "district"
	FieldCommune  = "commune"
	FieldVillage  = "village"
)

// AddressFields returns the province, district, commune and village
// selects. Each level depends on the ones above it, clears when they change
// and queries its endpoint with the parent's code.
//
// The fields occupy row 4 onward in a 12-column grid, two per row.
func AddressFields(basePath string, fns ...lookup.OptionFn) []model.Field {
	opts := lookup.NewOptions(fns...)
	url := func(e lookup.Endpoint) string {
		return lookup.MountPath(basePath, e, func(o *lookup.Options) { *o = opts })
	}

	return []model.Field{
		addressField(FieldProvince, "ខេត្ត/ក្រុង", "ជ្រើសរើសខេត្ត...", "សូមជ្រើសរើសខេត្ត", 4,
			model.Lookup{Endpoint: url(lookup.EndpointProvinces)}),
		addressField(FieldDistrict, "ស្រុក/ក្រុង", "ជ្រើសរើសស្រុក...", "សូមជ្រើសរើសស្រុក", 4,
			model.Lookup{
				Endpoint: url(lookup.EndpointDistricts),
				Params:   map[string]string{opts.ProvinceParam: FieldProvince + ".code"},
			},
			FieldProvince),
		addressField(FieldCommune, "ឃុំ/សង្កាត់", "ជ្រើសរើសឃុំ...", "ជ្រើសរើសឃុំ/សង្កាត់", 5,
			model.Lookup{
				Endpoint: url(lookup.EndpointCommunes),
				Params:   map[string]string{opts.DistrictParam: FieldDistrict + ".code"},
			},
			FieldDistrict, FieldProvince),
		addressField(FieldVillage, "ភូមិ", "ជ្រើសរើសភូមិ...", "ជ្រើសរើសភូមិ", 5,
			model.Lookup{
				Endpoint: url(lookup.EndpointVillages),
				Params:   map[string]string{opts.CommuneParam: FieldCommune + ".code"},
			},
			FieldCommune, FieldDistrict, FieldProvince),
	}
}

func addressField(name, label, placeholder, message string, row int, lk model.Lookup, dependsOn ...string) model.Field {
	lk.LabelKey = "name_kh"
	lk.ValueKey = "code"
	field := model.Field{
		Name:      name,
		Label:     label,
		Component: "UAddress",
		Type:      "select",
		Rule:      model.Object().WithMessage(message),
		Row:       row,
		ColSpan:   6,
		Lookup:    &lk,
		Props: map[string]any{
			"placeholder": placeholder,
			"searchable":  true,
			"clearable":   len(dependsOn) == 0,
		},
		ClearOnChange: model.Bool(true),
	}
	if len(dependsOn) > 0 {
		field.DependsOn = dependsOn
	}
	return field
}

// LicenseLookup returns the lookup descriptor for the license search
// endpoint. Searches shorter than the handler's minimum filter length are
// not issued.
func LicenseLookup(basePath string, fns ...lookup.OptionFn) model.Lookup {
	opts := lookup.NewOptions(fns...)
	return model.Lookup{
		Endpoint: lookup.MountPath(basePath, lookup.EndpointLicenses, func(o *lookup.Options) {
			*o = opts
		}),
		SearchParam: opts.SearchParam,
		LabelKey:    "name",
		ValueKey:    "code",
		MinChars:    opts.MinFilterLength,
	}
}

// LicenseSearchField returns an async select bound to the license search.
// The selected license object is unwrapped to its code before validation.
func LicenseSearchField(name, basePath string, fns ...lookup.OptionFn) model.Field {
	lk := LicenseLookup(basePath, fns...)
	return model.Field{
		Name:      name,
		Label:     "ស្វែងរកអាជ្ញាប័ណ្ណ",
		Component: "UAsyncSelect",
		Type:      "select",
		Rule:      model.String().Min(1, "សូមជ្រើសរើសអាជ្ញាប័ណ្ណ").UnwrapKey("value"),
		ColSpan:   12,
		Lookup:    &lk,
		Props: map[string]any{
			"placeholder": "ស្វែងរក...",
			"searchable":  true,
		},
	}
}

// Rebase returns a copy of cfg whose lookup endpoints pointing at a default
// lookup route are remounted under basePath with the configured paths.
// Foreign endpoints are left alone.
func Rebase(cfg model.FormConfig, basePath string, fns ...lookup.OptionFn) model.FormConfig {
	opts := lookup.NewOptions(fns...)
	defaults := lookup.DefaultOptions()
	routes := make(map[string]lookup.Endpoint, len(lookup.Endpoints()))
	for _, e := range lookup.Endpoints() {
		routes[defaults.Path(e)] = e
	}

	return cfg.MapFields(func(field model.Field) model.Field {
		if field.Lookup == nil {
			return field
		}
		e, ok := routes[strings.TrimSpace(field.Lookup.Endpoint)]
		if !ok {
			return field
		}
		lk := *field.Lookup
		lk.Endpoint = lookup.MountPath(basePath, e, func(o *lookup.Options) { *o = opts })
		lk.Params = renameParams(lk.Params, defaults, opts)
		if lk.SearchParam == defaults.SearchParam {
			lk.SearchParam = opts.SearchParam
		}
		field.Lookup = &lk
		return field
	})
}

func renameParams(params map[string]string, from, to lookup.Options) map[string]string {
	if params == nil {
		return nil
	}
	names := map[string]string{
		from.ProvinceParam: to.ProvinceParam,
		from.DistrictParam: to.DistrictParam,
		from.CommuneParam:  to.CommuneParam,
	}
	out := make(map[string]string, len(params))
	for key, path := range params {
		if renamed, ok := names[key]; ok {
			key = renamed
		}
		out[key] = path
	}
	return out
}
