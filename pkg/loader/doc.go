// Package loader reads form configurations from JSON or YAML documents.
//
// A document holds a `forms` map keyed by form id:
//
//	forms:
//	  job-application:
//	    pages:
//	      - id: personal
//	        fields: [...]
//
// Every loaded form is validated with model.FormConfig.Validate, and inline
// SVG icons are sanitized before the form is stored.
package loader
