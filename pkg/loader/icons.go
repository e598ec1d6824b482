package loader

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// svgShapeAttrs are the geometry and paint attributes kept on drawing
// elements.
var svgShapeAttrs = []string{
	"d", "points", "cx", "cy", "r", "rx", "ry", "x", "y", "x1", "y1", "x2", "y2",
	"fill", "stroke", "stroke-width", "stroke-linecap", "stroke-linejoin", "class",
}

// svgAllowlist maps each permitted SVG element to its permitted attributes.
var svgAllowlist = map[string][]string{
	"svg": {
		"xmlns", "viewBox", "width", "height", "fill", "stroke", "stroke-width",
		"stroke-linecap", "stroke-linejoin", "aria-hidden", "role", "focusable", "class",
	},
	"path":     svgShapeAttrs,
	"circle":   svgShapeAttrs,
	"ellipse":  svgShapeAttrs,
	"rect":     svgShapeAttrs,
	"line":     svgShapeAttrs,
	"polyline": svgShapeAttrs,
	"polygon":  svgShapeAttrs,
	"g":        {"id"},
	"defs":     {"id"},
	"clipPath": {"id", "clipPathUnits"},
	"use":      {"href", "xlink:href", "clip-path"},
	"title":    nil,
	"desc":     nil,
}

var iconPolicy = sync.OnceValue(func() *bluemonday.Policy {
	policy := bluemonday.StrictPolicy()
	for element, attrs := range svgAllowlist {
		policy.AllowElements(element)
		if len(attrs) > 0 {
			policy.AllowAttrs(attrs...).OnElements(element)
		}
	}
	return policy
})

// SanitizeIcon cleans a page icon. Plain tokens such as "user" or
// "i-heroicons-user" are only trimmed; inline markup keeps the allowlisted
// SVG subset and collapses to "" when nothing survives.
func SanitizeIcon(raw string) string {
	icon := strings.TrimSpace(raw)
	if icon == "" || !strings.ContainsRune(icon, '<') {
		return icon
	}
	return strings.TrimSpace(iconPolicy().Sanitize(icon))
}
