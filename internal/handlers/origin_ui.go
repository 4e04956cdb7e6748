package handlers

import (
	"fmt"
	"sort"
	"strings"

	"commuterhythm/internal/handlers/render"
	"commuterhythm/internal/models"
)

// originUIRegistry holds UI configuration for every known origin
var originUIRegistry = map[models.Origin]*render.OriginUIConfig{
	models.OriginKorean: {
		Label:      "Local Scene",
		BadgeClass: "origin-local",
		Color:      "#111111",
	},
	models.OriginInternational: {
		Label:      "International Archive",
		BadgeClass: "origin-international",
		Color:      "#8A8A8A",
	},
}

// GetOriginUIConfig returns UI configuration for an origin
func GetOriginUIConfig(origin models.Origin) *render.OriginUIConfig {
	if config, exists := originUIRegistry[origin]; exists {
		return config
	}

	// Unknown origins get a neutral badge
	slug := originSlug(origin)
	return &render.OriginUIConfig{
		Label:      string(origin),
		BadgeClass: "origin-" + slug,
		Color:      "#666666",
	}
}

// GetOriginCSS generates CSS variables for origin colors
func GetOriginCSS() string {
	origins := make([]string, 0, len(originUIRegistry))
	for origin := range originUIRegistry {
		origins = append(origins, string(origin))
	}
	sort.Strings(origins)

	var css strings.Builder
	css.WriteString(":root {\n")
	for _, origin := range origins {
		config := originUIRegistry[models.Origin(origin)]
		fmt.Fprintf(&css, "  --color-origin-%s: %s;\n", originSlug(models.Origin(origin)), config.Color)
	}
	css.WriteString("}\n")
	return css.String()
}

func originSlug(origin models.Origin) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(origin))), " ", "-")
}
