package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"commuterhythm/internal/handlers/render"
	"commuterhythm/internal/models"
)

func TestGetOriginUIConfig(t *testing.T) {
	tests := []struct {
		name     string
		origin   models.Origin
		expected render.OriginUIConfig
	}{
		{
			name:   "Korean configuration",
			origin: models.OriginKorean,
			expected: render.OriginUIConfig{
				Label:      "Local Scene",
				BadgeClass: "origin-local",
				Color:      "#111111",
			},
		},
		{
			name:   "International configuration",
			origin: models.OriginInternational,
			expected: render.OriginUIConfig{
				Label:      "International Archive",
				BadgeClass: "origin-international",
				Color:      "#8A8A8A",
			},
		},
		{
			name:   "Unknown origin",
			origin: models.Origin("Latin Wave"),
			expected: render.OriginUIConfig{
				Label:      "Latin Wave",
				BadgeClass: "origin-latin-wave",
				Color:      "#666666",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetOriginUIConfig(tt.origin)
			assert.Equal(t, tt.expected, *config)
		})
	}
}

func TestGetOriginCSS(t *testing.T) {
	css := GetOriginCSS()

	assert.Contains(t, css, ":root {")
	assert.Contains(t, css, "--color-origin-korean: #111111;")
	assert.Contains(t, css, "--color-origin-international: #8A8A8A;")
	assert.Less(t, strings.Index(css, "international"), strings.Index(css, "korean"), "variables are emitted in a stable order")
}
