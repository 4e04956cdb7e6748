package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSongValidator_ValidateSong(t *testing.T) {
	sv := NewSongValidator()

	valid := Song{Title: "Ditto", Artist: "NewJeans", Reason: "겨울 아침의 입김 같은 곡.", Origin: OriginKorean}

	tests := []struct {
		name      string
		mutate    func(s *Song)
		wantField string
	}{
		{"valid without video", func(s *Song) {}, ""},
		{"valid with video", func(s *Song) { s.VideoID = "pSUydWEqKwE" }, ""},
		{"missing title", func(s *Song) { s.Title = "" }, "title"},
		{"blank artist", func(s *Song) { s.Artist = "   " }, "artist"},
		{"missing reason", func(s *Song) { s.Reason = "" }, "reason"},
		{"unknown origin", func(s *Song) { s.Origin = "Japanese" }, "origin"},
		{"lowercase origin", func(s *Song) { s.Origin = "korean" }, "origin"},
		{"fabricated video id", func(s *Song) { s.VideoID = "abc" }, "videoId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			song := valid
			tt.mutate(&song)

			err := sv.ValidateSong(3, song)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, 3, schemaErr.Index)
			assert.Contains(t, schemaErr.Fields, tt.wantField)
			assert.Contains(t, err.Error(), "recommendation 3 invalid")
		})
	}
}

func TestSongValidator_ValidateSongs(t *testing.T) {
	sv := NewSongValidator()

	assert.Error(t, sv.ValidateSongs(nil))
	assert.NoError(t, sv.ValidateSongs(sampleIssue().Recommendations))

	songs := sampleIssue().Recommendations
	songs[4].Reason = ""
	err := sv.ValidateSongs(songs)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 4, schemaErr.Index)
}
