package testutil

import (
	"commuterhythm/internal/models"
)

// SongBuilder provides a fluent interface for creating test songs
type SongBuilder struct {
	song models.Song
}

// NewSongBuilder creates a new song builder with default values
func NewSongBuilder() *SongBuilder {
	return &SongBuilder{
		song: models.Song{
			Title:  "Test Song",
			Artist: "Test Artist",
			Reason: "A steady pulse for a crowded train.",
			Origin: models.OriginKorean,
		},
	}
}

func (b *SongBuilder) WithTitle(title string) *SongBuilder {
	b.song.Title = title
	return b
}

func (b *SongBuilder) WithArtist(artist string) *SongBuilder {
	b.song.Artist = artist
	return b
}

func (b *SongBuilder) WithReason(reason string) *SongBuilder {
	b.song.Reason = reason
	return b
}

// International marks the song as foreign repertoire
func (b *SongBuilder) International() *SongBuilder {
	b.song.Origin = models.OriginInternational
	return b
}

func (b *SongBuilder) WithVideoID(id string) *SongBuilder {
	b.song.VideoID = id
	return b
}

// Build returns the constructed song
func (b *SongBuilder) Build() models.Song {
	return b.song
}

// Common test data
var (
	TestVideoID1 = "11cta61wi0g"
	TestVideoID2 = "3bNITQR4Uso"
)

// SampleRecommendations returns a full issue: five Korean songs and two
// international ones, the first carrying a verified video id
func SampleRecommendations() *models.RecommendationResult {
	return &models.RecommendationResult{
		Recommendations: []models.Song{
			NewSongBuilder().WithTitle("Hype Boy").WithArtist("NewJeans").WithVideoID(TestVideoID1).Build(),
			NewSongBuilder().WithTitle("Blueming").WithArtist("IU").Build(),
			NewSongBuilder().WithTitle("Plastic Love").WithArtist("Mariya Takeuchi").International().WithVideoID(TestVideoID2).Build(),
			NewSongBuilder().WithTitle("Wi ing Wi ing").WithArtist("HYUKOH").Build(),
			NewSongBuilder().WithTitle("Love Poem").WithArtist("IU").Build(),
			NewSongBuilder().WithTitle("Tomboy").WithArtist("HYUKOH").Build(),
			NewSongBuilder().WithTitle("Get Lucky").WithArtist("Daft Punk").International().Build(),
		},
		Sources: []models.Source{
			models.NewSource("youtube.com", "https://www.youtube.com/watch?v="+TestVideoID1),
		},
	}
}

// AlternateRecommendations returns a second, distinct full issue
func AlternateRecommendations() *models.RecommendationResult {
	return &models.RecommendationResult{
		Recommendations: []models.Song{
			NewSongBuilder().WithTitle("Midnight City").WithArtist("M83").International().Build(),
			NewSongBuilder().WithTitle("밤편지").WithArtist("아이유").Build(),
			NewSongBuilder().WithTitle("Square").WithArtist("백예린").Build(),
			NewSongBuilder().WithTitle("Bye bye my blue").WithArtist("백예린").Build(),
			NewSongBuilder().WithTitle("Ditto").WithArtist("NewJeans").Build(),
			NewSongBuilder().WithTitle("Dynamite").WithArtist("BTS").Build(),
			NewSongBuilder().WithTitle("Redbone").WithArtist("Childish Gambino").International().Build(),
		},
	}
}
