package thumbnails

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commuterhythm/internal/models"
)

func songWithVideo(id string) models.Song {
	return models.Song{
		Title:   "Hype Boy",
		Artist:  "NewJeans",
		Reason:  "아침 햇살 같은 베이스라인.",
		Origin:  models.OriginKorean,
		VideoID: id,
	}
}

func TestChain_WithVideoID(t *testing.T) {
	song := songWithVideo("11cta61wi0g")
	chain := Chain(song, 0, FeaturedSize)

	require.Len(t, chain, 3)
	assert.Equal(t, "https://i.ytimg.com/vi/11cta61wi0g/hqdefault.jpg", chain[0])
	assert.Equal(t, "https://i.ytimg.com/vi/11cta61wi0g/mqdefault.jpg", chain[1])
	assert.True(t, strings.HasPrefix(chain[2], "https://loremflickr.com/800/1000/korea,city,music?lock="))
}

func TestChain_WithoutVideoIDStartsAtStockPhoto(t *testing.T) {
	for _, id := range []string{"", "short", "way-too-long-video-id"} {
		t.Run(id, func(t *testing.T) {
			song := songWithVideo(id)
			r := NewResolver(song, 3, ListSize)

			assert.Equal(t, StockPhotoURL(song, 3, ListSize), r.Current())
			assert.True(t, r.Exhausted())
			assert.Empty(t, r.Fallbacks())
		})
	}
}

func TestResolver_AdvancesAndNeverCycles(t *testing.T) {
	song := songWithVideo("11cta61wi0g")
	r := NewResolver(song, 0, FeaturedSize)
	chain := Chain(song, 0, FeaturedSize)

	assert.Equal(t, chain[0], r.Current())
	assert.Equal(t, chain[1:], r.Fallbacks())
	assert.False(t, r.Exhausted())

	assert.True(t, r.ReportLoadFailure())
	assert.Equal(t, chain[1], r.Current())

	assert.True(t, r.ReportLoadFailure())
	assert.Equal(t, chain[2], r.Current())
	assert.True(t, r.Exhausted())

	for i := 0; i < 5; i++ {
		assert.False(t, r.ReportLoadFailure())
		assert.Equal(t, chain[2], r.Current())
	}
}

func TestStockPhotoURL_Deterministic(t *testing.T) {
	song := songWithVideo("")
	first := StockPhotoURL(song, 2, ListSize)
	second := StockPhotoURL(song, 2, ListSize)
	assert.Equal(t, first, second)

	assert.NotEqual(t, first, StockPhotoURL(song, 3, ListSize))
	assert.Contains(t, StockPhotoURL(song, 2, FeaturedSize), "/800/1000/")
}

func TestStockPhotoURL_KeywordsByOrigin(t *testing.T) {
	song := songWithVideo("")
	song.Origin = models.OriginInternational
	assert.Contains(t, StockPhotoURL(song, 0, ListSize), "/400/400/vinyl,music,concert?lock=")

	song.Origin = ""
	assert.Contains(t, StockPhotoURL(song, 0, ListSize), "/400/400/music?lock=")
}

func TestStableLock_Range(t *testing.T) {
	songs := []models.Song{
		{Title: "Plastic Love", Artist: "Mariya Takeuchi"},
		{Title: "밤편지", Artist: "아이유"},
		{Title: "", Artist: ""},
	}
	for _, song := range songs {
		lock := StableLock(song, 0)
		assert.GreaterOrEqual(t, lock, 0)
		assert.Less(t, lock, stockLockRange)
		assert.Equal(t, lock+6, StableLock(song, 6))
	}
}
