package thumbnails

import (
	"fmt"
	"hash/fnv"
	"net/url"

	"commuterhythm/internal/models"
)

// Size is the pixel box requested from the stock photo provider
type Size struct {
	Width  int
	Height int
}

var (
	FeaturedSize = Size{Width: 800, Height: 1000}
	ListSize     = Size{Width: 400, Height: 400}
)

const (
	youtubeThumbnailBase = "https://i.ytimg.com/vi/"
	stockPhotoBase       = "https://loremflickr.com"
	stockLockRange       = 1000
)

// Video thumbnail qualities, best first
var videoQualities = []string{"hqdefault", "mqdefault"}

// Stock photo keywords per origin
var stockKeywords = map[models.Origin]string{
	models.OriginKorean:        "korea,city,music",
	models.OriginInternational: "vinyl,music,concert",
}

// Resolver walks an ordered list of image URLs for one card. It is not safe
// for concurrent use; each rendered card owns its own resolver.
type Resolver struct {
	candidates []string
	pos        int
}

// NewResolver builds the preference chain for a song at a display position
func NewResolver(song models.Song, index int, size Size) *Resolver {
	return &Resolver{candidates: Chain(song, index, size)}
}

// Current returns the preferred URL that has not failed yet
func (r *Resolver) Current() string {
	return r.candidates[r.pos]
}

// ReportLoadFailure demotes to the next candidate. It returns false once the
// last candidate is reached; the resolver then stays there.
func (r *Resolver) ReportLoadFailure() bool {
	if r.pos >= len(r.candidates)-1 {
		return false
	}
	r.pos++
	return true
}

// Exhausted reports whether only the terminal fallback remains
func (r *Resolver) Exhausted() bool {
	return r.pos == len(r.candidates)-1
}

// Fallbacks returns the candidates after the current one, in order
func (r *Resolver) Fallbacks() []string {
	return append([]string(nil), r.candidates[r.pos+1:]...)
}

// Chain returns every candidate URL for a song, best first. Songs without a
// usable video id go straight to the stock photo.
func Chain(song models.Song, index int, size Size) []string {
	var chain []string
	if song.HasVideo() {
		for _, quality := range videoQualities {
			chain = append(chain, VideoThumbnailURL(song.VideoID, quality))
		}
	}
	return append(chain, StockPhotoURL(song, index, size))
}

// VideoThumbnailURL builds a YouTube still URL for the given quality
func VideoThumbnailURL(videoID, quality string) string {
	return youtubeThumbnailBase + url.PathEscape(videoID) + "/" + quality + ".jpg"
}

// StockPhotoURL is the terminal fallback. The lock parameter pins the photo so
// the same song keeps the same image across renders.
func StockPhotoURL(song models.Song, index int, size Size) string {
	keywords, ok := stockKeywords[song.Origin]
	if !ok {
		keywords = "music"
	}
	return fmt.Sprintf("%s/%d/%d/%s?lock=%d", stockPhotoBase, size.Width, size.Height, keywords, StableLock(song, index))
}

// StableLock derives a deterministic photo id from the song identity
func StableLock(song models.Song, index int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(song.Title + song.Artist))
	lock := int(h.Sum32()%stockLockRange) + index
	if lock < 0 {
		lock = 0
	}
	return lock
}
