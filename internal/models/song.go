package models

import (
	"regexp"
	"strings"
)

// Origin classifies a recommended song as domestic or foreign repertoire
type Origin string

const (
	OriginKorean        Origin = "Korean"
	OriginInternational Origin = "International"
)

// Contractual shape of one issue
const (
	IssueSize             = 7
	KoreanPerIssue        = 5
	InternationalPerIssue = 2
	DefaultSourceTitle    = "Reference"
	youtubeVideoIDLength  = 11
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Song is one recommendation as returned by the curation model.
// Songs are produced fresh per request and never mutated afterwards.
type Song struct {
	Title   string `json:"title" validate:"required,notblank"`
	Artist  string `json:"artist" validate:"required,notblank"`
	Reason  string `json:"reason" validate:"required,notblank"`
	Origin  Origin `json:"origin" validate:"required,oneof=Korean International"`
	VideoID string `json:"videoId" validate:"omitempty,videoid"`
}

// HasVideo reports whether the song carries a usable YouTube video id
func (s Song) HasVideo() bool {
	return IsValidVideoID(s.VideoID)
}

// IsKorean reports whether the song belongs to the local scene
func (s Song) IsKorean() bool {
	return s.Origin == OriginKorean
}

// IsValidVideoID checks the 11 character YouTube identifier format
func IsValidVideoID(id string) bool {
	return len(id) == youtubeVideoIDLength && videoIDPattern.MatchString(id)
}

// Source is a grounding citation returned alongside the recommendations
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// NewSource builds a Source, substituting a placeholder title when absent
func NewSource(title, uri string) Source {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultSourceTitle
	}
	return Source{Title: title, URI: strings.TrimSpace(uri)}
}

// RecommendationResult is one issue's worth of songs plus their citations.
// The first song is the featured pick, the remainder form the playlist.
type RecommendationResult struct {
	Recommendations []Song   `json:"recommendations"`
	Sources         []Source `json:"sources,omitempty"`
}

// Featured returns the cover story, if any
func (r *RecommendationResult) Featured() (Song, bool) {
	if r == nil || len(r.Recommendations) == 0 {
		return Song{}, false
	}
	return r.Recommendations[0], true
}

// Playlist returns every song after the featured pick, order preserved
func (r *RecommendationResult) Playlist() []Song {
	if r == nil || len(r.Recommendations) < 2 {
		return nil
	}
	return r.Recommendations[1:]
}

// OriginCounts tallies the songs per origin
func (r *RecommendationResult) OriginCounts() map[Origin]int {
	counts := make(map[Origin]int, 2)
	if r == nil {
		return counts
	}
	for _, song := range r.Recommendations {
		counts[song.Origin]++
	}
	return counts
}

// MatchesContract reports whether the result has the promised 7 songs split 5:2
func (r *RecommendationResult) MatchesContract() bool {
	if r == nil || len(r.Recommendations) != IssueSize {
		return false
	}
	counts := r.OriginCounts()
	return counts[OriginKorean] == KoreanPerIssue && counts[OriginInternational] == InternationalPerIssue
}
