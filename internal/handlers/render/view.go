package render

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"commuterhythm/internal/models"
	"commuterhythm/internal/thumbnails"
)

const (
	youtubeWatchURL  = "https://www.youtube.com/watch?v="
	youtubeSearchURL = "https://www.youtube.com/results?search_query="
)

// OriginUIConfig is the display configuration for an origin, supplied by
// the handlers package
type OriginUIConfig struct {
	Label      string
	BadgeClass string
	Color      string
}

// CardView is one song as the templates see it
type CardView struct {
	Number         string
	Title          string
	Artist         string
	Reason         string
	OriginLabel    string
	OriginClass    string
	ImageURL       string
	ImageFallbacks string // space separated, consumed by the onerror handler
	ListenURL      string
	HasVideo       bool
	Featured       bool
}

// IssueView drives the swappable issue fragment
type IssueView struct {
	Theme          string
	Placeholder    string
	Status         string
	Loading        bool
	Failed         bool
	ShowResults    bool
	ShowHero       bool
	ErrorMessage   string
	Featured       *CardView
	Playlist       []CardView
	Sources        []models.Source
	IssuanceLabel  string
	IdlePrompt     string
	HeroImageURL   string
	EditorialQuote string

	// SwapForm also renders the theme form for an out-of-band swap, so an
	// HTMX update keeps it in step with the issue
	SwapForm bool
}

// PageView is the full magazine page
type PageView struct {
	Lang           string
	Masthead       string
	EditorialIntro string
	Presets        []string
	OriginCSS      template.CSS
	Issue          IssueView
}

// SongResponse is a song in the JSON API, with its rendering hints
type SongResponse struct {
	models.Song
	Number      string   `json:"number"`
	Featured    bool     `json:"featured"`
	OriginLabel string   `json:"origin_label"`
	ListenURL   string   `json:"listen_url"`
	Thumbnails  []string `json:"thumbnails"`
}

// IssueResponse is the JSON form of an issue state
type IssueResponse struct {
	Theme           string             `json:"theme"`
	Status          models.IssueStatus `json:"status"`
	HasStarted      bool               `json:"has_started"`
	ErrorMessage    string             `json:"error_message,omitempty"`
	IssuedAt        *time.Time         `json:"issued_at,omitempty"`
	Recommendations []SongResponse     `json:"recommendations"`
	Sources         []models.Source    `json:"sources"`
}

// ListenURL links to the verified video, or to a search when none is known
func ListenURL(song models.Song) string {
	if song.HasVideo() {
		return youtubeWatchURL + song.VideoID
	}
	return youtubeSearchURL + url.QueryEscape(song.Artist+" "+song.Title)
}

// TrackNumber formats a zero-based position as "#01", "#02", ...
func TrackNumber(index int) string {
	return fmt.Sprintf("#%02d", index+1)
}

func (r *IssueRenderer) buildCard(song models.Song, index int, featured bool) CardView {
	size := thumbnails.ListSize
	if featured {
		size = thumbnails.FeaturedSize
	}
	resolver := thumbnails.NewResolver(song, index, size)
	ui := r.originUI(song.Origin)

	return CardView{
		Number:         TrackNumber(index),
		Title:          song.Title,
		Artist:         song.Artist,
		Reason:         song.Reason,
		OriginLabel:    ui.Label,
		OriginClass:    ui.BadgeClass,
		ImageURL:       resolver.Current(),
		ImageFallbacks: strings.Join(resolver.Fallbacks(), " "),
		ListenURL:      ListenURL(song),
		HasVideo:       song.HasVideo(),
		Featured:       featured,
	}
}
