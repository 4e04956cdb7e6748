package render

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"commuterhythm/internal/config"
	"commuterhythm/internal/i18n"
	"commuterhythm/internal/models"
	"commuterhythm/internal/testutil"
	"commuterhythm/internal/thumbnails"
)

var issueDay = time.Date(2026, time.October, 18, 8, 30, 0, 0, time.UTC)

func testOriginUI(origin models.Origin) *OriginUIConfig {
	if origin == models.OriginKorean {
		return &OriginUIConfig{Label: "Local Scene", BadgeClass: "origin-local"}
	}
	return &OriginUIConfig{Label: "International Archive", BadgeClass: "origin-international"}
}

func newTestRenderer() *IssueRenderer {
	r := NewIssueRenderer(testOriginUI, ":root { --color-origin-korean: #111111; }", config.DefaultCurationConfig, i18n.NewLocalizer("ko"))
	r.now = func() time.Time { return issueDay }
	return r
}

func readyState() *models.IssueState {
	sample := testutil.SampleRecommendations()
	state := models.NewIssueState()
	state.Theme = "Rainy"
	state.Status = models.StatusReady
	state.HasStarted = true
	state.Results = sample.Recommendations
	state.Sources = sample.Sources
	state.IssuedAt = issueDay
	return state
}

func TestListenURL(t *testing.T) {
	withVideo := testutil.NewSongBuilder().WithVideoID(testutil.TestVideoID1).Build()
	assert.Equal(t, "https://www.youtube.com/watch?v="+testutil.TestVideoID1, ListenURL(withVideo))

	noVideo := testutil.NewSongBuilder().WithTitle("Hype Boy").WithArtist("NewJeans").Build()
	assert.Equal(t, "https://www.youtube.com/results?search_query=NewJeans+Hype+Boy", ListenURL(noVideo))

	malformed := testutil.NewSongBuilder().WithTitle("밤편지").WithArtist("아이유").WithVideoID("short").Build()
	assert.Equal(t, "https://www.youtube.com/results?search_query=%EC%95%84%EC%9D%B4%EC%9C%A0+%EB%B0%A4%ED%8E%B8%EC%A7%80", ListenURL(malformed))
}

func TestTrackNumber(t *testing.T) {
	assert.Equal(t, "#01", TrackNumber(0))
	assert.Equal(t, "#02", TrackNumber(1))
	assert.Equal(t, "#07", TrackNumber(6))
	assert.Equal(t, "#12", TrackNumber(11))
}

func TestBuildIssueView_Idle(t *testing.T) {
	r := newTestRenderer()

	view := r.BuildIssueView(models.NewIssueState(), language.Korean)

	assert.Equal(t, "idle", view.Status)
	assert.True(t, view.ShowHero)
	assert.False(t, view.ShowResults)
	assert.False(t, view.Loading)
	assert.Nil(t, view.Featured)
	assert.Empty(t, view.Playlist)
	assert.Equal(t, "18th of October 2026", view.IssuanceLabel)
	assert.Equal(t, "오늘의 감성을 입력하고 매거진을 발행하세요.", view.IdlePrompt)
	assert.Equal(t, config.DefaultCurationConfig().HeroImageURL, view.HeroImageURL)
}

func TestBuildIssueView_Loading(t *testing.T) {
	r := newTestRenderer()
	state := readyState()
	state.Status = models.StatusLoading

	view := r.BuildIssueView(state, language.Korean)

	assert.True(t, view.Loading)
	assert.False(t, view.ShowHero)
	assert.False(t, view.ShowResults, "results are hidden while the next issue loads")
	assert.Nil(t, view.Featured)
}

func TestBuildIssueView_FailedKeepsResultsHidden(t *testing.T) {
	r := newTestRenderer()
	state := readyState()
	state.Status = models.StatusFailed
	state.ErrorMessage = "banner"

	view := r.BuildIssueView(state, language.Korean)

	assert.True(t, view.Failed)
	assert.Equal(t, "banner", view.ErrorMessage)
	assert.False(t, view.ShowResults)
	assert.False(t, view.ShowHero)
}

func TestBuildIssueView_Ready(t *testing.T) {
	r := newTestRenderer()

	view := r.BuildIssueView(readyState(), language.Korean)

	require.True(t, view.ShowResults)
	require.NotNil(t, view.Featured)
	assert.Equal(t, "Hype Boy", view.Featured.Title)
	assert.Equal(t, "#01", view.Featured.Number)
	assert.True(t, view.Featured.Featured)
	assert.Equal(t, thumbnails.VideoThumbnailURL(testutil.TestVideoID1, "hqdefault"), view.Featured.ImageURL)
	assert.Contains(t, view.Featured.ImageFallbacks, "mqdefault.jpg")
	assert.Contains(t, view.Featured.ImageFallbacks, "https://loremflickr.com/800/1000/korea,city,music?lock=")

	require.Len(t, view.Playlist, models.IssueSize-1)
	assert.Equal(t, "#02", view.Playlist[0].Number)
	assert.Equal(t, "Blueming", view.Playlist[0].Title)
	assert.Equal(t, "Local Scene", view.Playlist[0].OriginLabel)
	assert.Empty(t, view.Playlist[0].ImageFallbacks, "stock photo is the only candidate without a video")
	assert.Contains(t, view.Playlist[0].ImageURL, "https://loremflickr.com/400/400/korea,city,music?lock=")

	plasticLove := view.Playlist[1]
	assert.Equal(t, "#03", plasticLove.Number)
	assert.Equal(t, "International Archive", plasticLove.OriginLabel)
	assert.Equal(t, "origin-international", plasticLove.OriginClass)
	assert.True(t, plasticLove.HasVideo)

	assert.Len(t, view.Sources, 1)
	assert.Equal(t, config.DefaultCurationConfig().EditorialQuote, view.EditorialQuote)
}

func TestBuildPageView(t *testing.T) {
	r := newTestRenderer()

	page := r.BuildPageView(models.NewIssueState(), language.English)

	assert.Equal(t, "en", page.Lang)
	assert.Equal(t, "18th Oct 2026", page.Masthead)
	assert.Equal(t, "Enter a theme...", page.Issue.Placeholder)
	assert.Equal(t, []string{"City Pop", "Midnight", "Jazz", "Rainy", "K-Indie"}, page.Presets)
	assert.Contains(t, string(page.OriginCSS), "--color-origin-korean")
	assert.Equal(t, "Type today's mood and publish your issue.", page.Issue.IdlePrompt)
}

func TestBuildIssueResponse(t *testing.T) {
	r := newTestRenderer()

	resp := r.BuildIssueResponse(readyState())

	assert.Equal(t, models.StatusReady, resp.Status)
	require.NotNil(t, resp.IssuedAt)
	assert.True(t, resp.IssuedAt.Equal(issueDay))
	require.Len(t, resp.Recommendations, models.IssueSize)

	featured := resp.Recommendations[0]
	assert.True(t, featured.Featured)
	assert.Equal(t, "#01", featured.Number)
	assert.Len(t, featured.Thumbnails, 3)
	assert.Contains(t, featured.Thumbnails[2], "/800/1000/")

	last := resp.Recommendations[6]
	assert.False(t, last.Featured)
	assert.Equal(t, "#07", last.Number)
	assert.Equal(t, "International Archive", last.OriginLabel)
	assert.Len(t, last.Thumbnails, 1)
	assert.Contains(t, last.Thumbnails[0], "/400/400/vinyl,music,concert")
}

func TestBuildIssueResponse_IdleHasEmptyCollections(t *testing.T) {
	r := newTestRenderer()
	state := &models.IssueState{Status: models.StatusIdle}

	resp := r.BuildIssueResponse(state)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"recommendations":[]`)
	assert.Contains(t, string(data), `"sources":[]`)
	assert.NotContains(t, string(data), "issued_at")
}

func TestRenderIssueFragment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newTestRenderer()

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/issue", nil)

	r.RenderIssueFragment(c, readyState(), language.Korean)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/html; charset=utf-8", recorder.Header().Get("Content-Type"))

	body := recorder.Body.String()
	assert.Contains(t, body, "The Cover Story")
	assert.Contains(t, body, "Hype Boy")
	assert.Contains(t, body, "#07")
	assert.NotContains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `<form id="theme-form"`)
	assert.Contains(t, body, `hx-swap-oob="true"`)
	assert.Contains(t, body, `value="Rainy"`)
}

func TestRenderPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newTestRenderer()

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	state := models.NewIssueState()
	state.Status = models.StatusFailed
	state.Theme = "Rainy"
	state.ErrorMessage = "매거진 발행 중 오류가 발생했습니다."

	r.RenderPage(c, state, language.Korean)

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "18th Oct 2026")
	assert.Contains(t, body, "Iss. 18th of October 2026")
	assert.Contains(t, body, "매거진 발행 중 오류가 발생했습니다.")
	assert.Contains(t, body, `value="Rainy"`)
	assert.NotContains(t, body, "hx-swap-oob")
}

func TestRenderIssueJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newTestRenderer()

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	r.RenderIssueJSON(c, http.StatusBadGateway, &models.IssueState{Status: models.StatusFailed, ErrorMessage: "banner"})

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	var resp IssueResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusFailed, resp.Status)
	assert.Equal(t, "banner", resp.ErrorMessage)
}
