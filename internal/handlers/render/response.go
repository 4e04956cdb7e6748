package render

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"commuterhythm/internal/config"
	"commuterhythm/internal/i18n"
	"commuterhythm/internal/models"
	"commuterhythm/internal/templates"
	"commuterhythm/internal/thumbnails"
)

// IssueRenderer turns issue snapshots into pages, fragments and JSON.
// Rendering is a pure function of the snapshot and the current curation copy.
type IssueRenderer struct {
	originUI  func(models.Origin) *OriginUIConfig
	originCSS string
	curation  func() *config.CurationConfig
	localizer *i18n.Localizer
	now       func() time.Time
}

// NewIssueRenderer creates a new issue renderer
func NewIssueRenderer(originUI func(models.Origin) *OriginUIConfig, originCSS string, curation func() *config.CurationConfig, localizer *i18n.Localizer) *IssueRenderer {
	if originUI == nil {
		originUI = func(o models.Origin) *OriginUIConfig { return &OriginUIConfig{Label: string(o)} }
	}
	if curation == nil {
		curation = config.DefaultCurationConfig
	}
	if localizer == nil {
		localizer = i18n.NewLocalizer("")
	}
	return &IssueRenderer{
		originUI:  originUI,
		originCSS: originCSS,
		curation:  curation,
		localizer: localizer,
		now:       time.Now,
	}
}

// BuildIssueView maps a snapshot onto the issue fragment
func (r *IssueRenderer) BuildIssueView(state *models.IssueState, locale language.Tag) IssueView {
	curation := r.curation()
	view := IssueView{
		Theme:          state.Theme,
		Placeholder:    r.localizer.Translate(locale, i18n.MsgThemePlaceholder),
		Status:         string(state.Status),
		Loading:        state.IsLoading(),
		Failed:         state.Status == models.StatusFailed,
		ShowResults:    state.ShowResults(),
		ShowHero:       !state.HasStarted && !state.IsLoading(),
		ErrorMessage:   state.ErrorMessage,
		IssuanceLabel:  IssuanceDate(r.now()),
		IdlePrompt:     r.localizer.Translate(locale, i18n.MsgIdlePrompt),
		HeroImageURL:   curation.HeroImageURL,
		EditorialQuote: curation.EditorialQuote,
	}

	if !view.ShowResults {
		return view
	}

	if featured, ok := state.Featured(); ok {
		card := r.buildCard(featured, 0, true)
		view.Featured = &card
	}
	for i, song := range state.Playlist() {
		view.Playlist = append(view.Playlist, r.buildCard(song, i+1, false))
	}
	view.Sources = state.Sources
	return view
}

// BuildPageView maps a snapshot onto the full page
func (r *IssueRenderer) BuildPageView(state *models.IssueState, locale language.Tag) PageView {
	curation := r.curation()
	return PageView{
		Lang:           locale.String(),
		Masthead:       MastheadDate(r.now()),
		EditorialIntro: curation.EditorialIntro,
		Presets:        curation.PresetThemes,
		OriginCSS:      template.CSS(r.originCSS),
		Issue:          r.BuildIssueView(state, locale),
	}
}

// BuildIssueResponse maps a snapshot onto the JSON API shape
func (r *IssueRenderer) BuildIssueResponse(state *models.IssueState) IssueResponse {
	resp := IssueResponse{
		Theme:           state.Theme,
		Status:          state.Status,
		HasStarted:      state.HasStarted,
		ErrorMessage:    state.ErrorMessage,
		Recommendations: make([]SongResponse, 0, len(state.Results)),
		Sources:         state.Sources,
	}
	if resp.Sources == nil {
		resp.Sources = []models.Source{}
	}
	if !state.IssuedAt.IsZero() {
		issuedAt := state.IssuedAt
		resp.IssuedAt = &issuedAt
	}

	for i, song := range state.Results {
		card := r.buildCard(song, i, i == 0)
		size := thumbnails.ListSize
		if card.Featured {
			size = thumbnails.FeaturedSize
		}
		resp.Recommendations = append(resp.Recommendations, SongResponse{
			Song:        song,
			Number:      card.Number,
			Featured:    card.Featured,
			OriginLabel: card.OriginLabel,
			ListenURL:   card.ListenURL,
			Thumbnails:  thumbnails.Chain(song, i, size),
		})
	}
	return resp
}

// RenderIssueJSON renders the issue as JSON
func (r *IssueRenderer) RenderIssueJSON(c *gin.Context, status int, state *models.IssueState) {
	c.JSON(status, r.BuildIssueResponse(state))
}

// RenderPage renders the whole magazine page
func (r *IssueRenderer) RenderPage(c *gin.Context, state *models.IssueState, locale language.Tag) {
	r.execute(c, "index", r.BuildPageView(state, locale))
}

// RenderIssueFragment renders only the swappable issue section
func (r *IssueRenderer) RenderIssueFragment(c *gin.Context, state *models.IssueState, locale language.Tag) {
	view := r.BuildIssueView(state, locale)
	view.SwapForm = true
	r.execute(c, "issue", view)
}

func (r *IssueRenderer) execute(c *gin.Context, name string, data any) {
	tmpl, err := templates.GetTemplate(name)
	if err != nil {
		slog.Error("Failed to load template", "template", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Template error"})
		return
	}

	// Render into a buffer so a failing template never leaves half a page
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("Failed to render template", "template", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Render error"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
