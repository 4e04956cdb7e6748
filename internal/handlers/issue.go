package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"commuterhythm/internal/config"
	"commuterhythm/internal/handlers/render"
	"commuterhythm/internal/i18n"
	"commuterhythm/internal/models"
	"commuterhythm/internal/session"
)

const (
	// SessionCookieName carries the signed session token
	SessionCookieName = "cr_session"

	sessionContextKey = "session"
)

// IssueRequest represents the request to publish an issue for a theme
type IssueRequest struct {
	Theme string `json:"theme"`
}

// PresetsResponse lists the quick-submit themes
type PresetsResponse struct {
	Presets []string `json:"presets"`
}

// IssueHandler serves the magazine page and the issue API
type IssueHandler struct {
	store         *session.Store
	renderer      *render.IssueRenderer
	curation      func() *config.CurationConfig
	localizer     *i18n.Localizer
	secureCookies bool
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(store *session.Store, renderer *render.IssueRenderer, curation func() *config.CurationConfig, localizer *i18n.Localizer, secureCookies bool) *IssueHandler {
	if curation == nil {
		curation = config.DefaultCurationConfig
	}
	if localizer == nil {
		localizer = i18n.NewLocalizer("")
	}
	return &IssueHandler{
		store:         store,
		renderer:      renderer,
		curation:      curation,
		localizer:     localizer,
		secureCookies: secureCookies,
	}
}

// SessionMiddleware attaches the reader's session to the request, starting a
// new one when the cookie is missing or no longer valid. Every response
// re-issues the cookie so active readers keep their session.
func (h *IssueHandler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if raw, err := c.Cookie(SessionCookieName); err == nil && raw != "" {
			sess, err := h.store.Resolve(ctx, raw)
			if err == nil {
				if token, err := h.store.Token(sess); err == nil {
					h.setSessionCookie(c, token)
				} else {
					slog.Warn("Failed to refresh session token", "session_id", sess.ID, "error", err)
				}
				c.Set(sessionContextKey, sess)
				c.Next()
				return
			}
			slog.Debug("Discarding session cookie", "error", err)
		}

		if _, ok := h.startSession(c); !ok {
			return
		}
		c.Next()
	}
}

// Index handles GET / and always starts from a blank issue
func (h *IssueHandler) Index(c *gin.Context) {
	sess, ok := h.startSession(c)
	if !ok {
		return
	}
	h.renderer.RenderPage(c, sess.Controller.Snapshot(), sess.Locale)
}

// GetIssue handles GET /issue, which HTMX polls while an issue is loading
func (h *IssueHandler) GetIssue(c *gin.Context) {
	h.respond(c, currentSession(c))
}

// SubmitIssue handles POST /issue with a form-encoded theme
func (h *IssueHandler) SubmitIssue(c *gin.Context) {
	sess := currentSession(c)
	theme := c.PostForm("theme")

	if !sess.Controller.Submit(c.Request.Context(), theme) {
		slog.Debug("Issue submission ignored", "session_id", sess.ID, "theme", theme)
	}
	h.respond(c, sess)
}

// RetryIssue handles POST /issue/retry from the error panel
func (h *IssueHandler) RetryIssue(c *gin.Context) {
	sess := currentSession(c)
	sess.Controller.Retry(c.Request.Context())
	h.respond(c, sess)
}

// RefreshIssue handles POST /issue/refresh from the editorial note
func (h *IssueHandler) RefreshIssue(c *gin.Context) {
	sess := currentSession(c)
	sess.Controller.Refresh(c.Request.Context())
	h.respond(c, sess)
}

// GetIssueJSON handles GET /api/v1/issue
func (h *IssueHandler) GetIssueJSON(c *gin.Context) {
	sess := currentSession(c)
	h.renderer.RenderIssueJSON(c, http.StatusOK, sess.Controller.Snapshot())
}

// CreateIssue handles POST /api/v1/issue and answers once the issue is published
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	sess := currentSession(c)

	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if strings.TrimSpace(req.Theme) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": h.localizer.Translate(sess.Locale, i18n.MsgThemeRequired),
		})
		return
	}

	if !sess.Controller.Submit(c.Request.Context(), req.Theme) {
		c.JSON(http.StatusConflict, gin.H{
			"error": h.localizer.Translate(sess.Locale, i18n.MsgIssueInProgress),
		})
		return
	}

	h.awaitAndRender(c, sess)
}

// RetryIssueJSON handles POST /api/v1/issue/retry
func (h *IssueHandler) RetryIssueJSON(c *gin.Context) {
	sess := currentSession(c)

	switch sess.Controller.Snapshot().Status {
	case models.StatusIdle:
		c.JSON(http.StatusConflict, gin.H{
			"error": h.localizer.Translate(sess.Locale, i18n.MsgNothingToRetry),
		})
		return
	case models.StatusLoading:
		c.JSON(http.StatusConflict, gin.H{
			"error": h.localizer.Translate(sess.Locale, i18n.MsgIssueInProgress),
		})
		return
	}

	if !sess.Controller.Retry(c.Request.Context()) {
		c.JSON(http.StatusConflict, gin.H{
			"error": h.localizer.Translate(sess.Locale, i18n.MsgIssueInProgress),
		})
		return
	}

	h.awaitAndRender(c, sess)
}

// GetPresets handles GET /api/v1/presets
func (h *IssueHandler) GetPresets(c *gin.Context) {
	presets := h.curation().PresetThemes
	if presets == nil {
		presets = []string{}
	}
	c.JSON(http.StatusOK, PresetsResponse{Presets: presets})
}

// awaitAndRender blocks until the fetch settles. A client that disconnects
// first leaves the fetch running; the result stays on the session.
func (h *IssueHandler) awaitAndRender(c *gin.Context, sess *session.Session) {
	if err := sess.Controller.Wait(c.Request.Context()); err != nil {
		slog.Info("Client left before the issue was published", "session_id", sess.ID, "error", err)
		h.renderer.RenderIssueJSON(c, http.StatusAccepted, sess.Controller.Snapshot())
		return
	}

	state := sess.Controller.Snapshot()
	status := http.StatusOK
	if state.Status == models.StatusFailed {
		status = http.StatusBadGateway
	}
	h.renderer.RenderIssueJSON(c, status, state)
}

// respond picks the representation the client asked for
func (h *IssueHandler) respond(c *gin.Context, sess *session.Session) {
	state := sess.Controller.Snapshot()
	switch {
	case wantsJSON(c):
		h.renderer.RenderIssueJSON(c, http.StatusOK, state)
	case isHTMX(c):
		h.renderer.RenderIssueFragment(c, state, sess.Locale)
	default:
		h.renderer.RenderPage(c, state, sess.Locale)
	}
}

func (h *IssueHandler) startSession(c *gin.Context) (*session.Session, bool) {
	sess, token, err := h.store.Create(c.Request.Context(), c.GetHeader("Accept-Language"))
	if err != nil {
		slog.Error("Failed to start session", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to start session",
		})
		return nil, false
	}
	h.setSessionCookie(c, token)
	c.Set(sessionContextKey, sess)
	return sess, true
}

func (h *IssueHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(h.store.TTL()/time.Second), "/", "", h.secureCookies, true)
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionContextKey).(*session.Session)
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// wantsJSON checks the Accept header the same way for every dual-mode route
func wantsJSON(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
