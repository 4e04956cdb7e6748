package handlers

import (
	"github.com/gin-gonic/gin"

	"commuterhythm/internal/cache"
	"commuterhythm/internal/config"
	"commuterhythm/internal/handlers/render"
	"commuterhythm/internal/i18n"
	"commuterhythm/internal/session"
)

// RouterOptions carries everything the HTTP surface depends on
type RouterOptions struct {
	Store     *session.Store
	Cache     cache.Cache
	Localizer *i18n.Localizer
	Curation  func() *config.CurationConfig

	// Renderer defaults to one using the registered origin UI
	Renderer *render.IssueRenderer

	SecureCookies         bool
	CredentialsConfigured bool
}

// NewRouter registers every route on a new gin engine
func NewRouter(opts RouterOptions) *gin.Engine {
	if opts.Curation == nil {
		opts.Curation = config.GetCurationConfig
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewIssueRenderer(GetOriginUIConfig, GetOriginCSS(), opts.Curation, opts.Localizer)
	}

	issueHandler := NewIssueHandler(opts.Store, opts.Renderer, opts.Curation, opts.Localizer, opts.SecureCookies)
	healthHandler := NewHealthHandler(opts.Cache, opts.Store, opts.CredentialsConfigured)

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	router.GET("/health", healthHandler.Health)
	router.GET("/", issueHandler.Index)

	web := router.Group("/issue", issueHandler.SessionMiddleware())
	{
		web.GET("", issueHandler.GetIssue)
		web.POST("", issueHandler.SubmitIssue)
		web.POST("/retry", issueHandler.RetryIssue)
		web.POST("/refresh", issueHandler.RefreshIssue)
	}

	api := router.Group("/api/v1", issueHandler.SessionMiddleware())
	{
		api.GET("/issue", issueHandler.GetIssueJSON)
		api.POST("/issue", issueHandler.CreateIssue)
		api.POST("/issue/retry", issueHandler.RetryIssueJSON)
		api.GET("/presets", issueHandler.GetPresets)
	}

	return router
}
