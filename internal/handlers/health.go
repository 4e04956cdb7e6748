package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"commuterhythm/internal/cache"
	"commuterhythm/internal/session"
)

const healthCheckTimeout = 2 * time.Second

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status                string `json:"status"`
	Cache                 string `json:"cache"`
	Sessions              int    `json:"sessions"`
	CredentialsConfigured bool   `json:"credentials_configured"`
}

// HealthHandler reports readiness of the process and its snapshot cache
type HealthHandler struct {
	cache       cache.Cache
	store       *session.Store
	credentials bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(c cache.Cache, store *session.Store, credentials bool) *HealthHandler {
	return &HealthHandler{cache: c, store: store, credentials: credentials}
}

// Health handles GET /health. Missing model credentials do not make the
// process unhealthy; they are reported so operators can spot them.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:                "ok",
		Cache:                 "ok",
		Sessions:              h.store.Len(),
		CredentialsConfigured: h.credentials,
	}
	status := http.StatusOK

	if h.cache != nil {
		if err := h.cache.Health(ctx); err != nil {
			slog.Warn("Cache health check failed", "error", err)
			resp.Status = "degraded"
			resp.Cache = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, resp)
}
