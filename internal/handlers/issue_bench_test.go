package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"commuterhythm/internal/cache"
	"commuterhythm/internal/i18n"
	"commuterhythm/internal/session"
	"commuterhythm/internal/testutil"
)

// setupReadyBenchRouter returns a router plus the cookie of a session whose
// issue is already published
func setupReadyBenchRouter(b *testing.B) (*gin.Engine, *http.Cookie) {
	gin.SetMode(gin.ReleaseMode)

	client := &testutil.MockRecommendationService{}
	testutil.ExpectFetch(client, "City Pop", testutil.SampleRecommendations(), nil)

	localizer := i18n.NewLocalizer("ko")
	memCache := cache.NewMemoryCache()
	store := session.NewStore(session.Options{
		Client:    client,
		Tokens:    session.NewTokenManager("bench-secret", time.Hour),
		Cache:     memCache,
		Localizer: localizer,
		TTL:       time.Hour,
	})

	ctx := context.Background()
	sess, token, err := store.Create(ctx, "ko")
	if err != nil {
		b.Fatalf("failed to create session: %v", err)
	}
	sess.Controller.Submit(ctx, "City Pop")
	if err := sess.Controller.Wait(ctx); err != nil {
		b.Fatalf("issue never published: %v", err)
	}

	router := NewRouter(RouterOptions{Store: store, Cache: memCache, Localizer: localizer})
	return router, &http.Cookie{Name: SessionCookieName, Value: token}
}

func BenchmarkIssueHandler_Fragment(b *testing.B) {
	router, cookie := setupReadyBenchRouter(b)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest(http.MethodGet, "/issue", nil)
			req.Header.Set("HX-Request", "true")
			req.AddCookie(cookie)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				b.Fatalf("Expected status 200, got %d", w.Code)
			}
		}
	})
}

func BenchmarkIssueHandler_JSON(b *testing.B) {
	router, cookie := setupReadyBenchRouter(b)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/issue", nil)
			req.Header.Set("Accept", "application/json")
			req.AddCookie(cookie)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				b.Fatalf("Expected status 200, got %d", w.Code)
			}
		}
	})
}

func BenchmarkIssueHandler_Index(b *testing.B) {
	router, _ := setupReadyBenchRouter(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			b.Fatalf("Expected status 200, got %d", w.Code)
		}
	}
}
