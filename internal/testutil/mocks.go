package testutil

import (
	"context"
	"sync"
	"time"

	"commuterhythm/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockRecommendationService is a mock implementation of RecommendationService for testing
type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) FetchRecommendations(ctx context.Context, theme string) (*models.RecommendationResult, error) {
	args := m.Called(ctx, theme)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecommendationResult), args.Error(1)
}

// GatedRecommendationService holds every call until Release is called, so
// tests can observe the loading state deterministically
type GatedRecommendationService struct {
	Result *models.RecommendationResult
	Err    error

	mu      sync.Mutex
	themes  []string
	gate    chan struct{}
	started chan string
}

// NewGatedRecommendationService creates a closed gate that answers with result or err
func NewGatedRecommendationService(result *models.RecommendationResult, err error) *GatedRecommendationService {
	return &GatedRecommendationService{
		Result:  result,
		Err:     err,
		gate:    make(chan struct{}),
		started: make(chan string, 16),
	}
}

func (g *GatedRecommendationService) FetchRecommendations(ctx context.Context, theme string) (*models.RecommendationResult, error) {
	g.mu.Lock()
	g.themes = append(g.themes, theme)
	gate := g.gate
	g.mu.Unlock()

	g.started <- theme

	select {
	case <-gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.Result, g.Err
}

// Release lets the pending call, and any later ones, complete
func (g *GatedRecommendationService) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.gate:
	default:
		close(g.gate)
	}
}

// AwaitStart blocks until a call has reached the service and returns its theme
func (g *GatedRecommendationService) AwaitStart(timeout time.Duration) (string, bool) {
	select {
	case theme := <-g.started:
		return theme, true
	case <-time.After(timeout):
		return "", false
	}
}

// Themes returns the themes received so far
func (g *GatedRecommendationService) Themes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.themes...)
}

// ExpectFetch sets up expectation for FetchRecommendations
func ExpectFetch(m *MockRecommendationService, theme string, result *models.RecommendationResult, err error) *mock.Call {
	return m.On("FetchRecommendations", mock.Anything, theme).Return(result, err)
}
