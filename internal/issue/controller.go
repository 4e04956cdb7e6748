package issue

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"commuterhythm/internal/models"
	"commuterhythm/internal/services"
)

const (
	defaultFetchTimeout = 90 * time.Second
	defaultErrorMessage = "매거진 발행 중 오류가 발생했습니다. 테마를 조금 더 구체적으로 입력해 보세요."
)

// Observer is called with a copy of the state after every transition,
// in transition order
type Observer func(state *models.IssueState)

// Controller owns the state of one reader's issue. At most one fetch is in
// flight at a time; requests that arrive meanwhile are ignored.
type Controller struct {
	client       services.RecommendationService
	errorMessage string
	timeout      time.Duration
	observer     Observer
	now          func() time.Time

	mu    sync.Mutex
	state *models.IssueState
	seed  *models.IssueState
	done  chan struct{}

	// snapshots waiting for the observer, oldest first; guarded by mu
	pending   []notification
	notifying bool
}

type notification struct {
	state     *models.IssueState
	delivered chan struct{}
}

// Option customizes a Controller
type Option func(*Controller)

// WithErrorMessage sets the banner shown when a fetch fails
func WithErrorMessage(msg string) Option {
	return func(c *Controller) {
		if msg != "" {
			c.errorMessage = msg
		}
	}
}

// WithTimeout bounds each fetch
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithObserver(fn Observer) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithState seeds the controller, e.g. from a persisted snapshot. A fetch
// cannot survive a restart, so a snapshot caught mid-flight comes back failed.
func WithState(state *models.IssueState) Option {
	return func(c *Controller) {
		c.seed = state
	}
}

// NewController creates a controller in the idle state
func NewController(client services.RecommendationService, opts ...Option) *Controller {
	c := &Controller{
		client:       client,
		errorMessage: defaultErrorMessage,
		timeout:      defaultFetchTimeout,
		now:          time.Now,
		state:        models.NewIssueState(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.seed != nil {
		c.state = c.seed.Clone()
		c.seed = nil
		if c.state.Status == models.StatusLoading {
			c.state.Status = models.StatusFailed
			c.state.ErrorMessage = c.errorMessage
		}
	}
	return c
}

// Submit starts a fetch for theme. It returns false without touching the
// state when the trimmed theme is empty or a fetch is already running.
// The fetch is detached from ctx cancellation; only ctx values are kept.
func (c *Controller) Submit(ctx context.Context, theme string) bool {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return false
	}

	c.mu.Lock()
	if c.state.Status == models.StatusLoading {
		c.mu.Unlock()
		slog.Debug("issue request ignored, fetch in flight", "theme", theme)
		return false
	}

	c.state.Status = models.StatusLoading
	c.state.ErrorMessage = ""
	c.state.Theme = theme
	done := make(chan struct{})
	c.done = done
	c.publishLocked()

	go c.fetch(context.WithoutCancel(ctx), theme, done)
	return true
}

// Retry re-submits the last theme. Only valid after a fetch has finished.
func (c *Controller) Retry(ctx context.Context) bool {
	c.mu.Lock()
	status := c.state.Status
	theme := c.state.Theme
	c.mu.Unlock()

	if status != models.StatusFailed && status != models.StatusReady {
		return false
	}
	return c.Submit(ctx, theme)
}

// Refresh republishes the current issue with the same theme
func (c *Controller) Refresh(ctx context.Context) bool {
	return c.Retry(ctx)
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() *models.IssueState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Wait blocks until the in-flight fetch, if any, has finished and its outcome
// has reached the observer, or ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) fetch(ctx context.Context, theme string, done chan struct{}) {
	defer close(done)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.FetchRecommendations(ctx, theme)
	if err == nil && result == nil {
		err = errors.New("recommendation service returned no result")
	}

	c.mu.Lock()
	if err != nil {
		slog.Error("failed to publish issue",
			"theme", theme,
			"configuration", services.IsConfigurationError(err),
			"error", err)
		c.state.Status = models.StatusFailed
		c.state.ErrorMessage = c.errorMessage
	} else {
		c.state.Status = models.StatusReady
		c.state.ErrorMessage = ""
		c.state.HasStarted = true
		c.state.Results = append(make([]models.Song, 0, len(result.Recommendations)), result.Recommendations...)
		c.state.Sources = append(make([]models.Source, 0, len(result.Sources)), result.Sources...)
		c.state.IssuedAt = c.now()
	}
	if delivered := c.publishLocked(); delivered != nil {
		<-delivered
	}
}

// publishLocked queues a snapshot for the observer and releases c.mu. The
// returned channel is closed once the observer has seen it; nil without an
// observer.
func (c *Controller) publishLocked() <-chan struct{} {
	defer c.mu.Unlock()
	if c.observer == nil {
		return nil
	}

	n := notification{state: c.state.Clone(), delivered: make(chan struct{})}
	c.pending = append(c.pending, n)
	if !c.notifying {
		c.notifying = true
		go c.notify()
	}
	return n.delivered
}

// notify feeds queued snapshots to the observer in order without holding c.mu
func (c *Controller) notify() {
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.notifying = false
			c.mu.Unlock()
			return
		}
		n := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		c.observer(n.state)
		close(n.delivered)
	}
}
