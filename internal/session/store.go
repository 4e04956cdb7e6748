package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"commuterhythm/internal/cache"
	"commuterhythm/internal/i18n"
	"commuterhythm/internal/issue"
	"commuterhythm/internal/models"
	"commuterhythm/internal/services"
)

const (
	snapshotKeyPrefix = "session:"
	cacheOpTimeout    = 2 * time.Second
)

// Session is one reader's page: a locale and the controller that owns the issue
type Session struct {
	ID         string
	Locale     language.Tag
	Controller *issue.Controller
	CreatedAt  time.Time

	lastSeen time.Time // guarded by Store.mu
}

// Options wires a Store
type Options struct {
	Client       services.RecommendationService
	Tokens       *TokenManager
	Cache        cache.Cache
	Localizer    *i18n.Localizer
	TTL          time.Duration
	FetchTimeout time.Duration
}

// Store keeps live sessions in memory and mirrors their issue state to the
// cache so a session can be rebuilt after a restart or on another instance
type Store struct {
	client       services.RecommendationService
	tokens       *TokenManager
	cache        cache.Cache
	localizer    *i18n.Localizer
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates an empty session store
func NewStore(opts Options) *Store {
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache()
	}
	if opts.Localizer == nil {
		opts.Localizer = i18n.NewLocalizer("")
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.Tokens == nil {
		opts.Tokens = NewTokenManager("", opts.TTL)
	}

	return &Store{
		client:       opts.Client,
		tokens:       opts.Tokens,
		cache:        opts.Cache,
		localizer:    opts.Localizer,
		ttl:          opts.TTL,
		fetchTimeout: opts.FetchTimeout,
		now:          time.Now,
		sessions:     make(map[string]*Session),
	}
}

// Create starts a fresh session in the idle state and returns its signed token
func (s *Store) Create(ctx context.Context, acceptLanguage string) (*Session, string, error) {
	locale := s.localizer.Match(acceptLanguage)
	sess := s.newSession(uuid.NewString(), locale, nil)

	token, err := s.Token(sess)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Debug("session created", "session_id", sess.ID, "locale", locale)
	return sess, token, nil
}

// Resolve returns the session a token refers to. A valid token whose session
// is no longer in memory is rebuilt from its cached snapshot, or started
// fresh when none is left.
func (s *Store) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	id := claims.Subject

	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = s.now()
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	state, err := s.loadSnapshot(ctx, id)
	if err != nil {
		slog.Warn("failed to load session snapshot", "session_id", id, "error", err)
	}

	locale := s.localizer.Default()
	if tag, err := language.Parse(claims.Locale); err == nil {
		locale = tag
	}
	restored := s.newSession(id, locale, state)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = s.now()
		return sess, nil
	}
	s.sessions[id] = restored
	slog.Info("session restored", "session_id", id, "from_snapshot", state != nil)
	return restored, nil
}

// Token signs a fresh token for sess, extending its lifetime
func (s *Store) Token(sess *Session) (string, error) {
	return s.tokens.Issue(sess.ID, sess.Locale.String())
}

// TTL is the idle lifetime of a session and its cookie
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// expiringCache is implemented by caches that only drop expired entries on demand
type expiringCache interface {
	PurgeExpired() int
}

// Sweep drops sessions idle for longer than the TTL along with their cached
// snapshots. Sessions with a fetch in flight are kept until it completes.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var removed []string
	for id, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) || sess.Controller.Snapshot().IsLoading() {
			continue
		}
		delete(s.sessions, id)
		removed = append(removed, id)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	for _, id := range removed {
		if err := s.cache.Delete(ctx, snapshotKeyPrefix+id); err != nil {
			slog.Warn("failed to delete session snapshot", "session_id", id, "error", err)
		}
	}
	if c, ok := s.cache.(expiringCache); ok {
		if purged := c.PurgeExpired(); purged > 0 {
			slog.Debug("purged expired cache entries", "removed", purged)
		}
	}
	return len(removed)
}

// StartSweeper periodically drops idle sessions until ctx is done
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.Sweep(); removed > 0 {
					slog.Info("swept idle sessions", "removed", removed, "remaining", s.Len())
				}
			}
		}
	}()
}

func (s *Store) newSession(id string, locale language.Tag, seed *models.IssueState) *Session {
	now := s.now()
	opts := []issue.Option{
		issue.WithErrorMessage(s.localizer.Translate(locale, i18n.MsgIssueFailed)),
		issue.WithTimeout(s.fetchTimeout),
		issue.WithObserver(s.persist(id)),
	}
	if seed != nil {
		opts = append(opts, issue.WithState(seed))
	}

	return &Session{
		ID:         id,
		Locale:     locale,
		Controller: issue.NewController(s.client, opts...),
		CreatedAt:  now,
		lastSeen:   now,
	}
}

// persist mirrors every state transition of a session into the cache
func (s *Store) persist(id string) issue.Observer {
	return func(state *models.IssueState) {
		data, err := json.Marshal(state)
		if err != nil {
			slog.Error("failed to encode session snapshot", "session_id", id, "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()
		if err := s.cache.Set(ctx, snapshotKeyPrefix+id, data, s.ttl); err != nil {
			slog.Warn("failed to store session snapshot", "session_id", id, "error", err)
		}
	}
}

func (s *Store) loadSnapshot(ctx context.Context, id string) (*models.IssueState, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	data, err := s.cache.Get(ctx, snapshotKeyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	state := models.NewIssueState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return state, nil
}
