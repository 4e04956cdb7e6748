package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"commuterhythm/internal/cache"
	"commuterhythm/internal/i18n"
	"commuterhythm/internal/models"
	"commuterhythm/internal/testutil"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue("session-1", "en")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.Subject)
	assert.Equal(t, "en", claims.Locale)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	valid, err := m.Issue("session-1", "ko")
	require.NoError(t, err)

	other, err := NewTokenManager("other-secret", time.Hour).Issue("session-1", "ko")
	require.NoError(t, err)

	expiredManager := NewTokenManager("test-secret", time.Minute)
	expiredManager.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredManager.Issue("session-1", "ko")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "session-1",
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong secret":   other,
		"expired":        expired,
		"alg none":       unsigned,
		"tampered claim": tampered,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenManager_EphemeralSecret(t *testing.T) {
	a := NewTokenManager("", time.Hour)
	b := NewTokenManager("", time.Hour)

	token, err := a.Issue("session-1", "ko")
	require.NoError(t, err)

	_, err = a.Parse(token)
	assert.NoError(t, err)
	_, err = b.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newTestStore(t *testing.T, client *testutil.GatedRecommendationService, c cache.Cache) *Store {
	t.Helper()
	return NewStore(Options{
		Client:    client,
		Tokens:    NewTokenManager("test-secret", time.Hour),
		Cache:     c,
		Localizer: i18n.NewLocalizer("ko"),
		TTL:       time.Hour,
	})
}

func waitIdle(t *testing.T, sess *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sess.Controller.Wait(ctx))
}

func TestStore_CreateAndResolve(t *testing.T) {
	store := newTestStore(t, testutil.NewGatedRecommendationService(testutil.SampleRecommendations(), nil), nil)

	sess, token, err := store.Create(context.Background(), "en-US,en;q=0.9")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, language.English, sess.Locale)
	assert.Equal(t, models.StatusIdle, sess.Controller.Snapshot().Status)

	resolved, err := store.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Same(t, sess, resolved)
	assert.Equal(t, 1, store.Len())

	_, err = store.Resolve(context.Background(), "bogus")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	client := testutil.NewGatedRecommendationService(testutil.SampleRecommendations(), nil)
	store := newTestStore(t, client, nil)

	a, _, err := store.Create(context.Background(), "")
	require.NoError(t, err)
	b, _, err := store.Create(context.Background(), "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	require.True(t, a.Controller.Submit(context.Background(), "City Pop"))
	assert.True(t, b.Controller.Submit(context.Background(), "Jazz"))

	client.Release()
	waitIdle(t, a)
	waitIdle(t, b)
	assert.Equal(t, "City Pop", a.Controller.Snapshot().Theme)
	assert.Equal(t, "Jazz", b.Controller.Snapshot().Theme)
}

func TestStore_LocalizedErrorMessage(t *testing.T) {
	client := testutil.NewGatedRecommendationService(nil, errors.New("boom"))
	client.Release()
	store := newTestStore(t, client, nil)

	ko, _, err := store.Create(context.Background(), "ko-KR")
	require.NoError(t, err)
	en, _, err := store.Create(context.Background(), "en-GB")
	require.NoError(t, err)

	require.True(t, ko.Controller.Submit(context.Background(), "Rainy"))
	require.True(t, en.Controller.Submit(context.Background(), "Rainy"))
	waitIdle(t, ko)
	waitIdle(t, en)

	assert.Equal(t, "매거진 발행 중 오류가 발생했습니다. 테마를 조금 더 구체적으로 입력해 보세요.", ko.Controller.Snapshot().ErrorMessage)
	assert.Equal(t, "Something went wrong while publishing the issue. Try a more specific theme.", en.Controller.Snapshot().ErrorMessage)
}

func TestStore_PersistsSnapshotsToCache(t *testing.T) {
	client := testutil.NewGatedRecommendationService(testutil.SampleRecommendations(), nil)
	client.Release()
	mem := cache.NewMemoryCache()
	store := newTestStore(t, client, mem)

	sess, _, err := store.Create(context.Background(), "")
	require.NoError(t, err)
	require.True(t, sess.Controller.Submit(context.Background(), "City Pop"))
	waitIdle(t, sess)

	data, err := mem.Get(context.Background(), snapshotKeyPrefix+sess.ID)
	require.NoError(t, err)
	require.NotNil(t, data)

	var state models.IssueState
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, models.StatusReady, state.Status)
	assert.Equal(t, "City Pop", state.Theme)
	assert.Len(t, state.Results, 7)
}

func TestStore_RestoresFromSnapshotAfterRestart(t *testing.T) {
	client := testutil.NewGatedRecommendationService(testutil.SampleRecommendations(), nil)
	client.Release()
	shared := cache.NewMemoryCache()

	first := newTestStore(t, client, shared)
	sess, token, err := first.Create(context.Background(), "en")
	require.NoError(t, err)
	require.True(t, sess.Controller.Submit(context.Background(), "Midnight"))
	waitIdle(t, sess)

	// Same secret and cache, empty memory
	second := newTestStore(t, client, shared)
	restored, err := second.Resolve(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, sess.ID, restored.ID)
	assert.Equal(t, language.English, restored.Locale)
	state := restored.Controller.Snapshot()
	assert.Equal(t, models.StatusReady, state.Status)
	assert.Equal(t, "Midnight", state.Theme)
	assert.Len(t, state.Results, 7)
}

func TestStore_ResolveWithoutSnapshotStartsFresh(t *testing.T) {
	client := testutil.NewGatedRecommendationService(testutil.SampleRecommendations(), nil)
	tokens := NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Issue("lost-session", "ko")
	require.NoError(t, err)

	store := newTestStore(t, client, nil)
	sess, err := store.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "lost-session", sess.ID)
	assert.Equal(t, models.StatusIdle, sess.Controller.Snapshot().Status)
}

func TestStore_Sweep(t *testing.T) {
	client := testutil.NewGatedRecommendationService(testutil.SampleRecommendations(), nil)
	store := newTestStore(t, client, nil)

	now := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	idle, idleToken, err := store.Create(context.Background(), "")
	require.NoError(t, err)
	busy, _, err := store.Create(context.Background(), "")
	require.NoError(t, err)
	require.True(t, busy.Controller.Submit(context.Background(), "Rainy"))
	_, ok := client.AwaitStart(2 * time.Second)
	require.True(t, ok)

	now = now.Add(30 * time.Minute)
	assert.Zero(t, store.Sweep())

	now = now.Add(31 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	client.Release()
	waitIdle(t, busy)
	assert.Equal(t, 1, store.Sweep())
	assert.Zero(t, store.Len())

	// The cookie still works; the swept session comes back idle
	restored, err := store.Resolve(context.Background(), idleToken)
	require.NoError(t, err)
	assert.Equal(t, idle.ID, restored.ID)
	assert.NotSame(t, idle, restored)
}

func TestStore_SweepReclaimsSnapshots(t *testing.T) {
	client := testutil.NewGatedRecommendationService(testutil.SampleRecommendations(), nil)
	client.Release()
	mem := cache.NewMemoryCache()
	store := newTestStore(t, client, mem)

	now := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	stale, _, err := store.Create(context.Background(), "")
	require.NoError(t, err)
	require.True(t, stale.Controller.Submit(context.Background(), "Jazz"))
	waitIdle(t, stale)

	now = now.Add(30 * time.Minute)
	fresh, _, err := store.Create(context.Background(), "")
	require.NoError(t, err)
	require.True(t, fresh.Controller.Submit(context.Background(), "Rainy"))
	waitIdle(t, fresh)
	require.Equal(t, 2, mem.Len())

	now = now.Add(31 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	data, err := mem.Get(context.Background(), snapshotKeyPrefix+stale.ID)
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = mem.Get(context.Background(), snapshotKeyPrefix+fresh.ID)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Equal(t, 1, mem.Len())
}
