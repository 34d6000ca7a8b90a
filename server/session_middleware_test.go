package server_test

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/records/memstore"
	"github.com/RenanGalvao/pizza-ecommerce/server"
	"github.com/RenanGalvao/pizza-ecommerce/token"
	"github.com/stretchr/testify/require"
)

// clock is a manually advanced time source shared with server goroutines.
type clock struct {
	lock sync.Mutex
	now  time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

type sessionFixture struct {
	clock    *clock
	tokens   *token.Manager
	sessions server.Sessions
	access   token.Token
	refresh  token.Token
}

func setupSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{clock: newClock()}
	f.tokens = token.New(memstore.New(), token.WithNowFunc(f.clock.Now))
	f.sessions = server.NewSessions(f.tokens)

	var err error
	f.access, f.refresh, err = f.tokens.IssueSessionPair(context.Background(), token.Subject{Email: "ana@pizza.com"}, 900, 1800)
	require.NoError(t, err)
	return f
}

func withCookie(name, value string) server.Request {
	return server.Request{Method: "get", Cookies: map[string]string{name: value}}
}

func TestRequireSessionRejectsMissingToken(t *testing.T) {
	f := setupSessionFixture(t)
	step := f.sessions.RequireSession()

	for _, req := range []server.Request{
		{Method: "get"},
		withCookie(token.AccessCookie, token.ClearedValue),
		withCookie(token.AccessCookie, "unknown-token-id-000"),
	} {
		_, err := step(context.Background(), req)
		require.Equal(t, apperrors.ErrUnauthorized, apperrors.KindOf(err))
		require.Equal(t, "Missing or invalid token.", apperrors.PublicMessage(err))
	}
}

func TestRequireSessionRejectsExpiredToken(t *testing.T) {
	f := setupSessionFixture(t)
	f.clock.Advance(901 * time.Second)

	_, err := f.sessions.RequireSession()(context.Background(), withCookie(token.AccessCookie, f.access.ID))
	require.Equal(t, apperrors.ErrUnauthorized, apperrors.KindOf(err))
}

func TestRequireSessionRejectsRefreshTokenAsAccess(t *testing.T) {
	f := setupSessionFixture(t)

	_, err := f.sessions.RequireSession()(context.Background(), withCookie(token.AccessCookie, f.refresh.ID))
	require.Equal(t, apperrors.ErrUnauthorized, apperrors.KindOf(err))
}

func TestRequireSessionRenewsAndSetsCookie(t *testing.T) {
	f := setupSessionFixture(t)
	f.clock.Advance(600 * time.Second)

	cont, err := f.sessions.RequireSession()(context.Background(), withCookie(token.AccessCookie, f.access.ID))
	require.NoError(t, err)
	require.NotNil(t, cont.Token)
	require.Equal(t, f.clock.Now(), cont.Token.IssuedAt)
	require.Equal(t, f.tokens.Cookie(*cont.Token), cont.Headers.Get("Set-Cookie"))

	// the renewed window starts at the last request
	f.clock.Advance(600 * time.Second)
	_, err = f.tokens.Validate(context.Background(), f.access.ID)
	require.NoError(t, err)
}

func TestRequireSessionPrefersAttachedToken(t *testing.T) {
	f := setupSessionFixture(t)
	req := withCookie(token.AccessCookie, "garbage")
	req.Token = &f.access

	cont, err := f.sessions.RequireSession()(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, f.access.ID, cont.Token.ID)
}

func TestLoadSessionIsBestEffort(t *testing.T) {
	f := setupSessionFixture(t)
	step := f.sessions.LoadSession()

	cont, err := step(context.Background(), withCookie(token.AccessCookie, f.access.ID))
	require.NoError(t, err)
	require.Equal(t, f.access.ID, cont.Token.ID)
	require.Empty(t, cont.Headers)

	cont, err = step(context.Background(), server.Request{Method: "get"})
	require.NoError(t, err)
	require.Nil(t, cont.Token)

	f.clock.Advance(901 * time.Second)
	cont, err = step(context.Background(), withCookie(token.AccessCookie, f.access.ID))
	require.NoError(t, err)
	require.Nil(t, cont.Token)
}
