package token_test

import (
	"testing"

	"github.com/RenanGalvao/pizza-ecommerce/records/memstore"
	"github.com/RenanGalvao/pizza-ecommerce/token"
	"github.com/stretchr/testify/require"
)

func TestCookie(t *testing.T) {
	m := token.New(memstore.New())

	access := token.Token{ID: "abc123", Kind: token.KindAccess, MaxAge: 900}
	refresh := token.Token{ID: "def456", Kind: token.KindRefresh, MaxAge: 1800}

	require.Equal(t, "access_token=abc123; Max-Age=900; HttpOnly; SameSite=Lax", m.Cookie(access))
	require.Equal(t, "refresh_token=def456; Max-Age=1800; HttpOnly; SameSite=Lax", m.Cookie(refresh))
}

func TestCookieSecureInProduction(t *testing.T) {
	m := token.New(memstore.New(), token.WithSecureCookies(true))
	access := token.Token{ID: "abc123", Kind: token.KindAccess, MaxAge: 900}

	require.Equal(t, "access_token=abc123; Max-Age=900; HttpOnly; SameSite=Lax; Secure", m.Cookie(access))
}

func TestClearCookies(t *testing.T) {
	m := token.New(memstore.New())
	require.Equal(t, []string{
		"access_token=no_id; Max-Age=-1; HttpOnly; SameSite=Lax",
		"refresh_token=no_id; Max-Age=-1; HttpOnly; SameSite=Lax",
	}, m.ClearCookies())
}
