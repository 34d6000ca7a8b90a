package token

import (
	"fmt"
	"strings"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// ClearedValue replaces the token id in a cookie that is being removed.
	ClearedValue = "no_id"
)

// Cookie renders the Set-Cookie value for t. Max-Age is the token's full
// window, so a renewed token gets a fresh cookie lifetime too.
func (m *Manager) Cookie(t Token) string {
	return m.formatCookie(t.CookieName(), t.ID, t.MaxAge)
}

// ClearCookies returns Set-Cookie values that make the client drop both
// session cookies. net/http cannot emit a negative Max-Age, so the header
// is formatted by hand.
func (m *Manager) ClearCookies() []string {
	return []string{
		m.formatCookie(AccessCookie, ClearedValue, -1),
		m.formatCookie(RefreshCookie, ClearedValue, -1),
	}
}

func (m *Manager) formatCookie(name, value string, maxAge int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s; Max-Age=%d; HttpOnly; SameSite=Lax", name, value, maxAge)
	if m.secureCookies {
		b.WriteString("; Secure")
	}
	return b.String()
}
