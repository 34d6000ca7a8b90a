package token

import "time"

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Collection is the records collection that holds session tokens.
const Collection = "tokens"

// Token is a stored session credential. The ID is both the record key and
// the bearer value carried in the cookie; everything else stays server side.
type Token struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	StripeCustomerID string    `json:"stripe_customer_id,omitempty"`
	Kind             Kind      `json:"kind"`
	IssuedAt         time.Time `json:"issued_at"`
	MaxAge           int       `json:"max_age"` // seconds
}

// Subject is the principal a session pair is issued for.
type Subject struct {
	Email            string
	Name             string
	StripeCustomerID string
}

func (t Token) ExpiresAt() time.Time {
	return t.IssuedAt.Add(time.Duration(t.MaxAge) * time.Second)
}

// ExpiredAt reports whether t is past its window at now. A token is still
// valid at exactly IssuedAt+MaxAge.
func (t Token) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt())
}

func (t Token) CookieName() string {
	if t.Kind == KindRefresh {
		return RefreshCookie
	}
	return AccessCookie
}
