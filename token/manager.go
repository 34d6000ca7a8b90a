package token

import (
	"context"
	"time"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/internal/utils"
	"github.com/RenanGalvao/pizza-ecommerce/records"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// maxIDAttempts bounds how often Issue regenerates an id that collided with
// an existing token.
const maxIDAttempts = 3

// Manager issues, validates, renews and revokes session tokens stored in the
// tokens collection.
type Manager struct {
	tokens        *records.Collection[Token]
	locker        *records.KeyedLocker
	idLength      int
	secureCookies bool
	nowFunc       func() time.Time
	newID         func(n int) (string, error)
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIDLength(n int) ManagerOption {
	return func(m *Manager) {
		m.idLength = n
	}
}

// WithSecureCookies adds the Secure attribute to every cookie.
func WithSecureCookies(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secureCookies = secure
	}
}

// WithIDGenerator replaces the random id source.
func WithIDGenerator(gen func(n int) (string, error)) ManagerOption {
	return func(m *Manager) {
		m.newID = gen
	}
}

// WithLocker shares a per-key locker with other collections.
func WithLocker(l *records.KeyedLocker) ManagerOption {
	return func(m *Manager) {
		m.locker = l
	}
}

func New(store records.Store, options ...ManagerOption) *Manager {
	m := &Manager{
		idLength: 20,
		nowFunc:  time.Now,
		newID:    utils.RandomString,
	}
	for _, opt := range options {
		opt(m)
	}
	m.tokens = records.NewCollection[Token](store, Collection, m.locker)
	return m
}

// IssueSessionPair creates an access and a refresh token for subject. The
// two records are independent; if the refresh token cannot be stored the
// access token is removed again.
func (m *Manager) IssueSessionPair(ctx context.Context, subject Subject, accessMaxAge, refreshMaxAge int) (Token, Token, error) {
	access, err := m.issue(ctx, subject, KindAccess, accessMaxAge)
	if err != nil {
		return Token{}, Token{}, err
	}
	refresh, err := m.issue(ctx, subject, KindRefresh, refreshMaxAge)
	if err != nil {
		if rerr := m.Revoke(ctx, access.ID); rerr != nil {
			log.Err(rerr).Msg("failed to remove orphaned access token")
		}
		return Token{}, Token{}, err
	}
	return access, refresh, nil
}

func (m *Manager) issue(ctx context.Context, subject Subject, kind Kind, maxAge int) (Token, error) {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, err := m.newID(m.idLength)
		if err != nil {
			return Token{}, apperrors.Wrap(apperrors.ErrStore, errors.Wrap(err, "Manager.issue newID"))
		}
		t := Token{
			ID:               id,
			Email:            subject.Email,
			Name:             subject.Name,
			StripeCustomerID: subject.StripeCustomerID,
			Kind:             kind,
			IssuedAt:         m.nowFunc(),
			MaxAge:           maxAge,
		}
		err = m.tokens.Create(ctx, id, t)
		if err == nil {
			return t, nil
		}
		if !apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return Token{}, apperrors.Wrap(apperrors.ErrStore, errors.Wrap(err, "Manager.issue Create"))
		}
		log.Warn().Int("attempt", attempt).Str("kind", string(kind)).Msg("token id collision, regenerating")
	}
	return Token{}, apperrors.Wrap(apperrors.ErrStore, errors.New("Manager.issue: could not allocate a unique token id"))
}

// Validate returns the stored token if it exists and is not expired. It
// never modifies or deletes the record.
func (m *Manager) Validate(ctx context.Context, id string) (Token, error) {
	if id == "" || id == ClearedValue {
		return Token{}, apperrors.ErrNotFound
	}
	t, err := m.tokens.Read(ctx, id)
	if err != nil {
		return Token{}, err
	}
	if t.ExpiredAt(m.nowFunc()) {
		return Token{}, apperrors.Wrapf(apperrors.ErrExpired, "%s token expired at %s", t.Kind, t.ExpiresAt().Format(time.RFC3339))
	}
	return t, nil
}

// Renew slides the window of a valid token so it starts now.
func (m *Manager) Renew(ctx context.Context, id string) (Token, error) {
	if id == "" || id == ClearedValue {
		return Token{}, apperrors.ErrNotFound
	}
	return m.tokens.Mutate(ctx, id, func(t *Token) error {
		now := m.nowFunc()
		if t.ExpiredAt(now) {
			return apperrors.Wrapf(apperrors.ErrExpired, "%s token expired at %s", t.Kind, t.ExpiresAt().Format(time.RFC3339))
		}
		t.IssuedAt = now
		return nil
	})
}

// Revoke deletes the token. A token that is already gone counts as revoked.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	if id == "" || id == ClearedValue {
		return nil
	}
	err := m.tokens.Delete(ctx, id)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

// Reassign moves a token to a new subject email, used when a user changes
// their address while logged in.
func (m *Manager) Reassign(ctx context.Context, id, email string) (Token, error) {
	return m.tokens.Mutate(ctx, id, func(t *Token) error {
		t.Email = email
		return nil
	})
}
