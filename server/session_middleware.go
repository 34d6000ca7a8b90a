package server

import (
	"context"
	"net/http"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/token"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyRequestID stores the id assigned by RequestIDMiddleware
	ContextKeyRequestID ContextKey = "request_id"
)

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

const invalidTokenMessage = "Missing or invalid token."

// Sessions builds the session middleware steps on top of a token manager.
type Sessions struct {
	tokens *token.Manager
}

func NewSessions(tokens *token.Manager) Sessions {
	return Sessions{tokens: tokens}
}

// LoadSession attaches the access token from the cookie when it is valid.
// It never aborts the request.
func (s Sessions) LoadSession() Step {
	return func(ctx context.Context, req Request) (Continuation, error) {
		id := req.Cookie(token.AccessCookie)
		if id == "" || id == token.ClearedValue {
			return Continuation{}, nil
		}
		t, err := s.tokens.Validate(ctx, id)
		if err != nil {
			kind := apperrors.KindOf(err)
			if kind != apperrors.ErrNotFound && kind != apperrors.ErrExpired {
				log.Warn().Err(err).Str("request_id", req.RequestID).Msg("could not load session")
			}
			return Continuation{}, nil
		}
		if t.Kind != token.KindAccess {
			return Continuation{}, nil
		}
		return Continuation{Token: &t}, nil
	}
}

// RequireSession aborts with ErrUnauthorized unless the request carries a
// valid access token. The token's window is slid forward and the refreshed
// cookie is returned as a pending header.
func (s Sessions) RequireSession() Step {
	return func(ctx context.Context, req Request) (Continuation, error) {
		id := req.Cookie(token.AccessCookie)
		if req.Token != nil {
			id = req.Token.ID
		}
		current, err := s.tokens.Validate(ctx, id)
		if err != nil {
			return Continuation{}, unauthorized(err)
		}
		if current.Kind != token.KindAccess {
			return Continuation{}, apperrors.New(apperrors.ErrUnauthorized, invalidTokenMessage)
		}
		t, err := s.tokens.Renew(ctx, id)
		if err != nil {
			return Continuation{}, unauthorized(err)
		}
		headers := http.Header{}
		headers.Add(headerSetCookie, s.tokens.Cookie(t))
		return Continuation{Token: &t, Headers: headers}, nil
	}
}

func unauthorized(err error) error {
	kind := apperrors.KindOf(err)
	if kind == apperrors.ErrNotFound || kind == apperrors.ErrExpired {
		return apperrors.Recast(err, kind, apperrors.ErrUnauthorized, invalidTokenMessage)
	}
	return err
}
