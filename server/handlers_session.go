package server

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/token"
	"github.com/rs/zerolog/log"
)

type authPayload struct {
	Auth bool `json:"auth"`
}

func (h *handlers) login(ctx context.Context, req Request) (Response, error) {
	var in loginInput
	if err := h.decode(req.Body, &in); err != nil {
		return Response{}, err
	}
	u, err := h.users.Read(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return Response{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrNotFound, userMissingMessage)
	}
	if !u.CheckPassword(in.Password) {
		return Response{}, apperrors.Validation("Wrong password.", "password")
	}

	access, refresh, err := h.tokens.IssueSessionPair(ctx, token.Subject{
		Email:            u.Email,
		Name:             u.Name,
		StripeCustomerID: u.StripeCustomerID,
	}, h.cfg.GetAccessTokenMaxAge(), h.cfg.GetRefreshTokenMaxAge())
	if err != nil {
		return Response{}, err
	}
	return JSON(http.StatusOK, authPayload{Auth: true}).
		WithCookies(h.tokens.Cookie(access), h.tokens.Cookie(refresh)), nil
}

// logout always succeeds; a token that cannot be revoked is logged and
// left to expire.
func (h *handlers) logout(ctx context.Context, req Request) (Response, error) {
	if err := h.revokeSession(ctx, req); err != nil {
		log.Warn().Err(err).Str("request_id", req.RequestID).Msg("could not revoke session")
	}
	return JSON(http.StatusOK, authPayload{Auth: false}).WithCookies(h.tokens.ClearCookies()...), nil
}
