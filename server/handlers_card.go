package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/payments"
	"github.com/RenanGalvao/pizza-ecommerce/users"
	"github.com/rs/zerolog/log"
)

func (h *handlers) currentUser(ctx context.Context, req Request) (users.User, error) {
	tok, err := session(req)
	if err != nil {
		return users.User{}, err
	}
	u, err := h.users.Read(ctx, tok.Email)
	if err != nil {
		return users.User{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrNotFound, userMissingMessage)
	}
	return u, nil
}

func (h *handlers) getCard(ctx context.Context, req Request) (Response, error) {
	u, err := h.currentUser(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if u.StripeCardID == "" {
		return Response{}, apperrors.New(apperrors.ErrValidation, "You do not have any registered card.")
	}
	cards, err := h.payments.ListCards(ctx, u.StripeCustomerID)
	if err != nil {
		return Response{}, err
	}
	for _, c := range cards {
		if c.ID == u.StripeCardID {
			return JSON(http.StatusOK, c), nil
		}
	}
	if len(cards) == 0 {
		return Response{}, apperrors.New(apperrors.ErrValidation, "You do not have any registered card.")
	}
	return JSON(http.StatusOK, cards[0]), nil
}

func (h *handlers) createCard(ctx context.Context, req Request) (Response, error) {
	var in cardCreateInput
	if err := h.decode(req.Body, &in); err != nil {
		if apperrors.KindOf(err) == apperrors.ErrValidation {
			return Response{}, apperrors.Validation(
				fmt.Sprintf("Missing or invalid value for stripe_token. Valid values are: %s.", strings.Join(payments.TestTokens, ", ")),
				"stripe_token",
			)
		}
		return Response{}, err
	}
	u, err := h.currentUser(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if u.StripeCardID != "" {
		return Response{}, apperrors.New(apperrors.ErrValidation, "Only one card can be registered.")
	}

	card, err := h.payments.CreateCard(ctx, u.StripeCustomerID, in.StripeToken)
	if err != nil {
		return Response{}, err
	}
	_, err = h.users.Mutate(ctx, u.Email, func(u *users.User) error {
		if u.StripeCardID != "" {
			return apperrors.New(apperrors.ErrValidation, "Only one card can be registered.")
		}
		u.StripeCardID = card.ID
		return nil
	})
	if err != nil {
		if derr := h.payments.DeleteCard(ctx, u.StripeCustomerID, card.ID); derr != nil {
			log.Err(derr).Str("card", card.ID).Msg("could not remove orphaned card")
		}
		return Response{}, err
	}
	return JSON(http.StatusCreated, card), nil
}

func (h *handlers) updateCard(ctx context.Context, req Request) (Response, error) {
	var in cardUpdateInput
	if err := h.decode(req.Body, &in); err != nil {
		return Response{}, err
	}
	if err := atLeastOne(in.any(), "name", "exp_month", "exp_year"); err != nil {
		return Response{}, err
	}
	u, err := h.currentUser(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if u.StripeCardID == "" {
		return Response{}, apperrors.New(apperrors.ErrValidation, "You do not have any registered cards to update.")
	}

	card, err := h.payments.UpdateCard(ctx, u.StripeCustomerID, u.StripeCardID, payments.CardUpdate{
		Name:     strings.TrimSpace(in.Name),
		ExpMonth: in.ExpMonth,
		ExpYear:  in.ExpYear,
	})
	if err != nil {
		return Response{}, err
	}
	return JSON(http.StatusOK, card), nil
}

func (h *handlers) deleteCard(ctx context.Context, req Request) (Response, error) {
	cardID := req.Segment(1)
	if cardID == "" {
		return Response{}, apperrors.Validation("Missing /:card_id", "card_id")
	}
	u, err := h.currentUser(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if u.StripeCardID == "" {
		return Response{}, apperrors.New(apperrors.ErrValidation, "You do not have any registered card.")
	}
	if u.StripeCardID != cardID {
		return Response{}, apperrors.New(apperrors.ErrUnauthorized, "You cannot delete others' card.")
	}

	if err := h.payments.DeleteCard(ctx, u.StripeCustomerID, cardID); err != nil {
		return Response{}, err
	}
	_, err = h.users.Mutate(ctx, u.Email, func(u *users.User) error {
		u.StripeCardID = ""
		return nil
	})
	if err != nil {
		return Response{}, err
	}
	return NoContent(), nil
}
