package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/RenanGalvao/pizza-ecommerce/carts"
	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/token"
	"github.com/RenanGalvao/pizza-ecommerce/users"
	"github.com/rs/zerolog/log"
)

const (
	userMissingMessage = "User doesn't exist."
	userExistsMessage  = "A user with that email already exists."
)

func (h *handlers) getUser(ctx context.Context, req Request) (Response, error) {
	tok, err := session(req)
	if err != nil {
		return Response{}, err
	}
	u, err := h.users.Read(ctx, tok.Email)
	if err != nil {
		return Response{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrNotFound, userMissingMessage)
	}
	return JSON(http.StatusOK, u.Public()), nil
}

func (h *handlers) createUser(ctx context.Context, req Request) (Response, error) {
	var in createUserInput
	if err := h.decode(req.Body, &in); err != nil {
		return Response{}, err
	}
	email := strings.TrimSpace(in.Email)

	_, err := h.users.Read(ctx, email)
	switch {
	case err == nil:
		return Response{}, apperrors.Validation(userExistsMessage, "email")
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return Response{}, err
	}

	hash, err := users.HashPassword(in.Password)
	if err != nil {
		return Response{}, apperrors.Wrapf(err, "hash password")
	}
	customer, err := h.payments.CreateCustomer(ctx, in.Name, email)
	if err != nil {
		return Response{}, err
	}

	u := users.User{
		Name:             strings.TrimSpace(in.Name),
		Email:            email,
		StreetAddress:    strings.TrimSpace(in.StreetAddress),
		PasswordHash:     hash,
		StripeCustomerID: customer.ID,
	}
	if err := h.users.Create(ctx, email, u); err != nil {
		h.dropCustomer(ctx, customer.ID)
		if apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return Response{}, apperrors.Validation(userExistsMessage, "email")
		}
		return Response{}, err
	}
	return JSON(http.StatusCreated, u.Public()), nil
}

func (h *handlers) updateUser(ctx context.Context, req Request) (Response, error) {
	tok, err := session(req)
	if err != nil {
		return Response{}, err
	}
	var in updateUserInput
	if err := h.decode(req.Body, &in); err != nil {
		return Response{}, err
	}
	if err := atLeastOne(in.any(), "name", "email", "street_address", "password"); err != nil {
		return Response{}, err
	}

	var hash string
	if in.Password != "" {
		if hash, err = users.HashPassword(in.Password); err != nil {
			return Response{}, apperrors.Wrapf(err, "hash password")
		}
	}
	apply := func(u *users.User) error {
		if in.Name != "" {
			u.Name = strings.TrimSpace(in.Name)
		}
		if in.StreetAddress != "" {
			u.StreetAddress = strings.TrimSpace(in.StreetAddress)
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		return nil
	}

	newEmail := strings.TrimSpace(in.Email)
	if newEmail == "" || newEmail == tok.Email {
		u, err := h.users.Mutate(ctx, tok.Email, apply)
		if err != nil {
			return Response{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrNotFound, userMissingMessage)
		}
		return JSON(http.StatusOK, u.Public()), nil
	}

	u, err := h.changeEmail(ctx, req, tok, newEmail, apply)
	if err != nil {
		return Response{}, err
	}
	return JSON(http.StatusOK, u.Public()), nil
}

// changeEmail re-keys the user under newEmail while holding the old key's
// lock. The new record is created first so a taken address fails before
// anything else changes; the old record is deleted last. When a step fails
// the completed ones are undone in reverse order.
func (h *handlers) changeEmail(ctx context.Context, req Request, tok *token.Token, newEmail string, apply func(*users.User) error) (users.User, error) {
	oldEmail := tok.Email
	unlock, err := h.users.Lock(ctx, oldEmail)
	if err != nil {
		return users.User{}, err
	}
	defer unlock()

	u, err := h.users.Read(ctx, oldEmail)
	if err != nil {
		return users.User{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrNotFound, userMissingMessage)
	}
	if err := apply(&u); err != nil {
		return users.User{}, err
	}
	u.Email = newEmail

	var undo []func() error
	fail := func(err error) (users.User, error) {
		for i := len(undo) - 1; i >= 0; i-- {
			if uerr := undo[i](); uerr != nil {
				log.Err(uerr).Str("request_id", req.RequestID).Str("email", oldEmail).Msg("could not undo email change step")
			}
		}
		return users.User{}, err
	}

	if err := h.users.Create(ctx, newEmail, u); err != nil {
		if apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return users.User{}, apperrors.Validation(userExistsMessage, "email")
		}
		return users.User{}, err
	}
	undo = append(undo, func() error {
		return ignoreNotFound(h.users.Delete(ctx, newEmail))
	})

	if u.StripeCustomerID != "" {
		if err := h.payments.UpdateCustomerEmail(ctx, u.StripeCustomerID, newEmail); err != nil {
			return fail(err)
		}
		undo = append(undo, func() error {
			return h.payments.UpdateCustomerEmail(ctx, u.StripeCustomerID, oldEmail)
		})
	}

	moved, err := h.moveCart(ctx, oldEmail, newEmail)
	if err != nil {
		return fail(err)
	}
	if moved {
		undo = append(undo, func() error {
			_, err := h.moveCart(ctx, newEmail, oldEmail)
			return err
		})
	}

	for _, id := range []string{tok.ID, req.Cookie(token.RefreshCookie)} {
		if id == "" || id == token.ClearedValue {
			continue
		}
		_, err := h.tokens.Reassign(ctx, id, newEmail)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return fail(err)
		}
		undo = append(undo, func() error {
			_, err := h.tokens.Reassign(ctx, id, oldEmail)
			return ignoreNotFound(err)
		})
	}

	if err := ignoreNotFound(h.users.Delete(ctx, oldEmail)); err != nil {
		return fail(err)
	}
	return u, nil
}

// moveCart merges the cart of from into the cart of to and reports whether
// there was anything to move. A failed merge leaves both carts as they were.
func (h *handlers) moveCart(ctx context.Context, from, to string) (bool, error) {
	cart, err := h.carts.Read(ctx, from)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, err = h.carts.Upsert(ctx, to, carts.New, func(c *carts.Cart) error {
		for _, line := range cart.Items {
			if err := addLine(c, line.ItemID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if err := ignoreNotFound(h.carts.Delete(ctx, from)); err != nil {
		if derr := ignoreNotFound(h.carts.Delete(ctx, to)); derr != nil {
			log.Err(derr).Str("email", to).Msg("could not remove moved cart copy")
		}
		return false, err
	}
	return true, nil
}

func (h *handlers) deleteUser(ctx context.Context, req Request) (Response, error) {
	tok, err := session(req)
	if err != nil {
		return Response{}, err
	}
	email := strings.TrimSpace(req.Segment(1))
	if email == "" {
		return Response{}, apperrors.Validation("Missing /:email", "email")
	}
	if email != tok.Email {
		return Response{}, apperrors.New(apperrors.ErrUnauthorized, "You cannot delete others' account.")
	}

	u, err := h.users.Read(ctx, email)
	if err != nil {
		return Response{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrNotFound, userMissingMessage)
	}
	if u.StripeCustomerID != "" {
		if err := h.payments.DeleteCustomer(ctx, u.StripeCustomerID); err != nil {
			return Response{}, err
		}
	}
	if err := ignoreNotFound(h.carts.Delete(ctx, email)); err != nil {
		return Response{}, err
	}
	if err := h.revokeSession(ctx, req); err != nil {
		return Response{}, err
	}
	if err := ignoreNotFound(h.users.Delete(ctx, email)); err != nil {
		return Response{}, err
	}
	return NoContent().WithCookies(h.tokens.ClearCookies()...), nil
}

// revokeSession removes the request's access token and its refresh cookie.
func (h *handlers) revokeSession(ctx context.Context, req Request) error {
	access := req.Cookie(token.AccessCookie)
	if req.Token != nil {
		access = req.Token.ID
	}
	if err := h.tokens.Revoke(ctx, access); err != nil {
		return err
	}
	return h.tokens.Revoke(ctx, req.Cookie(token.RefreshCookie))
}

func (h *handlers) dropCustomer(ctx context.Context, customerID string) {
	if err := h.payments.DeleteCustomer(ctx, customerID); err != nil {
		log.Err(err).Str("customer", customerID).Msg("could not remove orphaned customer")
	}
}
