package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RenanGalvao/pizza-ecommerce/carts"
	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
)

var errNotInCart = apperrors.Validation("Invalid /:item_id.", "item_id")

var errCartQuantity = apperrors.Validation(
	fmt.Sprintf("An item can be added at most %d times to the cart.", carts.MaxQuantity),
	"quantity",
)

// addLine adds quantity of itemID to c, reporting an oversized line as a
// validation error.
func addLine(c *carts.Cart, itemID string, quantity int) error {
	if err := c.Add(itemID, quantity); err != nil {
		if apperrors.Is(err, carts.ErrInvalidQuantity) {
			return errCartQuantity
		}
		return err
	}
	return nil
}

func (h *handlers) getCart(ctx context.Context, req Request) (Response, error) {
	tok, err := session(req)
	if err != nil {
		return Response{}, err
	}
	cart, err := h.carts.Read(ctx, tok.Email)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return JSON(http.StatusOK, carts.New()), nil
	}
	if err != nil {
		return Response{}, err
	}
	return JSON(http.StatusOK, cart), nil
}

func (h *handlers) addToCart(ctx context.Context, req Request) (Response, error) {
	tok, err := session(req)
	if err != nil {
		return Response{}, err
	}
	var in cartAddInput
	if err := h.decode(req.Body, &in); err != nil {
		return Response{}, err
	}
	if _, err := h.menu.Read(ctx, in.ItemID); err != nil {
		return Response{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrValidation, itemMissingMessage)
	}

	cart, err := h.carts.Upsert(ctx, tok.Email, carts.New, func(c *carts.Cart) error {
		return addLine(c, in.ItemID, in.Quantity)
	})
	if err != nil {
		return Response{}, err
	}
	return JSON(http.StatusCreated, cart), nil
}

func (h *handlers) updateCart(ctx context.Context, req Request) (Response, error) {
	tok, err := session(req)
	if err != nil {
		return Response{}, err
	}
	itemID := req.Segment(1)
	if itemID == "" {
		return Response{}, apperrors.Validation("Missing /:item_id", "item_id")
	}
	var in cartUpdateInput
	if err := h.decode(req.Body, &in); err != nil {
		return Response{}, err
	}

	cart, err := h.carts.Mutate(ctx, tok.Email, func(c *carts.Cart) error {
		if !c.SetQuantity(itemID, in.Quantity) {
			return errNotInCart
		}
		return nil
	})
	if err != nil {
		return Response{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrValidation, "You don't have any cart to update.")
	}
	return JSON(http.StatusOK, cart), nil
}

func (h *handlers) removeFromCart(ctx context.Context, req Request) (Response, error) {
	tok, err := session(req)
	if err != nil {
		return Response{}, err
	}
	itemID := req.Segment(1)
	if itemID == "" {
		return Response{}, apperrors.Validation("Missing /:item_id", "item_id")
	}

	_, err = h.carts.Mutate(ctx, tok.Email, func(c *carts.Cart) error {
		if !c.Remove(itemID) {
			return errNotInCart
		}
		return nil
	})
	if err != nil {
		return Response{}, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrValidation, "You do not have a cart to remove an item from it.")
	}
	return NoContent(), nil
}
