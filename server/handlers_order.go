package server

import (
	"context"
	"net/http"

	"github.com/RenanGalvao/pizza-ecommerce/carts"
	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/mailer"
	"github.com/RenanGalvao/pizza-ecommerce/payments"
	"github.com/rs/zerolog/log"
)

const (
	receiptSubject     = "Receipt from your shopping"
	orderSentMessage   = "Thank you for your preference. The receipt was sent to your email."
	orderUnsentMessage = "Thank you for your preference. We could not send the receipt to your email."
)

type orderPayload struct {
	Message     string `json:"message"`
	ChargeID    string `json:"charge_id"`
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
}

func (h *handlers) placeOrder(ctx context.Context, req Request) (Response, error) {
	u, err := h.currentUser(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if u.StripeCardID == "" {
		return Response{}, apperrors.New(apperrors.ErrValidation, "You do not have a card to place an order.")
	}
	noCart := apperrors.New(apperrors.ErrValidation, "You do not have a cart to place an order.")
	currency := h.cfg.GetCurrency()

	// The cart is claimed under its lock for the whole charge, so a second
	// order for the same cart finds it gone instead of charging it again.
	var (
		total   int64
		charge  payments.Charge
		charged bool
	)
	_, err = h.carts.Take(ctx, u.Email, func(cart carts.Cart) error {
		if cart.IsEmpty() {
			return noCart
		}
		var err error
		if total, err = h.priceCart(ctx, cart); err != nil {
			return err
		}
		if total <= 0 {
			return apperrors.New(apperrors.ErrValidation, "Your order total must be greater than zero.")
		}
		charge, err = h.payments.Charge(ctx, payments.ChargeRequest{
			AmountCents: total,
			Currency:    currency,
			Source:      u.StripeCardID,
			Customer:    u.StripeCustomerID,
		})
		if err != nil {
			return err
		}
		charged = true
		return nil
	})
	if !charged {
		if apperrors.KindOf(err) == apperrors.ErrNotFound {
			return Response{}, noCart
		}
		return Response{}, err
	}

	logger := log.With().Str("request_id", req.RequestID).Str("charge", charge.ID).Logger()
	logger.Info().Int64("amount", total).Str("currency", currency).Msg("order charged")
	if err != nil {
		logger.Error().Err(err).Msg("could not clear cart after charge")
	}

	payload := orderPayload{Message: orderSentMessage, ChargeID: charge.ID, AmountCents: total, Currency: currency}
	if err := h.sendReceipt(ctx, u.Email, charge.ReceiptURL); err != nil {
		logger.Error().Err(err).Msg("could not send receipt")
		payload.Message = orderUnsentMessage
	}
	return JSON(http.StatusCreated, payload), nil
}

// priceCart reads the current menu price of every line.
func (h *handlers) priceCart(ctx context.Context, cart carts.Cart) (int64, error) {
	prices := make(map[string]float64, len(cart.Items))
	for _, line := range cart.Items {
		item, err := h.menu.Read(ctx, line.ItemID)
		if err != nil {
			return 0, apperrors.Recast(err, apperrors.ErrNotFound, apperrors.ErrValidation, "An item in your cart is no longer on the menu.")
		}
		prices[line.ItemID] = item.Price
	}
	total, err := cart.TotalCents(prices)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return total, nil
}

func (h *handlers) sendReceipt(ctx context.Context, to, receiptURL string) error {
	if receiptURL == "" {
		return apperrors.New(apperrors.ErrUpstream, "Charge has no receipt.")
	}
	html, err := h.receipts.Fetch(ctx, receiptURL)
	if err != nil {
		return err
	}
	return h.mail.Send(ctx, mailer.Message{
		From:    h.cfg.GetMailFrom(),
		To:      to,
		Subject: receiptSubject,
		HTML:    html,
	})
}
