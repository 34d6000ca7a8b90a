package payments_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/payments"
	"github.com/stretchr/testify/require"
)

func newStripe(t *testing.T, handler http.HandlerFunc) *payments.StripeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return payments.NewStripeClient(srv.URL, "sk_test_123", srv.Client())
}

func TestCreateCustomer(t *testing.T) {
	s := newStripe(t, func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "sk_test_123", user)
		require.Equal(t, "/v1/customers", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "ana@pizza.com", r.PostForm.Get("email"))
		w.Write([]byte(`{"id":"cus_1","email":"ana@pizza.com","name":"Ana"}`))
	})

	c, err := s.CreateCustomer(context.Background(), "Ana", "ana@pizza.com")
	require.NoError(t, err)
	require.Equal(t, "cus_1", c.ID)
}

func TestChargeSendsAmountInCents(t *testing.T) {
	s := newStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/charges", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "2450", r.PostForm.Get("amount"))
		require.Equal(t, "usd", r.PostForm.Get("currency"))
		require.Equal(t, "card_1", r.PostForm.Get("source"))
		w.Write([]byte(`{"id":"ch_1","paid":true,"receipt_url":"https://pay.example/receipt"}`))
	})

	c, err := s.Charge(context.Background(), payments.ChargeRequest{AmountCents: 2450, Currency: "usd", Source: "card_1", Customer: "cus_1"})
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/receipt", c.ReceiptURL)
}

func TestRejectedRequestIsValidation(t *testing.T) {
	s := newStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	_, err := s.Charge(context.Background(), payments.ChargeRequest{AmountCents: 100, Currency: "usd"})
	require.Equal(t, apperrors.ErrValidation, apperrors.KindOf(err))
	require.Equal(t, "Your card was declined.", apperrors.PublicMessage(err))
}

func TestOutageIsUpstream(t *testing.T) {
	s := newStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := s.ListCards(context.Background(), "cus_1")
	require.Equal(t, apperrors.ErrUpstream, apperrors.KindOf(err))
}

func TestUnpaidChargeIsUpstream(t *testing.T) {
	s := newStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"ch_1","paid":false}`))
	})

	_, err := s.Charge(context.Background(), payments.ChargeRequest{AmountCents: 100, Currency: "usd"})
	require.Equal(t, apperrors.ErrUpstream, apperrors.KindOf(err))
}

func TestListCardsQuery(t *testing.T) {
	s := newStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/customers/cus_1/sources", r.URL.Path)
		require.Equal(t, "card", r.URL.Query().Get("object"))
		w.Write([]byte(`{"data":[{"id":"card_1","brand":"Visa","last4":"4242"}]}`))
	})

	cards, err := s.ListCards(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.Equal(t, "card_1", cards[0].ID)
}

func TestIsTestToken(t *testing.T) {
	require.True(t, payments.IsTestToken("tok_visa"))
	require.False(t, payments.IsTestToken("tok_fake"))
}
