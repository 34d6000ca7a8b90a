// Package payments talks to a Stripe compatible API: customers, their card
// sources and charges.
package payments

import "context"

// TestTokens are the card tokens accepted when registering a card.
var TestTokens = []string{
	"tok_visa",
	"tok_visa_debit",
	"tok_mastercard",
	"tok_mastercard_debit",
	"tok_mastercard_prepaid",
	"tok_amex",
	"tok_discover",
	"tok_diners",
	"tok_jcb",
	"tok_unionpay",
}

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Card struct {
	ID       string `json:"id"`
	Object   string `json:"object,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int    `json:"exp_month,omitempty"`
	ExpYear  int    `json:"exp_year,omitempty"`
	Name     string `json:"name,omitempty"`
	Customer string `json:"customer,omitempty"`
}

// CardUpdate holds the card fields that may change. Empty fields are left
// untouched.
type CardUpdate struct {
	Name     string
	ExpMonth string
	ExpYear  string
}

type ChargeRequest struct {
	AmountCents int64
	Currency    string
	Source      string
	Customer    string
}

type Charge struct {
	ID         string `json:"id"`
	Paid       bool   `json:"paid"`
	ReceiptURL string `json:"receipt_url"`
}

// Gateway is the payment provider. Requests the provider rejects are
// errors.ErrValidation carrying the provider's message; transport failures
// and provider outages are errors.ErrUpstream.
type Gateway interface {
	CreateCustomer(ctx context.Context, name, email string) (Customer, error)
	UpdateCustomerEmail(ctx context.Context, customerID, email string) error
	DeleteCustomer(ctx context.Context, customerID string) error
	ListCards(ctx context.Context, customerID string) ([]Card, error)
	CreateCard(ctx context.Context, customerID, sourceToken string) (Card, error)
	UpdateCard(ctx context.Context, customerID, cardID string, update CardUpdate) (Card, error)
	DeleteCard(ctx context.Context, customerID, cardID string) error
	Charge(ctx context.Context, req ChargeRequest) (Charge, error)
}

func IsTestToken(token string) bool {
	for _, t := range TestTokens {
		if t == token {
			return true
		}
	}
	return false
}
