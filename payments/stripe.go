package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
)

var _ Gateway = (*StripeClient)(nil)

type StripeClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewStripeClient(baseURL, secretKey string, client *http.Client) *StripeClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &StripeClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    client,
	}
}

func (s *StripeClient) CreateCustomer(ctx context.Context, name, email string) (Customer, error) {
	var c Customer
	err := s.do(ctx, http.MethodPost, "/v1/customers", url.Values{"name": {name}, "email": {email}}, &c)
	return c, err
}

func (s *StripeClient) UpdateCustomerEmail(ctx context.Context, customerID, email string) error {
	return s.do(ctx, http.MethodPost, "/v1/customers/"+url.PathEscape(customerID), url.Values{"email": {email}}, nil)
}

func (s *StripeClient) DeleteCustomer(ctx context.Context, customerID string) error {
	var res struct {
		Deleted bool `json:"deleted"`
	}
	if err := s.do(ctx, http.MethodDelete, "/v1/customers/"+url.PathEscape(customerID), nil, &res); err != nil {
		return err
	}
	if !res.Deleted {
		return apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("customer %s was not deleted", customerID))
	}
	return nil
}

func (s *StripeClient) ListCards(ctx context.Context, customerID string) ([]Card, error) {
	var res struct {
		Data []Card `json:"data"`
	}
	path := "/v1/customers/" + url.PathEscape(customerID) + "/sources?object=card"
	if err := s.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (s *StripeClient) CreateCard(ctx context.Context, customerID, sourceToken string) (Card, error) {
	var c Card
	path := "/v1/customers/" + url.PathEscape(customerID) + "/sources"
	err := s.do(ctx, http.MethodPost, path, url.Values{"source": {sourceToken}}, &c)
	return c, err
}

func (s *StripeClient) UpdateCard(ctx context.Context, customerID, cardID string, update CardUpdate) (Card, error) {
	form := url.Values{}
	if update.Name != "" {
		form.Set("name", update.Name)
	}
	if update.ExpMonth != "" {
		form.Set("exp_month", update.ExpMonth)
	}
	if update.ExpYear != "" {
		form.Set("exp_year", update.ExpYear)
	}
	var c Card
	path := "/v1/customers/" + url.PathEscape(customerID) + "/sources/" + url.PathEscape(cardID)
	err := s.do(ctx, http.MethodPost, path, form, &c)
	return c, err
}

func (s *StripeClient) DeleteCard(ctx context.Context, customerID, cardID string) error {
	path := "/v1/customers/" + url.PathEscape(customerID) + "/sources/" + url.PathEscape(cardID)
	return s.do(ctx, http.MethodDelete, path, nil, nil)
}

func (s *StripeClient) Charge(ctx context.Context, req ChargeRequest) (Charge, error) {
	form := url.Values{
		"amount":   {strconv.FormatInt(req.AmountCents, 10)},
		"currency": {req.Currency},
		"source":   {req.Source},
		"customer": {req.Customer},
	}
	var c Charge
	if err := s.do(ctx, http.MethodPost, "/v1/charges", form, &c); err != nil {
		return Charge{}, err
	}
	if !c.Paid {
		return Charge{}, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("charge %s not paid", c.ID))
	}
	return c, nil
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *StripeClient) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	req.SetBasicAuth(s.secretKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUpstream, apperrors.Wrapf(err, "stripe %s %s", method, path))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("stripe %s %s: status %d", method, path, resp.StatusCode))
	case resp.StatusCode >= 400:
		var se stripeError
		_ = json.Unmarshal(data, &se)
		msg := se.Error.Message
		if msg == "" {
			msg = "The payment provider rejected the request."
		}
		return &apperrors.Error{
			Kind:    apperrors.ErrValidation,
			Message: msg,
			Err:     fmt.Errorf("stripe %s %s: status %d code %q", method, path, resp.StatusCode, se.Error.Code),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrap(apperrors.ErrUpstream, apperrors.Wrapf(err, "decode stripe %s %s", method, path))
	}
	return nil
}
