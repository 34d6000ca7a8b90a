// Package mailer sends order receipts through a Mailgun compatible API.
package mailer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
)

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Receipts downloads the HTML receipt a payment provider links to.
type Receipts interface {
	Fetch(ctx context.Context, receiptURL string) (string, error)
}

var _ Sender = (*Mailgun)(nil)

type Mailgun struct {
	baseURL string
	domain  string
	apiKey  string
	client  *http.Client
}

func NewMailgun(baseURL, domain, apiKey string, client *http.Client) *Mailgun {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Mailgun{
		baseURL: strings.TrimRight(baseURL, "/"),
		domain:  domain,
		apiKey:  apiKey,
		client:  client,
	}
}

func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	form := url.Values{
		"from":    {msg.From},
		"to":      {msg.To},
		"subject": {msg.Subject},
		"html":    {msg.HTML},
	}
	endpoint := fmt.Sprintf("%s/v3/%s/messages", m.baseURL, url.PathEscape(m.domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUpstream, apperrors.Wrapf(err, "mailgun send"))
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= 300 {
		return apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("mailgun send: status %d", resp.StatusCode))
	}
	return nil
}

var _ Receipts = (*HTTPReceipts)(nil)

type HTTPReceipts struct {
	client *http.Client
}

func NewHTTPReceipts(client *http.Client) *HTTPReceipts {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPReceipts{client: client}
}

func (r *HTTPReceipts) Fetch(ctx context.Context, receiptURL string) (string, error) {
	if receiptURL == "" {
		return "", apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("empty receipt url"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, receiptURL, nil)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUpstream, apperrors.Wrapf(err, "fetch receipt"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("fetch receipt: status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("fetch receipt: empty body"))
	}
	return string(data), nil
}
