package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/RenanGalvao/pizza-ecommerce/token"
)

// Request is the transport independent view of an incoming call.
type Request struct {
	Method     string // lower case
	Path       string
	Segments   []string // path segments without the optional "api" prefix
	Query      url.Values
	Body       []byte
	Cookies    map[string]string
	Token      *token.Token // set by session middleware
	RemoteAddr string
	RequestID  string
}

// Segment returns the i-th path segment or "".
func (r Request) Segment(i int) string {
	if i < 0 || i >= len(r.Segments) {
		return ""
	}
	return r.Segments[i]
}

func (r Request) Cookie(name string) string {
	return r.Cookies[name]
}

// Response is what a handler returns. Raw takes precedence over Payload.
type Response struct {
	Status      int
	Payload     any
	Raw         []byte
	ContentType string
	Headers     http.Header
}

// HandlerFunc implements one method of a route.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

func JSON(status int, payload any) Response {
	return Response{Status: status, Payload: payload, ContentType: contentTypeJSON}
}

func NoContent() Response {
	return Response{Status: http.StatusNoContent}
}

// WithCookies adds Set-Cookie values to the response.
func (r Response) WithCookies(cookies ...string) Response {
	if r.Headers == nil {
		r.Headers = http.Header{}
	}
	for _, c := range cookies {
		r.Headers.Add(headerSetCookie, c)
	}
	return r
}

const (
	contentTypeJSON = "application/json"
	headerSetCookie = "Set-Cookie"
)
