package server

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/rs/zerolog/log"
)

const internalMessage = "We're working on it :("

// Dispatcher resolves a request to a route, gates the method, runs the
// route's middleware steps and then its handler. Every failure, from a step
// or a handler, is rendered by the same normalizer.
type Dispatcher struct {
	routes   RouteTable
	notFound HandlerFunc
}

func NewDispatcher(routes RouteTable, notFound HandlerFunc) *Dispatcher {
	if notFound == nil {
		notFound = defaultNotFound
	}
	return &Dispatcher{routes: routes, notFound: notFound}
}

func defaultNotFound(ctx context.Context, req Request) (Response, error) {
	return Response{}, apperrors.New(apperrors.ErrNotFound, "Route not found.")
}

func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	route, ok := d.routes.Lookup(req.Segment(0))
	if !ok {
		resp, err := d.notFound(ctx, req)
		if err != nil {
			return normalize(req, err)
		}
		return resp
	}

	if !route.allows(req.Method) {
		resp := normalize(req, apperrors.New(apperrors.ErrMethodNotAllowed, "Method not allowed."))
		resp.Headers = http.Header{}
		resp.Headers.Set("Allow", allowHeader(route.Methods))
		return resp
	}

	req, pending, err := runPipeline(ctx, req, route.Policy(req.Method))
	if err != nil {
		return normalize(req, err)
	}

	resp, err := route.Handlers[req.Method](ctx, req)
	if err != nil {
		resp = normalize(req, err)
	}
	return mergeHeaders(resp, pending)
}

// mergeHeaders adds pending headers to resp. A header the handler already
// set wins, except Set-Cookie whose values are accumulated.
func mergeHeaders(resp Response, pending http.Header) Response {
	if len(pending) == 0 {
		return resp
	}
	if resp.Headers == nil {
		resp.Headers = http.Header{}
	}
	for k, vs := range pending {
		if _, set := resp.Headers[k]; set && k != headerSetCookie {
			continue
		}
		if k == headerSetCookie {
			vs = withoutOverriddenCookies(resp.Headers.Values(k), vs)
		}
		for _, v := range vs {
			resp.Headers.Add(k, v)
		}
	}
	return resp
}

// withoutOverriddenCookies drops pending cookies whose name the handler
// already sets, so a logout does not get its cleared cookie overwritten.
func withoutOverriddenCookies(handler, pending []string) []string {
	names := make(map[string]struct{}, len(handler))
	for _, c := range handler {
		names[cookieName(c)] = struct{}{}
	}
	kept := make([]string, 0, len(pending))
	for _, c := range pending {
		if _, ok := names[cookieName(c)]; !ok {
			kept = append(kept, c)
		}
	}
	return kept
}

func cookieName(setCookie string) string {
	name, _, _ := strings.Cut(setCookie, "=")
	return strings.TrimSpace(name)
}

func allowHeader(methods []string) string {
	upper := make([]string, len(methods))
	for i, m := range methods {
		upper[i] = strings.ToUpper(m)
	}
	return strings.Join(upper, ", ")
}

type errorPayload struct {
	Err     string   `json:"err"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// normalize turns err into a response. Only the public message reaches the
// client; server side failures are logged with their cause.
func normalize(req Request, err error) Response {
	kind := apperrors.KindOf(err)
	status, label, fallback := describe(kind)

	message := apperrors.PublicMessage(err)
	if message == "" || (status >= http.StatusInternalServerError && kind != apperrors.ErrUpstream) {
		message = fallback
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", req.RequestID).
			Str("method", req.Method).
			Str("path", req.Path).
			Int("status", status).
			Msg("request failed")
	} else {
		log.Debug().Err(err).Str("request_id", req.RequestID).Int("status", status).Msg("request rejected")
	}

	payload := errorPayload{Err: label, Message: message}
	if kind == apperrors.ErrValidation {
		payload.Fields = apperrors.FieldsOf(err)
	}
	return JSON(status, payload)
}

func describe(kind error) (status int, label, fallback string) {
	switch kind {
	case apperrors.ErrNotFound:
		return http.StatusNotFound, "Not Found", "Not found."
	case apperrors.ErrAlreadyExists:
		return http.StatusConflict, "Conflict", "Already exists."
	case apperrors.ErrExpired, apperrors.ErrUnauthorized:
		return http.StatusUnauthorized, "Unauthorized", "Missing or invalid token."
	case apperrors.ErrMethodNotAllowed:
		return http.StatusMethodNotAllowed, "Method Not Allowed", "Method not allowed."
	case apperrors.ErrValidation:
		return http.StatusBadRequest, "Validation", "Invalid request."
	case apperrors.ErrUpstream:
		return http.StatusBadGateway, "Bad Gateway", "A payment or mail provider is unavailable, try again later."
	default:
		return http.StatusInternalServerError, "Internal", internalMessage
	}
}
