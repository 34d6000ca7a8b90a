package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/server"
	"github.com/RenanGalvao/pizza-ecommerce/token"
	"github.com/stretchr/testify/require"
)

func payloadOf(t *testing.T, resp server.Response) map[string]any {
	t.Helper()
	data, err := json.Marshal(resp.Payload)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func okHandler(calls *int) server.HandlerFunc {
	return func(ctx context.Context, req server.Request) (server.Response, error) {
		*calls++
		return server.JSON(http.StatusOK, map[string]string{"ok": "yes"}), nil
	}
}

func countingStep(calls *int, err error) server.Step {
	return func(ctx context.Context, req server.Request) (server.Continuation, error) {
		*calls++
		return server.Continuation{}, err
	}
}

func newDispatcher(t *testing.T, routes ...server.Route) *server.Dispatcher {
	t.Helper()
	table, err := server.NewRouteTable(routes...)
	require.NoError(t, err)
	return server.NewDispatcher(table, nil)
}

func request(method string, segments ...string) server.Request {
	return server.Request{Method: method, Segments: segments, RequestID: "test"}
}

func TestDispatchUnknownRoute(t *testing.T) {
	var calls int
	d := newDispatcher(t, server.Route{
		Name:     "menu",
		Methods:  []string{"get"},
		Handlers: map[string]server.HandlerFunc{"get": okHandler(&calls)},
	})

	resp := d.Dispatch(context.Background(), request("get", "pizzas"))

	require.Equal(t, http.StatusNotFound, resp.Status)
	require.Equal(t, "Not Found", payloadOf(t, resp)["err"])
	require.Zero(t, calls)

	resp = d.Dispatch(context.Background(), request("get"))
	require.Equal(t, http.StatusNotFound, resp.Status)
}

func TestMethodGateRunsBeforeMiddleware(t *testing.T) {
	var stepCalls, handlerCalls int
	d := newDispatcher(t, server.Route{
		Name:     "order",
		Methods:  []string{"post"},
		Handlers: map[string]server.HandlerFunc{"post": okHandler(&handlerCalls)},
		Policy:   server.Always(countingStep(&stepCalls, apperrors.New(apperrors.ErrUnauthorized, "nope"))),
	})

	resp := d.Dispatch(context.Background(), request("get", "order"))

	require.Equal(t, http.StatusMethodNotAllowed, resp.Status)
	require.Equal(t, "POST", resp.Headers.Get("Allow"))
	require.Zero(t, stepCalls)
	require.Zero(t, handlerCalls)
}

func TestPipelineShortCircuits(t *testing.T) {
	var first, second, third, handlerCalls int
	d := newDispatcher(t, server.Route{
		Name:     "cart",
		Methods:  []string{"get"},
		Handlers: map[string]server.HandlerFunc{"get": okHandler(&handlerCalls)},
		Policy: server.Always(
			countingStep(&first, nil),
			countingStep(&second, apperrors.New(apperrors.ErrUnauthorized, "Missing or invalid token.")),
			countingStep(&third, nil),
		),
	})

	resp := d.Dispatch(context.Background(), request("get", "cart"))

	require.Equal(t, http.StatusUnauthorized, resp.Status)
	require.Equal(t, "Missing or invalid token.", payloadOf(t, resp)["message"])
	require.Equal(t, 1, first)
	require.Equal(t, 1, second)
	require.Zero(t, third)
	require.Zero(t, handlerCalls)
}

func TestStepAttachesTokenForHandler(t *testing.T) {
	attached := &token.Token{ID: "abc", Email: "ana@pizza.com"}
	var seen *token.Token
	d := newDispatcher(t, server.Route{
		Name:    "users",
		Methods: []string{"get"},
		Handlers: map[string]server.HandlerFunc{"get": func(ctx context.Context, req server.Request) (server.Response, error) {
			seen = req.Token
			return server.NoContent(), nil
		}},
		Policy: server.Always(func(ctx context.Context, req server.Request) (server.Continuation, error) {
			return server.Continuation{Token: attached}, nil
		}),
	})

	d.Dispatch(context.Background(), request("get", "users"))
	require.Equal(t, attached, seen)
}

func pendingStep(headers http.Header) server.Step {
	return func(ctx context.Context, req server.Request) (server.Continuation, error) {
		return server.Continuation{Headers: headers}, nil
	}
}

func TestPendingHeadersMergedWithoutOverwriting(t *testing.T) {
	pending := http.Header{}
	pending.Set("X-Session", "renewed")
	pending.Set("X-Trace", "from-step")
	pending.Add("Set-Cookie", "access_token=abc; Max-Age=900")

	d := newDispatcher(t, server.Route{
		Name:    "cart",
		Methods: []string{"get", "delete"},
		Handlers: map[string]server.HandlerFunc{
			"get": func(ctx context.Context, req server.Request) (server.Response, error) {
				resp := server.JSON(http.StatusOK, nil)
				resp.Headers = http.Header{"X-Trace": {"from-handler"}}
				return resp, nil
			},
			"delete": func(ctx context.Context, req server.Request) (server.Response, error) {
				return server.NoContent().WithCookies("access_token=no_id; Max-Age=-1"), nil
			},
		},
		Policy: server.Always(pendingStep(pending)),
	})

	resp := d.Dispatch(context.Background(), request("get", "cart"))
	require.Equal(t, "renewed", resp.Headers.Get("X-Session"))
	require.Equal(t, []string{"from-handler"}, resp.Headers.Values("X-Trace"))
	require.Equal(t, []string{"access_token=abc; Max-Age=900"}, resp.Headers.Values("Set-Cookie"))

	resp = d.Dispatch(context.Background(), request("delete", "cart"))
	require.Equal(t, []string{"access_token=no_id; Max-Age=-1"}, resp.Headers.Values("Set-Cookie"))
}

func TestPendingHeadersSurviveHandlerFailure(t *testing.T) {
	pending := http.Header{}
	pending.Add("Set-Cookie", "access_token=abc; Max-Age=900")
	d := newDispatcher(t, server.Route{
		Name:    "card",
		Methods: []string{"post"},
		Handlers: map[string]server.HandlerFunc{"post": func(ctx context.Context, req server.Request) (server.Response, error) {
			return server.Response{}, apperrors.New(apperrors.ErrValidation, "Only one card can be registered.")
		}},
		Policy: server.Always(pendingStep(pending)),
	})

	resp := d.Dispatch(context.Background(), request("post", "card"))
	require.Equal(t, http.StatusBadRequest, resp.Status)
	require.Equal(t, "access_token=abc; Max-Age=900", resp.Headers.Get("Set-Cookie"))
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		label   string
		message string
	}{
		{"not found", apperrors.New(apperrors.ErrNotFound, "User doesn't exist."), 404, "Not Found", "User doesn't exist."},
		{"bare not found", apperrors.ErrNotFound, 404, "Not Found", "Not found."},
		{"already exists", apperrors.ErrAlreadyExists, 409, "Conflict", "Already exists."},
		{"expired", apperrors.ErrExpired, 401, "Unauthorized", "Missing or invalid token."},
		{"unauthorized", apperrors.New(apperrors.ErrUnauthorized, "You cannot delete others' card."), 401, "Unauthorized", "You cannot delete others' card."},
		{"validation", apperrors.Validation("Missing or invalid required fields: email.", "email"), 400, "Validation", "Missing or invalid required fields: email."},
		{"upstream", apperrors.Wrap(apperrors.ErrUpstream, errors.New("dial tcp: refused")), 502, "Bad Gateway", "A payment or mail provider is unavailable, try again later."},
		{"store", apperrors.Wrap(apperrors.ErrStore, errors.New("open /var/data/users/ana.json: permission denied")), 500, "Internal", "We're working on it :("},
		{"store with message", &apperrors.Error{Kind: apperrors.ErrStore, Message: "secret detail", Err: errors.New("io")}, 500, "Internal", "We're working on it :("},
		{"untagged", errors.New("goroutine 1 [running]: main.go:12"), 500, "Internal", "We're working on it :("},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(t, server.Route{
				Name:    "menu",
				Methods: []string{"get"},
				Handlers: map[string]server.HandlerFunc{"get": func(ctx context.Context, req server.Request) (server.Response, error) {
					return server.Response{}, tt.err
				}},
			})

			resp := d.Dispatch(context.Background(), request("get", "menu"))

			require.Equal(t, tt.status, resp.Status)
			payload := payloadOf(t, resp)
			require.Equal(t, tt.label, payload["err"])
			require.Equal(t, tt.message, payload["message"])
			body, err := json.Marshal(resp.Payload)
			require.NoError(t, err)
			require.NotContains(t, string(body), "permission denied")
			require.NotContains(t, string(body), "goroutine")
		})
	}
}

func TestValidationFieldsRendered(t *testing.T) {
	d := newDispatcher(t, server.Route{
		Name:    "users",
		Methods: []string{"post"},
		Handlers: map[string]server.HandlerFunc{"post": func(ctx context.Context, req server.Request) (server.Response, error) {
			return server.Response{}, apperrors.Validation("Missing or invalid required fields: name, email.", "name", "email")
		}},
	})

	resp := d.Dispatch(context.Background(), request("post", "users"))
	require.Equal(t, []any{"name", "email"}, payloadOf(t, resp)["fields"])
}

func TestNewRouteTableRejectsInvalidRoutes(t *testing.T) {
	var calls int
	h := okHandler(&calls)

	_, err := server.NewRouteTable(server.Route{
		Name:     "cart",
		Methods:  []string{"get", "post"},
		Handlers: map[string]server.HandlerFunc{"get": h},
	})
	require.Error(t, err)

	_, err = server.NewRouteTable(server.Route{
		Name:     "cart",
		Methods:  []string{"get"},
		Handlers: map[string]server.HandlerFunc{"get": h, "delete": h},
	})
	require.Error(t, err)

	_, err = server.NewRouteTable(
		server.Route{Name: "cart", Methods: []string{"get"}, Handlers: map[string]server.HandlerFunc{"get": h}},
		server.Route{Name: "cart", Methods: []string{"get"}, Handlers: map[string]server.HandlerFunc{"get": h}},
	)
	require.Error(t, err)

	table, err := server.NewRouteTable(
		server.Route{Name: "menu", Methods: []string{"get"}, Handlers: map[string]server.HandlerFunc{"get": h}},
		server.Route{Name: "cart", Methods: []string{"get"}, Handlers: map[string]server.HandlerFunc{"get": h}},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"cart", "menu"}, table.Names())
}

func TestPolicies(t *testing.T) {
	var calls int
	step := countingStep(&calls, nil)

	require.Len(t, server.Except(step, "post")("get"), 1)
	require.Empty(t, server.Except(step, "post")("post"))
	require.Len(t, server.Only(step, "delete")("delete"), 1)
	require.Empty(t, server.Only(step, "delete")("get"))
	require.Len(t, server.Always(step, step)("put"), 2)
	require.Empty(t, server.NoMiddleware()("get"))
}
