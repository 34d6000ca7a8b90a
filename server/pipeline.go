package server

import (
	"context"
	"net/http"

	"github.com/RenanGalvao/pizza-ecommerce/token"
)

// Continuation is what a middleware step hands to the next one: an optional
// token to attach and response headers that must reach the client whatever
// the handler returns.
type Continuation struct {
	Token   *token.Token
	Headers http.Header
}

// Step is one middleware step. A non-nil error aborts the request and is
// rendered like a handler error.
type Step func(ctx context.Context, req Request) (Continuation, error)

// runPipeline runs steps in order and stops at the first error. It returns
// the request with any attached token and the accumulated pending headers.
func runPipeline(ctx context.Context, req Request, steps []Step) (Request, http.Header, error) {
	pending := http.Header{}
	for _, step := range steps {
		cont, err := step(ctx, req)
		if err != nil {
			return req, nil, err
		}
		if cont.Token != nil {
			req.Token = cont.Token
		}
		for k, vs := range cont.Headers {
			for _, v := range vs {
				pending.Add(k, v)
			}
		}
	}
	return req, pending, nil
}

// Policy picks the middleware steps for a request method.
type Policy func(method string) []Step

// NoMiddleware runs nothing before the handler.
func NoMiddleware() Policy {
	return func(string) []Step { return nil }
}

// Always runs steps for every method.
func Always(steps ...Step) Policy {
	return func(string) []Step { return steps }
}

// Except runs steps for every method but the listed ones.
func Except(step Step, methods ...string) Policy {
	skip := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		skip[m] = struct{}{}
	}
	return func(method string) []Step {
		if _, ok := skip[method]; ok {
			return nil
		}
		return []Step{step}
	}
}

// Only runs step for the listed methods.
func Only(step Step, methods ...string) Policy {
	run := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		run[m] = struct{}{}
	}
	return func(method string) []Step {
		if _, ok := run[method]; ok {
			return []Step{step}
		}
		return nil
	}
}
