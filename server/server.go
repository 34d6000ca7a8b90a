package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/RenanGalvao/pizza-ecommerce/internal/config"
	"github.com/RenanGalvao/pizza-ecommerce/mailer"
	"github.com/RenanGalvao/pizza-ecommerce/payments"
	"github.com/RenanGalvao/pizza-ecommerce/records"
	"github.com/RenanGalvao/pizza-ecommerce/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators the server is built on.
type Deps struct {
	Store    records.Store
	Payments payments.Gateway
	Mailer   mailer.Sender
	Receipts mailer.Receipts

	// TokenOptions are appended to the token manager options derived from
	// the config, e.g. a fixed clock in tests.
	TokenOptions []token.ManagerOption
}

type Server struct {
	env        string // Environment (e.g., "DEV", "production")
	config     config.Config
	handlers   *handlers
	table      RouteTable
	dispatcher *Dispatcher
	handler    http.HandlerFunc
}

func New(ctx context.Context, cfg config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Payments == nil || deps.Mailer == nil || deps.Receipts == nil {
		return nil, errors.New("[Server New] store, payments, mailer and receipts are required")
	}

	locker := records.NewKeyedLocker()
	options := []token.ManagerOption{
		token.WithIDLength(cfg.GetTokenIDLength()),
		token.WithSecureCookies(cfg.IsProduction()),
		token.WithLocker(locker),
	}
	tokens := token.New(deps.Store, append(options, deps.TokenOptions...)...)

	s := &Server{
		env:    cfg.GetEnv(),
		config: cfg,
	}
	s.handlers = newHandlers(cfg, deps.Store, locker, tokens, deps)

	table, err := NewRouteTable(s.routes(s.handlers, NewSessions(tokens))...)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] invalid route table")
	}
	s.table = table
	s.dispatcher = NewDispatcher(table, nil)

	if _, err := s.SeedMenu(ctx); err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to seed the menu")
	}

	s.handler = ChainMiddleware(s.serveAPI, s.APIMiddleware()...)
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

// serveAPI adapts an HTTP request to the dispatcher and writes its answer.
func (s *Server) serveAPI(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.GetRequestTimeout())
	defer cancel()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.GetMaxBodyBytes()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorPayload{Err: "Validation", Message: "Request body too large."})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorPayload{Err: "Validation", Message: "Could not read the request body."})
		return
	}

	resp := s.dispatcher.Dispatch(ctx, newRequest(r, body))
	writeResponse(w, resp)
}

func newRequest(r *http.Request, body []byte) Request {
	segments := pathSegments(r.URL.Path)
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}
	return Request{
		Method:     strings.ToLower(r.Method),
		Path:       r.URL.Path,
		Segments:   segments,
		Query:      r.URL.Query(),
		Body:       body,
		Cookies:    cookies,
		RemoteAddr: r.RemoteAddr,
		RequestID:  requestIDFrom(r.Context()),
	}
}

// pathSegments splits path on "/", dropping empty segments and a leading
// "api".
func pathSegments(path string) []string {
	var segments []string
	for _, p := range strings.Split(path, "/") {
		if p = strings.TrimSpace(p); p != "" {
			segments = append(segments, p)
		}
	}
	if len(segments) > 0 && segments[0] == apiPrefix {
		segments = segments[1:]
	}
	return segments
}

func writeResponse(w http.ResponseWriter, resp Response) {
	for k, vs := range resp.Headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	body := resp.Raw
	if body == nil && resp.Payload != nil {
		data, err := json.Marshal(resp.Payload)
		if err != nil {
			log.Err(err).Msg("could not encode response payload")
			writeJSON(w, http.StatusInternalServerError, errorPayload{Err: "Internal", Message: internalMessage})
			return
		}
		body = data
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = contentTypeJSON
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Debug().Err(err).Msg("could not write response body")
	}
}
