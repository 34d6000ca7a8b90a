package server

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// routes is the static route table: allowed methods, one handler per
// method and the session policy.
func (s *Server) routes(h *handlers, sessions Sessions) []Route {
	requireSession := sessions.RequireSession()
	return []Route{
		{
			Name:    RouteUsers,
			Methods: crudMethods,
			Handlers: map[string]HandlerFunc{
				methodGet:    h.getUser,
				methodPost:   h.createUser,
				methodPut:    h.updateUser,
				methodDelete: h.deleteUser,
			},
			Policy: Except(requireSession, methodPost),
		},
		{
			Name:     RouteLogin,
			Methods:  []string{methodPost},
			Handlers: map[string]HandlerFunc{methodPost: h.login},
			Policy:   NoMiddleware(),
		},
		{
			Name:     RouteLogout,
			Methods:  []string{methodGet},
			Handlers: map[string]HandlerFunc{methodGet: h.logout},
			Policy:   Always(sessions.LoadSession()),
		},
		{
			Name:    RouteMenu,
			Methods: crudMethods,
			Handlers: map[string]HandlerFunc{
				methodGet:    h.getMenu,
				methodPost:   h.createMenuItem,
				methodPut:    h.updateMenuItem,
				methodDelete: h.deleteMenuItem,
			},
			Policy: Except(requireSession, methodGet),
		},
		{
			Name:    RouteCart,
			Methods: crudMethods,
			Handlers: map[string]HandlerFunc{
				methodGet:    h.getCart,
				methodPost:   h.addToCart,
				methodPut:    h.updateCart,
				methodDelete: h.removeFromCart,
			},
			Policy: Always(requireSession),
		},
		{
			Name:    RouteCard,
			Methods: crudMethods,
			Handlers: map[string]HandlerFunc{
				methodGet:    h.getCard,
				methodPost:   h.createCard,
				methodPut:    h.updateCard,
				methodDelete: h.deleteCard,
			},
			Policy: Always(requireSession),
		},
		{
			Name:     RouteOrder,
			Methods:  []string{methodPost},
			Handlers: map[string]HandlerFunc{methodPost: h.placeOrder},
			Policy:   Always(requireSession),
		},
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, name := range s.table.Names() {
		route, _ := s.table.Lookup(name)
		for _, m := range route.Methods {
			logRoute(m, "/"+apiPrefix+"/"+name)
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", strings.ToUpper(method))
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}
