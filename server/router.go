package server

import (
	"fmt"
	"sort"
)

var crudMethods = []string{methodGet, methodPost, methodPut, methodDelete}

const (
	methodGet    = "get"
	methodPost   = "post"
	methodPut    = "put"
	methodDelete = "delete"
)

// Route binds a name (the first path segment) to one handler per allowed
// method and a middleware policy.
type Route struct {
	Name     string
	Methods  []string
	Handlers map[string]HandlerFunc
	Policy   Policy
}

func (r Route) allows(method string) bool {
	_, ok := r.Handlers[method]
	return ok
}

// RouteTable is built once at startup and never changes afterwards.
type RouteTable struct {
	routes map[string]Route
}

// NewRouteTable checks that every allowed method of every route has exactly
// one handler and that route names are unique.
func NewRouteTable(routes ...Route) (RouteTable, error) {
	t := RouteTable{routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		if r.Name == "" {
			return RouteTable{}, fmt.Errorf("route without a name")
		}
		if _, dup := t.routes[r.Name]; dup {
			return RouteTable{}, fmt.Errorf("route %q registered twice", r.Name)
		}
		if len(r.Methods) == 0 {
			return RouteTable{}, fmt.Errorf("route %q allows no methods", r.Name)
		}
		handlers := make(map[string]HandlerFunc, len(r.Methods))
		for _, m := range r.Methods {
			h, ok := r.Handlers[m]
			if !ok || h == nil {
				return RouteTable{}, fmt.Errorf("route %q allows %s but has no handler for it", r.Name, m)
			}
			handlers[m] = h
		}
		if len(r.Handlers) != len(handlers) {
			return RouteTable{}, fmt.Errorf("route %q has handlers for methods it does not allow", r.Name)
		}
		if r.Policy == nil {
			r.Policy = NoMiddleware()
		}
		r.Methods = append([]string(nil), r.Methods...)
		r.Handlers = handlers
		t.routes[r.Name] = r
	}
	return t, nil
}

func (t RouteTable) Lookup(name string) (Route, bool) {
	r, ok := t.routes[name]
	return r, ok
}

// Names returns the route names in alphabetical order.
func (t RouteTable) Names() []string {
	names := make([]string, 0, len(t.routes))
	for n := range t.routes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
