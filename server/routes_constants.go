package server

// Route names. The first path segment, after an optional "api" prefix,
// selects the route.
const (
	apiPrefix = "api"

	RouteUsers  = "users"
	RouteLogin  = "login"
	RouteLogout = "logout"
	RouteMenu   = "menu"
	RouteCart   = "cart"
	RouteCard   = "card"
	RouteOrder  = "order"
)
