package server

import "github.com/jrsteele09/tripsync-admin/guard"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin      = guard.RouteLogin
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Auth Routes - Password Management
	RouteForgotPassword = guard.RouteForgotPassword
	RouteResetPassword  = guard.RouteResetPassword

	// Dashboard Routes
	RouteRoot      = guard.RouteRoot
	RouteDashboard = guard.RouteDashboard
	RouteTours     = guard.RouteTours
	RouteTour      = guard.RouteTours + "/{id}"
	RouteUsers     = guard.RouteUsers
	RouteLocations = guard.RouteLocations

	// Delete actions, posted from the list pages
	RouteTourDelete     = RouteTour + "/delete"
	RouteUserDelete     = guard.RouteUsers + "/{id}/delete"
	RouteLocationDelete = guard.RouteLocations + "/{id}/delete"

	// Static Asset Routes (patterns)
	RouteStatic  = "/static/*"
	RouteFavicon = "/favicon.ico"
)
