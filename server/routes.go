package server

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/tripsync-admin/guard"
)

func (s *Server) initRoutes() {
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.RecoverMiddleware,
		s.LoggingMiddleware,
		s.FrameSecurityMiddleware,
		guard.Middleware(s.rules, guard.WithLogger(s.logger)),
	)

	// The guard answers "/" before it gets here; this only runs when it is disabled.
	s.registerRoute(http.MethodGet, RouteRoot, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteDashboard, http.StatusTemporaryRedirect)
	})

	// LOGIN
	s.registerRoute(http.MethodGet, RouteLogin, s.LoginPageUIHandler())
	s.registerRoute(http.MethodPost, RouteAuthLogin, s.LoginSubmissionHandler())
	s.registerRoute(http.MethodPost, RouteAuthLogout, s.LogoutHandler())

	s.registerRoute(http.MethodGet, RouteForgotPassword, s.PasswordHelpHandler("Forgot password"))
	s.registerRoute(http.MethodGet, RouteResetPassword, s.PasswordHelpHandler("Reset password"))

	// Dashboard pages
	s.registerRoute(http.MethodGet, RouteDashboard, s.DashboardHandler())
	s.registerRoute(http.MethodGet, RouteTours, s.ToursListHandler())
	s.registerRoute(http.MethodGet, RouteTour, s.TourDetailHandler())
	s.registerRoute(http.MethodGet, RouteUsers, s.UsersListHandler())
	s.registerRoute(http.MethodGet, RouteLocations, s.LocationsListHandler())

	s.registerRoute(http.MethodPost, RouteTourDelete, s.TourDeleteHandler())
	s.registerRoute(http.MethodPost, RouteUserDelete, s.UserDeleteHandler())
	s.registerRoute(http.MethodPost, RouteLocationDelete, s.LocationDeleteHandler())

	s.registerRoute(http.MethodGet, RouteStatic, s.CacheMiddleware(http.StripPrefix("/static/", FileServerHandler())).ServeHTTP)
	s.registerRoute(http.MethodGet, RouteFavicon, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}
