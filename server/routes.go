package server

import (
	"net/http"

	"github.com/jrsteele09/go-auth-client/guard"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, s.IndexHandler())

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, s.LoginPageHandler())
	s.RegisterRouteFunc("POST "+RouteAuthLogin, s.LoginSubmissionHandler())
	s.RegisterRouteFunc("GET "+RouteLoginOtp, s.OtpPageHandler())
	s.RegisterRouteFunc("POST "+RouteAuthOtp, s.OtpSubmissionHandler())
	s.RegisterRouteFunc("GET "+RouteAuthLogout, s.LogoutHandler())

	// SIGNUP
	s.RegisterRouteFunc("GET "+RouteSignup, s.SignupPageHandler())
	s.RegisterRouteFunc("POST "+RouteAuthRegister, s.SignupSubmissionHandler())

	// Protected routes (gate on session state before rendering)
	sessionGate := guard.Middleware(s.sessions, RouteLogin)
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleware(sessionGate)...))
	s.RegisterRouteHandler("GET "+RouteSecurity, ChainMiddleware(s.SecurityEventsHandler(), s.HTMLMiddleware(sessionGate)...))
}

// IndexHandler sends visitors to the dashboard; the guard sorts out
// whether they end up there or on the login page.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}
