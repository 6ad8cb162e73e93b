package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public routes
	RouteIndex    = "/"
	RouteLogin    = "/login"
	RouteLoginOtp = "/login/otp"
	RouteSignup   = "/signup"

	// Form submission routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthOtp      = "/auth/otp"
	RouteAuthRegister = "/auth/register"
	RouteAuthLogout   = "/auth/logout"

	// Protected routes (session-gated)
	RouteDashboard = "/dashboard"
	RouteSecurity  = "/security"
)
