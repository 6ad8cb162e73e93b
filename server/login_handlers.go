package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/login"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Title    string
	Error    string
	Username string // Preserve username on error
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := parsePage("login", loginContent)

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			Title:    "Sign in",
			Error:    r.URL.Query().Get("error"),
			Username: r.URL.Query().Get("username"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login page")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		username := r.FormValue("username")
		password := r.FormValue("password")

		// Resubmitting credentials always starts a fresh attempt.
		s.dropFlow()
		flow, err := s.currentFlow()
		if err != nil {
			http.Error(w, "login unavailable", http.StatusInternalServerError)
			return
		}

		if err := flow.Submit(r.Context(), username, password); err != nil {
			s.redirectLoginError(w, r, username, err)
			return
		}

		if flow.AwaitingOtp() {
			http.Redirect(w, r, RouteLoginOtp, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

// OtpPageHandler displays the passcode entry form (GET /login/otp)
func (s *Server) OtpPageHandler() http.HandlerFunc {
	otpTmpl := parsePage("otp", otpContent)

	return func(w http.ResponseWriter, r *http.Request) {
		flow, err := s.currentFlow()
		if err != nil || flow.State() != login.StateAwaitingOtp {
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}

		data := LoginPageData{
			Title: "Two-factor verification",
			Error: r.URL.Query().Get("error"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := otpTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render passcode page")
			http.Error(w, "Failed to render passcode page", http.StatusInternalServerError)
		}
	}
}

// OtpSubmissionHandler processes the passcode submission
func (s *Server) OtpSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		flow, err := s.currentFlow()
		if err != nil {
			http.Error(w, "login unavailable", http.StatusInternalServerError)
			return
		}

		err = flow.SubmitOtp(r.Context(), r.FormValue("code"))
		switch {
		case err == nil:
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
		case errors.Is(err, auth.InvalidOtpErr):
			http.Redirect(w, r, RouteLoginOtp+"?error="+url.QueryEscape("Invalid passcode, try again"), http.StatusSeeOther)
		case errors.Is(err, auth.NetworkErr):
			http.Redirect(w, r, RouteLoginOtp+"?error="+url.QueryEscape("Could not reach the server, try again"), http.StatusSeeOther)
		case errors.Is(err, auth.OtpExpiredErr):
			s.dropFlow()
			http.Redirect(w, r, RouteLogin+"?error="+url.QueryEscape("Passcode expired, sign in again"), http.StatusSeeOther)
		default:
			s.dropFlow()
			http.Redirect(w, r, RouteLogin+"?error="+url.QueryEscape("Sign-in failed, try again"), http.StatusSeeOther)
		}
	}
}

// LogoutHandler ends the session (GET /auth/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.dropFlow()
		s.sessions.Logout(r.Context())
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

func (s *Server) redirectLoginError(w http.ResponseWriter, r *http.Request, username string, err error) {
	var message string
	switch {
	case errors.Is(err, auth.InvalidCredentialsErr):
		message = "Invalid username or password"
	case errors.Is(err, auth.NetworkErr):
		message = "Could not reach the server, try again"
	default:
		message = "Sign-in failed, try again"
	}

	query := url.Values{}
	query.Set("error", message)
	if username != "" {
		query.Set("username", username)
	}
	http.Redirect(w, r, RouteLogin+"?"+query.Encode(), http.StatusSeeOther)
}
