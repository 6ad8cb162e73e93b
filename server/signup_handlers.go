package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SignupPageData contains data for rendering the signup page
type SignupPageData struct {
	Title     string
	Error     string
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// SignupPageHandler displays the registration form (GET /signup)
func (s *Server) SignupPageHandler() http.HandlerFunc {
	signupTmpl := parsePage("signup", signupContent)

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		data := SignupPageData{
			Title:     "Create account",
			Error:     query.Get("error"),
			Username:  query.Get("username"),
			Email:     query.Get("email"),
			FirstName: query.Get("first_name"),
			LastName:  query.Get("last_name"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := signupTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render signup page")
			http.Error(w, "Failed to render signup page", http.StatusInternalServerError)
		}
	}
}

// SignupSubmissionHandler processes the registration form. A created
// account comes back with a usable credential pair, so it is adopted
// immediately - registration is a login.
func (s *Server) SignupSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		data := auth.RegistrationData{
			Username:  r.FormValue("username"),
			Email:     r.FormValue("email"),
			Password:  r.FormValue("password"),
			Password2: r.FormValue("password2"),
			FirstName: r.FormValue("first_name"),
			LastName:  r.FormValue("last_name"),
		}

		result, err := s.authAPI.Register(r.Context(), data)
		if err != nil {
			s.redirectSignupError(w, r, data, err)
			return
		}

		if result.User != nil {
			err = s.sessions.AdoptUser(*result.Pair, result.User)
		} else {
			err = s.sessions.Adopt(r.Context(), *result.Pair)
		}
		if err != nil {
			http.Redirect(w, r, RouteLogin+"?error="+url.QueryEscape("Account created, please sign in"), http.StatusSeeOther)
			return
		}

		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

func (s *Server) redirectSignupError(w http.ResponseWriter, r *http.Request, data auth.RegistrationData, err error) {
	message := "Registration failed, try again"

	var regErr *auth.RegistrationError
	switch {
	case errors.As(err, &regErr):
		var parts []string
		for field, messages := range regErr.Fields {
			parts = append(parts, field+": "+strings.Join(messages, ", "))
		}
		if len(parts) > 0 {
			message = strings.Join(parts, "; ")
		}
	case errors.Is(err, auth.NetworkErr):
		message = "Could not reach the server, try again"
	}

	query := url.Values{}
	query.Set("error", message)
	query.Set("username", data.Username)
	query.Set("email", data.Email)
	query.Set("first_name", data.FirstName)
	query.Set("last_name", data.LastName)
	http.Redirect(w, r, RouteSignup+"?"+query.Encode(), http.StatusSeeOther)
}
