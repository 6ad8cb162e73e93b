package server

import (
	"net/http"

	"github.com/jrsteele09/go-auth-client/audit"
	"github.com/rs/zerolog/log"
)

// DashboardPageData contains data for rendering the dashboard
type DashboardPageData struct {
	Title    string
	Error    string
	FullName string
	Email    string
	Role     string
}

// DashboardHandler renders the signed-in user's profile. The guard has
// already established that a user is present.
func (s *Server) DashboardHandler() http.HandlerFunc {
	dashboardTmpl := parsePage("dashboard", dashboardContent)

	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := s.sessions.Current()
		if snapshot.User == nil {
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}

		data := DashboardPageData{
			Title:    "Dashboard",
			FullName: snapshot.User.FullName(),
			Email:    snapshot.User.Email,
			Role:     snapshot.User.Role,
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := dashboardTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render dashboard")
			http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		}
	}
}

// SecurityPageData contains data for rendering the security activity page
type SecurityPageData struct {
	Title  string
	Error  string
	Events []audit.Event
}

// SecurityEventsHandler renders the backend's authentication audit
// trail for the signed-in user.
func (s *Server) SecurityEventsHandler() http.HandlerFunc {
	securityTmpl := parsePage("security", securityContent)

	return func(w http.ResponseWriter, r *http.Request) {
		data := SecurityPageData{Title: "Security activity"}

		events, err := s.auditLog.Events(r.Context())
		if err != nil {
			log.Err(err).Msg("Failed to fetch security events")
			data.Error = "Security activity is unavailable right now"
		} else {
			data.Events = events
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := securityTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render security activity")
			http.Error(w, "Failed to render security activity", http.StatusInternalServerError)
		}
	}
}
