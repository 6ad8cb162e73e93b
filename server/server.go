package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-auth-client/audit"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/login"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/pkg/errors"
)

// Server is the small local UI exercising the session library: a login
// screen (with the optional OTP step), a registration form, and a pair
// of session-gated pages.
type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	authAPI  *auth.Client
	sessions *session.Manager
	auditLog *audit.Log

	// One login flow exists per login screen visit; it is replaced
	// whenever a fresh attempt starts.
	flowLock sync.Mutex
	flow     *login.Flow
}

func New(cfg config.Config, authAPI *auth.Client, sessions *session.Manager) (*Server, error) {
	if authAPI == nil {
		return nil, errors.New("[server.New] auth client is required")
	}
	if sessions == nil {
		return nil, errors.New("[server.New] session manager is required")
	}

	auditLog, err := audit.NewLog(authAPI, sessions)
	if err != nil {
		return nil, errors.Wrap(err, "[server.New]")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		authAPI:  authAPI,
		sessions: sessions,
		auditLog: auditLog,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// currentFlow returns the active login flow, creating one when the
// login screen is (re)entered.
func (s *Server) currentFlow() (*login.Flow, error) {
	s.flowLock.Lock()
	defer s.flowLock.Unlock()

	if s.flow == nil || s.flow.State() == login.StateAuthenticated {
		flow, err := login.NewFlow(s.authAPI, s.sessions)
		if err != nil {
			return nil, err
		}
		s.flow = flow
	}
	return s.flow, nil
}

// dropFlow abandons any in-progress login attempt.
func (s *Server) dropFlow() {
	s.flowLock.Lock()
	defer s.flowLock.Unlock()
	if s.flow != nil {
		s.flow.Abandon()
		s.flow = nil
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
