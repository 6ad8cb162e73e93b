package guard

import (
	"net/http"

	"github.com/jrsteele09/go-auth-client/session"
)

// SessionReader is the read-only view of the session manager the guard
// subscribes to; satisfied by session.Manager.
type SessionReader interface {
	Current() session.Snapshot
}

// checkingPlaceholder is served while the startup probe is still
// running. Holding the page instead of redirecting avoids the
// redirect-then-bounce-back flash for users who do have a valid
// session; the meta refresh retries until the probe settles.
const checkingPlaceholder = `<!DOCTYPE html>
<html>
<head><meta http-equiv="refresh" content="1"><title>Authenticating</title></head>
<body><p>Authenticating&hellip;</p></body>
</html>`

// Middleware gates a protected handler on session state: authenticated
// requests pass through, signed-out requests are redirected to
// loginPath, and requests arriving before the startup probe settles get
// a loading placeholder rather than a premature redirect. The guard
// holds no state of its own.
func Middleware(sessions SessionReader, loginPath string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch sessions.Current().Status {
			case session.StatusAuthenticated:
				next(w, r)
			case session.StatusUnauthenticated:
				// See Other, so back-navigation cannot land on the
				// protected view.
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
			default: // StatusUninitialized, StatusChecking
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(checkingPlaceholder))
			}
		}
	}
}
