package session

import "github.com/jrsteele09/go-auth-client/auth"

// Status is the lifecycle state of the client session. It is created as
// StatusUninitialized at application start, transitions once during the
// startup probe, and thereafter changes only through login, logout and
// refresh-failure events.
type Status int

const (
	StatusUninitialized Status = iota
	StatusChecking
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session at one point in time.
// Consumers read snapshots; they never mutate session state directly.
type Snapshot struct {
	Status Status
	User   *auth.User
}

// Authenticated reports whether the snapshot carries a signed-in user.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}
