package login

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// State is the login flow's position in a single login attempt.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateAwaitingOtp
	StateVerifyingOtp
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingOtp:
		return "awaiting_otp"
	case StateVerifyingOtp:
		return "verifying_otp"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

var (
	FlowBusyErr       = errors.New("login flow already in progress")
	NotAwaitingOtpErr = errors.New("no pending one-time passcode challenge")
)

// API is the slice of the auth client the flow needs.
type API interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
	RequestOtp(ctx context.Context, username, password string) error
	VerifyOtp(ctx context.Context, username, code string) (*credentials.Pair, error)
}

// SessionAdopter applies a freshly issued credential pair; satisfied by
// session.Manager. The flow never touches the credential store itself -
// nothing is persisted until the flow reaches terminal success.
type SessionAdopter interface {
	Adopt(ctx context.Context, pair credentials.Pair) error
}

// challenge is the flow-scoped login attempt. The password lives in
// memory only, for exactly as long as the flow needs it.
type challenge struct {
	username string
	password string
}

// Flow coordinates one login attempt: credential submission, the
// optional OTP challenge, and handover to the session manager. Create
// one per login screen; dispose of it when the screen goes away.
type Flow struct {
	api      API
	sessions SessionAdopter
	log      zerolog.Logger

	lock      sync.Mutex
	state     State
	challenge challenge
}

type FlowOption func(*Flow)

func WithLogger(log zerolog.Logger) FlowOption {
	return func(f *Flow) {
		f.log = log
	}
}

// NewFlow initializes a Flow with required dependencies.
func NewFlow(api API, sessions SessionAdopter, options ...FlowOption) (*Flow, error) {
	if api == nil {
		return nil, errors.New("[NewFlow] api is required")
	}
	if sessions == nil {
		return nil, errors.New("[NewFlow] sessions adopter is required")
	}

	f := &Flow{
		api:      api,
		sessions: sessions,
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(f)
	}
	return f, nil
}

func (f *Flow) State() State {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.state
}

// AwaitingOtp reports whether the flow is waiting for a passcode.
func (f *Flow) AwaitingOtp() bool {
	return f.State() == StateAwaitingOtp
}

// Submit runs the password step. On success the session is established
// directly; when the backend demands a second factor the flow moves to
// StateAwaitingOtp (and OTP delivery has been requested) with no
// credentials issued yet. Invalid credentials and unrecoverable errors
// reset the flow to idle.
func (f *Flow) Submit(ctx context.Context, username, password string) error {
	f.lock.Lock()
	if f.state != StateIdle {
		f.lock.Unlock()
		return FlowBusyErr
	}
	f.state = StateSubmitting
	f.challenge = challenge{username: username, password: password}
	f.lock.Unlock()

	result, err := f.api.Login(ctx, username, password)
	if err != nil {
		f.reset()
		return err
	}

	if result.OtpRequired {
		if err := f.api.RequestOtp(ctx, username, password); err != nil {
			f.reset()
			return err
		}
		f.log.Debug().Str("username", username).Msg("second factor required, passcode requested")
		f.setState(StateAwaitingOtp)
		return nil
	}

	if err := f.sessions.Adopt(ctx, *result.Pair); err != nil {
		f.reset()
		return err
	}
	f.finish()
	return nil
}

// SubmitOtp runs the passcode step. An invalid passcode keeps the flow
// in StateAwaitingOtp so the user can re-enter it; an expired passcode
// resets the flow, and credentials must be submitted again. Transient
// network failures are also retryable without a restart.
func (f *Flow) SubmitOtp(ctx context.Context, code string) error {
	f.lock.Lock()
	if f.state != StateAwaitingOtp {
		f.lock.Unlock()
		return NotAwaitingOtpErr
	}
	f.state = StateVerifyingOtp
	username := f.challenge.username
	f.lock.Unlock()

	pair, err := f.api.VerifyOtp(ctx, username, code)
	if err != nil {
		switch {
		case errors.Is(err, auth.InvalidOtpErr), errors.Is(err, auth.NetworkErr):
			f.setState(StateAwaitingOtp)
		default:
			f.reset()
		}
		return err
	}

	if err := f.sessions.Adopt(ctx, *pair); err != nil {
		f.reset()
		return err
	}
	f.finish()
	return nil
}

// Abandon disposes of the flow without side effects. Nothing was ever
// persisted mid-flow, so there is nothing else to undo.
func (f *Flow) Abandon() {
	f.reset()
}

func (f *Flow) finish() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.state = StateAuthenticated
	f.challenge = challenge{}
}

func (f *Flow) reset() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.state = StateIdle
	f.challenge = challenge{}
}

func (f *Flow) setState(state State) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.state = state
}
