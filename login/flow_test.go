package login_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/auth/authfakes"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/login"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var issuedExpiry = time.Now().Add(time.Hour)

func issuedPair() credentials.Pair {
	return credentials.Pair{
		AccessToken:     "access-issued",
		RefreshToken:    "refresh-issued",
		AccessExpiresAt: issuedExpiry,
	}
}

// flowFixture wires a Flow to a real session manager over an in-memory
// store, so the tests observe what actually gets persisted and when.
type flowFixture struct {
	flow     *login.Flow
	sessions *session.Manager
	store    *credentials.MemoryStore
	backend  *authfakes.FakeBackend
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()

	fb := authfakes.NewFakeBackend()
	fb.ProfileFunc = func(string) (*auth.User, error) {
		return &auth.User{ID: 1, Username: "alice", Role: "manager"}, nil
	}

	store := credentials.NewMemoryStore()
	sessions, err := session.NewManager(fb, store)
	require.NoError(t, err)

	flow, err := login.NewFlow(fb, sessions)
	require.NoError(t, err)

	return &flowFixture{flow: flow, sessions: sessions, store: store, backend: fb}
}

func (f *flowFixture) storedPair(t *testing.T) *credentials.Pair {
	t.Helper()
	pair, err := f.store.Get()
	require.NoError(t, err)
	return pair
}

func TestSubmitWithoutSecondFactor(t *testing.T) {
	f := newFlowFixture(t)
	f.backend.LoginFunc = func(username, password string) (*auth.LoginResult, error) {
		require.Equal(t, "alice", username)
		require.Equal(t, "password123", password)
		pair := issuedPair()
		return &auth.LoginResult{Pair: &pair}, nil
	}

	require.NoError(t, f.flow.Submit(context.Background(), "alice", "password123"))

	require.Equal(t, login.StateAuthenticated, f.flow.State())
	require.Equal(t, session.StatusAuthenticated, f.sessions.Current().Status)
	require.Equal(t, issuedPair(), *f.storedPair(t))
	require.Zero(t, f.backend.RequestOtpCalls())
}

func TestSubmitInvalidCredentialsResetsToIdle(t *testing.T) {
	f := newFlowFixture(t)
	f.backend.LoginFunc = func(string, string) (*auth.LoginResult, error) {
		return nil, auth.InvalidCredentialsErr
	}

	err := f.flow.Submit(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, auth.InvalidCredentialsErr)
	require.Equal(t, login.StateIdle, f.flow.State())
	require.Nil(t, f.storedPair(t))
}

func TestOtpChallengeLifecycle(t *testing.T) {
	f := newFlowFixture(t)
	f.backend.LoginFunc = func(string, string) (*auth.LoginResult, error) {
		return &auth.LoginResult{OtpRequired: true}, nil
	}
	f.backend.VerifyOtpFunc = func(username, code string) (*credentials.Pair, error) {
		require.Equal(t, "alice", username)
		if code != "123456" {
			return nil, auth.InvalidOtpErr
		}
		pair := issuedPair()
		return &pair, nil
	}

	require.NoError(t, f.flow.Submit(context.Background(), "alice", "password123"))
	require.Equal(t, login.StateAwaitingOtp, f.flow.State())
	require.Equal(t, 1, f.backend.RequestOtpCalls(), "passcode delivery is requested on challenge")
	require.Nil(t, f.storedPair(t), "nothing is persisted before the passcode step")

	// A wrong code keeps the challenge open, the store untouched.
	err := f.flow.SubmitOtp(context.Background(), "000000")
	require.ErrorIs(t, err, auth.InvalidOtpErr)
	require.Equal(t, login.StateAwaitingOtp, f.flow.State())
	require.Nil(t, f.storedPair(t))

	require.NoError(t, f.flow.SubmitOtp(context.Background(), "123456"))
	require.Equal(t, login.StateAuthenticated, f.flow.State())
	require.Equal(t, session.StatusAuthenticated, f.sessions.Current().Status)
	require.Equal(t, issuedPair(), *f.storedPair(t))
}

func TestSubmitOtpNetworkFailureIsRetryable(t *testing.T) {
	f := newFlowFixture(t)
	f.backend.LoginFunc = func(string, string) (*auth.LoginResult, error) {
		return &auth.LoginResult{OtpRequired: true}, nil
	}
	f.backend.VerifyOtpFunc = func(string, string) (*credentials.Pair, error) {
		return nil, errors.Wrap(auth.NetworkErr, "backend unreachable")
	}

	require.NoError(t, f.flow.Submit(context.Background(), "alice", "password123"))

	err := f.flow.SubmitOtp(context.Background(), "123456")
	require.ErrorIs(t, err, auth.NetworkErr)
	require.Equal(t, login.StateAwaitingOtp, f.flow.State(), "a dropped connection must not force a restart")
}

func TestSubmitOtpExpiredPasscodeRestartsFlow(t *testing.T) {
	f := newFlowFixture(t)
	f.backend.LoginFunc = func(string, string) (*auth.LoginResult, error) {
		return &auth.LoginResult{OtpRequired: true}, nil
	}
	f.backend.VerifyOtpFunc = func(string, string) (*credentials.Pair, error) {
		return nil, auth.OtpExpiredErr
	}

	require.NoError(t, f.flow.Submit(context.Background(), "alice", "password123"))

	err := f.flow.SubmitOtp(context.Background(), "123456")
	require.ErrorIs(t, err, auth.OtpExpiredErr)
	require.Equal(t, login.StateIdle, f.flow.State(), "expired passcode sends the user back to the password step")
	require.Nil(t, f.storedPair(t))
}

func TestSubmitWhileBusy(t *testing.T) {
	f := newFlowFixture(t)
	f.backend.LoginFunc = func(string, string) (*auth.LoginResult, error) {
		return &auth.LoginResult{OtpRequired: true}, nil
	}

	require.NoError(t, f.flow.Submit(context.Background(), "alice", "password123"))
	require.ErrorIs(t, f.flow.Submit(context.Background(), "alice", "password123"), login.FlowBusyErr)
}

func TestSubmitOtpWithoutChallenge(t *testing.T) {
	f := newFlowFixture(t)
	require.ErrorIs(t, f.flow.SubmitOtp(context.Background(), "123456"), login.NotAwaitingOtpErr)
}

func TestAbandonHasNoSideEffects(t *testing.T) {
	f := newFlowFixture(t)
	f.backend.LoginFunc = func(string, string) (*auth.LoginResult, error) {
		return &auth.LoginResult{OtpRequired: true}, nil
	}

	require.NoError(t, f.flow.Submit(context.Background(), "alice", "password123"))
	require.True(t, f.flow.AwaitingOtp())

	f.flow.Abandon()

	require.Equal(t, login.StateIdle, f.flow.State())
	require.Nil(t, f.storedPair(t))
	require.Equal(t, session.StatusUninitialized, f.sessions.Current().Status,
		"abandoning a login attempt never touches the session")
}
