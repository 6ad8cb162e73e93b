package authfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/audit"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/login"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/pkg/errors"
)

var (
	_ session.API   = (*FakeBackend)(nil)
	_ login.API     = (*FakeBackend)(nil)
	_ audit.Fetcher = (*FakeBackend)(nil)
)

// FakeBackend is a scriptable stand-in for the auth client. Each
// operation delegates to the corresponding func field when set and
// counts its invocations.
type FakeBackend struct {
	lock sync.Mutex

	loginCalls          int
	requestOtpCalls     int
	verifyOtpCalls      int
	refreshCalls        int
	profileCalls        int
	logoutCalls         int
	securityEventsCalls int

	LoginFunc          func(username, password string) (*auth.LoginResult, error)
	RequestOtpFunc     func(username, password string) error
	VerifyOtpFunc      func(username, code string) (*credentials.Pair, error)
	RefreshFunc        func(refreshToken string) (*credentials.Pair, error)
	ProfileFunc        func(accessToken string) (*auth.User, error)
	LogoutFunc         func(accessToken string) error
	SecurityEventsFunc func(accessToken string) ([]audit.Event, error)
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{}
}

func (fb *FakeBackend) Login(_ context.Context, username, password string) (*auth.LoginResult, error) {
	fb.count(&fb.loginCalls)
	if fb.LoginFunc == nil {
		return nil, errors.New("fake login not scripted")
	}
	return fb.LoginFunc(username, password)
}

func (fb *FakeBackend) RequestOtp(_ context.Context, username, password string) error {
	fb.count(&fb.requestOtpCalls)
	if fb.RequestOtpFunc == nil {
		return nil
	}
	return fb.RequestOtpFunc(username, password)
}

func (fb *FakeBackend) VerifyOtp(_ context.Context, username, code string) (*credentials.Pair, error) {
	fb.count(&fb.verifyOtpCalls)
	if fb.VerifyOtpFunc == nil {
		return nil, errors.New("fake verify otp not scripted")
	}
	return fb.VerifyOtpFunc(username, code)
}

func (fb *FakeBackend) Refresh(_ context.Context, refreshToken string) (*credentials.Pair, error) {
	fb.count(&fb.refreshCalls)
	if fb.RefreshFunc == nil {
		return nil, errors.New("fake refresh not scripted")
	}
	return fb.RefreshFunc(refreshToken)
}

func (fb *FakeBackend) Profile(_ context.Context, accessToken string) (*auth.User, error) {
	fb.count(&fb.profileCalls)
	if fb.ProfileFunc == nil {
		return nil, errors.New("fake profile not scripted")
	}
	return fb.ProfileFunc(accessToken)
}

func (fb *FakeBackend) Logout(_ context.Context, accessToken string) error {
	fb.count(&fb.logoutCalls)
	if fb.LogoutFunc == nil {
		return nil
	}
	return fb.LogoutFunc(accessToken)
}

func (fb *FakeBackend) SecurityEvents(_ context.Context, accessToken string) ([]audit.Event, error) {
	fb.count(&fb.securityEventsCalls)
	if fb.SecurityEventsFunc == nil {
		return nil, nil
	}
	return fb.SecurityEventsFunc(accessToken)
}

func (fb *FakeBackend) LoginCalls() int          { return fb.calls(&fb.loginCalls) }
func (fb *FakeBackend) RequestOtpCalls() int     { return fb.calls(&fb.requestOtpCalls) }
func (fb *FakeBackend) VerifyOtpCalls() int      { return fb.calls(&fb.verifyOtpCalls) }
func (fb *FakeBackend) RefreshCalls() int        { return fb.calls(&fb.refreshCalls) }
func (fb *FakeBackend) ProfileCalls() int        { return fb.calls(&fb.profileCalls) }
func (fb *FakeBackend) LogoutCalls() int         { return fb.calls(&fb.logoutCalls) }
func (fb *FakeBackend) SecurityEventsCalls() int { return fb.calls(&fb.securityEventsCalls) }

func (fb *FakeBackend) count(counter *int) {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	*counter++
}

func (fb *FakeBackend) calls(counter *int) int {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	return *counter
}
