package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// refreshFlightKey is the single-flight key: there is only ever one
// credential pair, so all refresh triggers collapse onto one flight.
const refreshFlightKey = "refresh"

// API is the slice of the auth client the manager needs.
type API interface {
	Refresh(ctx context.Context, refreshToken string) (*credentials.Pair, error)
	Profile(ctx context.Context, accessToken string) (*auth.User, error)
	Logout(ctx context.Context, accessToken string) error
}

// Subscriber receives a snapshot on every state transition.
type Subscriber func(Snapshot)

// Manager is the single source of truth for session state. All
// credential-store writes go through it so that a persisted pair is
// always paired with the matching state transition, and concurrent
// refresh triggers share one network call.
type Manager struct {
	api     API
	store   credentials.Store
	skew    time.Duration
	nowTime func() time.Time
	log     zerolog.Logger

	lock   sync.RWMutex
	status Status
	user   *auth.User

	refreshGroup singleflight.Group

	subsLock sync.Mutex
	subs     []subscription
	nextSub  int
}

type subscription struct {
	id int
	fn Subscriber
}

type ManagerOption func(*Manager)

// WithClockSkew sets the tolerance subtracted from the recorded expiry
// when deciding whether the access token is still usable.
func WithClockSkew(skew time.Duration) ManagerOption {
	return func(m *Manager) {
		m.skew = skew
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager initializes a Manager with required dependencies.
func NewManager(api API, store credentials.Store, options ...ManagerOption) (*Manager, error) {
	if api == nil {
		return nil, errors.New("[NewManager] api is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}

	m := &Manager{
		api:     api,
		store:   store,
		skew:    credentials.DefaultClockSkew,
		nowTime: time.Now,
		log:     zerolog.Nop(),
		status:  StatusUninitialized,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Current returns the session snapshot. Reads never contend with each
// other; state is immutable between transitions.
func (m *Manager) Current() Snapshot {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return Snapshot{Status: m.status, User: m.user}
}

// Subscribe registers fn to be called on every state transition and
// returns the function that removes the subscription.
func (m *Manager) Subscribe(fn Subscriber) func() {
	m.subsLock.Lock()
	defer m.subsLock.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs = append(m.subs, subscription{id: id, fn: fn})

	return func() {
		m.subsLock.Lock()
		defer m.subsLock.Unlock()
		for i, sub := range m.subs {
			if sub.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// Initialize runs the startup probe once: an unexpired stored access
// token goes straight to the profile fetch, an expired one goes through
// a refresh first, and no usable credential settles the session as
// unauthenticated. Safe to call again after a transient failure.
func (m *Manager) Initialize(ctx context.Context) error {
	m.transition(StatusChecking, nil)

	pair, err := m.store.Get()
	if err != nil {
		m.log.Warn().Err(err).Msg("credential storage read failed, treating as signed out")
		pair = nil
	}
	if pair == nil {
		m.transition(StatusUnauthenticated, nil)
		return nil
	}

	if pair.ExpiresWithin(m.skew, m.nowTime()) {
		refreshed, err := m.refresh(ctx)
		if err != nil {
			if errors.Is(err, auth.RefreshInvalidErr) {
				m.teardownLocal()
				return err
			}
			// Transient failure: leave the stored pair alone so the
			// probe can be re-run, but settle as signed out for now.
			m.transition(StatusUnauthenticated, nil)
			return errors.Wrap(err, "[Initialize] refresh")
		}
		pair = refreshed
	}

	user, err := m.api.Profile(ctx, pair.AccessToken)
	if err != nil {
		if errors.Is(err, auth.UnauthorizedErr) {
			m.teardownLocal()
			return err
		}
		m.transition(StatusUnauthenticated, nil)
		return errors.Wrap(err, "[Initialize] profile fetch")
	}

	m.log.Info().Str("username", user.Username).Msg("session restored")
	m.transition(StatusAuthenticated, user)
	return nil
}

// Adopt is the single controlled path for applying a freshly issued
// credential pair (login, registration or OTP success). It persists the
// pair, fetches the profile, and transitions straight to authenticated.
func (m *Manager) Adopt(ctx context.Context, pair credentials.Pair) error {
	if !pair.Complete() {
		return errors.New("[Adopt] refusing to adopt a partial credential pair")
	}

	if err := m.store.Set(pair); err != nil {
		m.log.Warn().Err(err).Msg("persisting adopted credentials failed, session is memory-only")
	}

	user, err := m.api.Profile(ctx, pair.AccessToken)
	if err != nil {
		if errors.Is(err, auth.UnauthorizedErr) {
			m.teardownLocal()
			return err
		}
		// Freshly issued credentials are trusted; a transient profile
		// failure leaves them stored so the startup probe can finish
		// the job later.
		return errors.Wrap(err, "[Adopt] profile fetch")
	}

	m.log.Info().Str("username", user.Username).Msg("session established")
	m.transition(StatusAuthenticated, user)
	return nil
}

// AdoptUser is Adopt for registration responses that already include the
// profile, skipping the extra fetch.
func (m *Manager) AdoptUser(pair credentials.Pair, user *auth.User) error {
	if !pair.Complete() {
		return errors.New("[AdoptUser] refusing to adopt a partial credential pair")
	}
	if user == nil {
		return errors.New("[AdoptUser] user is required")
	}

	if err := m.store.Set(pair); err != nil {
		m.log.Warn().Err(err).Msg("persisting adopted credentials failed, session is memory-only")
	}
	m.transition(StatusAuthenticated, user)
	return nil
}

// EnsureAccessToken returns an access token that is valid for at least
// the skew window, refreshing through the single flight when needed.
func (m *Manager) EnsureAccessToken(ctx context.Context) (string, error) {
	pair, err := m.ensurePair(ctx)
	if err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}

// HandleUnauthorized is for API consumers whose request came back 401
// even though the token looked valid locally: it forces one refresh and
// returns the replacement token. A RefreshInvalid outcome ends the
// session.
func (m *Manager) HandleUnauthorized(ctx context.Context) (string, error) {
	pair, err := m.refresh(ctx)
	if err != nil {
		if errors.Is(err, auth.RefreshInvalidErr) {
			m.teardownLocal()
		}
		return "", err
	}
	return pair.AccessToken, nil
}

// Logout tears the session down. The server-side invalidation is best
// effort: the user's intent to end the session outranks backend
// bookkeeping, so failures are logged and swallowed. Idempotent.
func (m *Manager) Logout(ctx context.Context) {
	if pair, err := m.store.Get(); err == nil && pair != nil {
		if err := m.api.Logout(ctx, pair.AccessToken); err != nil {
			m.log.Debug().Err(err).Msg("server-side logout failed, clearing local session anyway")
		}
	}
	m.teardownLocal()
}

func (m *Manager) ensurePair(ctx context.Context) (*credentials.Pair, error) {
	pair, err := m.store.Get()
	if err != nil {
		return nil, errors.Wrap(err, "[ensurePair] store read")
	}
	if pair != nil && !pair.ExpiresWithin(m.skew, m.nowTime()) {
		return pair, nil
	}

	refreshed, err := m.refresh(ctx)
	if err != nil {
		if errors.Is(err, auth.RefreshInvalidErr) {
			m.teardownLocal()
		}
		return nil, err
	}
	return refreshed, nil
}

// refresh performs the single-flight token refresh: concurrent callers
// share the in-flight exchange and its outcome, and the flight is gone
// the moment it settles so a later expiry starts a fresh one. The
// exchange itself is never cancelled mid-flight - aborting it could
// leave the backend's token rotation ahead of the stored pair.
func (m *Manager) refresh(ctx context.Context) (*credentials.Pair, error) {
	result, err, _ := m.refreshGroup.Do(refreshFlightKey, func() (any, error) {
		pair, err := m.store.Get()
		if err != nil {
			return nil, errors.Wrap(err, "[refresh] store read")
		}
		if pair == nil || pair.RefreshToken == "" {
			return nil, errors.Wrap(auth.RefreshInvalidErr, "[refresh] no refresh token")
		}

		next, err := m.api.Refresh(context.WithoutCancel(ctx), pair.RefreshToken)
		if err != nil {
			return nil, err
		}
		if err := m.store.Set(*next); err != nil {
			m.log.Warn().Err(err).Msg("persisting refreshed credentials failed")
		}
		m.log.Debug().Time("expires_at", next.AccessExpiresAt).Msg("access token refreshed")
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*credentials.Pair), nil
}

// teardownLocal clears the store and settles the state machine, in that
// order, so no observer can see an authenticated state with an empty
// store.
func (m *Manager) teardownLocal() {
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("clearing credential store failed")
	}
	m.transition(StatusUnauthenticated, nil)
}

func (m *Manager) transition(status Status, user *auth.User) {
	m.lock.Lock()
	m.status = status
	m.user = user
	snapshot := Snapshot{Status: status, User: user}
	m.lock.Unlock()

	m.subsLock.Lock()
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.subsLock.Unlock()

	for _, sub := range subs {
		sub.fn(snapshot)
	}
}
