package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/audit"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	defaultRequestTimeout = 15 * time.Second

	routeLogin          = "/auth/login"
	routeOtpRequest     = "/auth/otp/request"
	routeOtpVerify      = "/auth/otp/verify"
	routeRefresh        = "/auth/refresh"
	routeMe             = "/auth/me"
	routeRegister       = "/auth/register"
	routeLogout         = "/auth/logout"
	routeSecurityEvents = "/auth/security-events"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Client performs the network operations against the token-issuing
// backend. It is stateless: results are returned for the session
// manager and login flow to apply, and it never writes to the
// credential store itself.
type Client struct {
	baseURL    string
	httpClient *http.Client
	nowTime    func() time.Time
	log        zerolog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for
// testing or custom transports).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every backend call. Calls exceeding it fail as
// network errors, which are retryable and never terminate a session.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// New initializes a Client for the backend at baseURL.
func New(baseURL string, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[auth.New] baseURL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		nowTime:    time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// LoginResult is the outcome of a password submission: either a usable
// credential pair, or a signal that an OTP challenge must be completed
// first (in which case no credentials exist yet).
type LoginResult struct {
	Pair        *credentials.Pair
	OtpRequired bool
}

// RegisterResult carries the created account's profile and its freshly
// issued credential pair.
type RegisterResult struct {
	User *User
	Pair *credentials.Pair
}

// Login submits username/password. A 401 maps to InvalidCredentialsErr.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}

	status, body, err := c.call(ctx, http.MethodPost, routeLogin, "", payload)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var tr tokenResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return nil, errors.Wrap(err, "[Login] decoding response")
		}
		if tr.OtpRequired {
			return &LoginResult{OtpRequired: true}, nil
		}
		pair, err := c.pairFromTokens(tr.AccessToken, tr.RefreshToken, tr.ExpiresIn)
		if err != nil {
			return nil, errors.Wrap(err, "[Login]")
		}
		return &LoginResult{Pair: pair}, nil
	case http.StatusUnauthorized:
		return nil, InvalidCredentialsErr
	default:
		return nil, unexpectedStatusErr("Login", status)
	}
}

// RequestOtp triggers out-of-band OTP delivery. The backend re-checks
// the password first, so rejected credentials surface here too.
func (c *Client) RequestOtp(ctx context.Context, username, password string) error {
	payload := map[string]string{"username": username, "password": password}

	status, _, err := c.call(ctx, http.MethodPost, routeOtpRequest, "", payload)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return InvalidCredentialsErr
	default:
		return unexpectedStatusErr("RequestOtp", status)
	}
}

// VerifyOtp exchanges a delivered passcode for a credential pair.
// InvalidOtpErr is retryable within the same login flow; OtpExpiredErr
// requires restarting from credentials.
func (c *Client) VerifyOtp(ctx context.Context, username, code string) (*credentials.Pair, error) {
	payload := map[string]string{"username": username, "code": code}

	status, body, err := c.call(ctx, http.MethodPost, routeOtpVerify, "", payload)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		return c.decodePair("VerifyOtp", body)
	case http.StatusBadRequest, http.StatusUnauthorized:
		switch decodeAPIError(body) {
		case apiErrorOtpExpired:
			return nil, OtpExpiredErr
		default:
			return nil, InvalidOtpErr
		}
	default:
		return nil, unexpectedStatusErr("VerifyOtp", status)
	}
}

// Refresh exchanges a refresh token for a new pair. RefreshInvalidErr
// means the token was revoked or expired and the session must end;
// NetworkErr is transient and must not end the session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*credentials.Pair, error) {
	payload := map[string]string{"refresh_token": refreshToken}

	status, body, err := c.call(ctx, http.MethodPost, routeRefresh, "", payload)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		return c.decodePair("Refresh", body)
	case http.StatusUnauthorized, http.StatusBadRequest:
		return nil, RefreshInvalidErr
	default:
		return nil, unexpectedStatusErr("Refresh", status)
	}
}

// Profile fetches the authenticated user. UnauthorizedErr means the
// backend rejected a token that looked locally valid (revocation or
// clock skew).
func (c *Client) Profile(ctx context.Context, accessToken string) (*User, error) {
	status, body, err := c.call(ctx, http.MethodGet, routeMe, accessToken, nil)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var user User
		if err := json.Unmarshal(body, &user); err != nil {
			return nil, errors.Wrap(err, "[Profile] decoding response")
		}
		return &user, nil
	case http.StatusUnauthorized:
		return nil, UnauthorizedErr
	default:
		return nil, unexpectedStatusErr("Profile", status)
	}
}

// Register creates an account. Success is equivalent to a login: the
// returned pair is immediately usable. A 400 carries per-field messages
// as a *RegistrationError.
func (c *Client) Register(ctx context.Context, data RegistrationData) (*RegisterResult, error) {
	status, body, err := c.call(ctx, http.MethodPost, routeRegister, "", data)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusCreated, http.StatusOK:
		var rr registerResponse
		if err := json.Unmarshal(body, &rr); err != nil {
			return nil, errors.Wrap(err, "[Register] decoding response")
		}
		pair, err := c.pairFromTokens(rr.AccessToken, rr.RefreshToken, rr.ExpiresIn)
		if err != nil {
			return nil, errors.Wrap(err, "[Register]")
		}
		return &RegisterResult{User: rr.User, Pair: pair}, nil
	case http.StatusBadRequest:
		fields := map[string][]string{}
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, &RegistrationError{}
		}
		return nil, &RegistrationError{Fields: fields}
	default:
		return nil, unexpectedStatusErr("Register", status)
	}
}

// Logout asks the backend to invalidate the session. Best effort only:
// callers tear the local session down regardless of the outcome.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	status, _, err := c.call(ctx, http.MethodPost, routeLogout, accessToken, nil)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return unexpectedStatusErr("Logout", status)
	}
	return nil
}

// SecurityEvents fetches the read-only authentication audit trail.
func (c *Client) SecurityEvents(ctx context.Context, accessToken string) ([]audit.Event, error) {
	status, body, err := c.call(ctx, http.MethodGet, routeSecurityEvents, accessToken, nil)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var events []audit.Event
		if err := json.Unmarshal(body, &events); err != nil {
			return nil, errors.Wrap(err, "[SecurityEvents] decoding response")
		}
		return events, nil
	case http.StatusUnauthorized:
		return nil, UnauthorizedErr
	default:
		return nil, unexpectedStatusErr("SecurityEvents", status)
	}
}

// call performs one backend request. Transport failures, timeouts and
// 5xx responses surface as NetworkErr; everything else is returned as
// the raw status and body for the operation to interpret.
func (c *Client) call(ctx context.Context, method, path, accessToken string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, errors.Wrapf(err, "[call] marshalling %s request", path)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "[call] building %s request", path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("path", path).Msg("backend request failed")
		return 0, nil, errors.Wrapf(NetworkErr, "%s %s: %s", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, errors.Wrapf(NetworkErr, "%s %s: reading body: %s", method, path, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.StatusCode, body, errors.Wrapf(NetworkErr, "%s %s: status %d", method, path, resp.StatusCode)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) decodePair(op string, body []byte) (*credentials.Pair, error) {
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, errors.Wrapf(err, "[%s] decoding response", op)
	}
	pair, err := c.pairFromTokens(tr.AccessToken, tr.RefreshToken, tr.ExpiresIn)
	if err != nil {
		return nil, errors.Wrapf(err, "[%s]", op)
	}
	return pair, nil
}

// pairFromTokens assembles a credential pair, stamping the expiry from
// the expires_in hint. Incomplete responses are rejected so that a
// partial pair can never reach the store.
func (c *Client) pairFromTokens(access, refresh *string, expiresIn int) (*credentials.Pair, error) {
	accessToken := utils.Value(access)
	refreshToken := utils.Value(refresh)
	if accessToken == "" || refreshToken == "" {
		return nil, errors.New("incomplete token response")
	}

	var expiresAt time.Time
	if expiresIn > 0 {
		expiresAt = c.nowTime().Add(time.Duration(expiresIn) * time.Second)
	}
	return &credentials.Pair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: expiresAt,
	}, nil
}

func decodeAPIError(body []byte) string {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err != nil {
		return ""
	}
	return ae.Error
}

func unexpectedStatusErr(op string, status int) error {
	return errors.Errorf("[%s] unexpected status %d", op, status)
}
