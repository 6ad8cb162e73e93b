package auth

// User is the profile returned by GET /auth/me. It is fetched once per
// session establishment and cached by the session manager; other
// components request a refetch rather than mutating it.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"` // "manager", "member" or "admin"
}

// FullName returns the display name, falling back to the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// RegistrationData is the payload for POST /auth/register. Password2 is
// the confirmation field the backend validates against Password.
type RegistrationData struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// tokenResponse is the backend's token-issuing response shape, returned
// by login, OTP verification and refresh.
type tokenResponse struct {
	// AccessToken is the short-lived bearer credential.
	// Usage: "Authorization: Bearer <access_token>"
	AccessToken *string `json:"access_token,omitempty"`

	// RefreshToken is the longer-lived credential used solely to mint a
	// new access token. Rotates on each refresh.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in,omitempty"`

	// OtpRequired signals that the password was accepted but a second
	// factor is needed before any credentials are issued.
	OtpRequired bool `json:"otp_required,omitempty"`
}

// registerResponse is the 201 body of POST /auth/register: the created
// user plus a usable token pair, equivalent to a successful login.
type registerResponse struct {
	User         *User   `json:"user,omitempty"`
	AccessToken  *string `json:"access_token,omitempty"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	ExpiresIn    int     `json:"expires_in,omitempty"`
}

// apiError is the error body the backend attaches to 4xx responses.
type apiError struct {
	Error string `json:"error,omitempty"`
}

const (
	apiErrorInvalidOtp     = "invalid_otp"
	apiErrorOtpExpired     = "otp_expired"
	apiErrorRefreshInvalid = "refresh_invalid"
)
