package auth

import "errors"

var (
	InvalidCredentialsErr = errors.New("invalid credentials")
	InvalidOtpErr         = errors.New("invalid one-time passcode")
	OtpExpiredErr         = errors.New("one-time passcode expired")
	RefreshInvalidErr     = errors.New("refresh token invalid")
	UnauthorizedErr       = errors.New("unauthorized")
	NetworkErr            = errors.New("network error")
)

// RegistrationError carries the per-field validation messages from a
// rejected registration request.
type RegistrationError struct {
	Fields map[string][]string
}

func (e *RegistrationError) Error() string {
	return "registration rejected"
}

// FieldMessages returns the messages for a single form field, or nil.
func (e *RegistrationError) FieldMessages(field string) []string {
	if e == nil || e.Fields == nil {
		return nil
	}
	return e.Fields[field]
}
