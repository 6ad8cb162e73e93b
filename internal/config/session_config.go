package config

type Session struct{}

var _ SessionConfig = Session{}

// GetRequestTimeout returns the bound on every backend call, in seconds.
func (Session) GetRequestTimeout() string {
	return GetEnv("REQUEST_TIMEOUT", "15")
}

// GetClockSkew returns the expiry tolerance in seconds. Tokens are
// refreshed this long before their recorded expiry.
func (Session) GetClockSkew() string {
	return GetEnv("CLOCK_SKEW", "30")
}
