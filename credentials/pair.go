package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultClockSkew is the recommended expiry tolerance. A token is
// refreshed this long before its recorded expiry so that a request
// in flight when the clock ticks over does not lose the race.
const DefaultClockSkew = 30 * time.Second

// Pair is the access/refresh credential pair issued by the backend.
// A pair is either fully present or fully absent; partial pairs are
// never persisted.
type Pair struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

// Complete reports whether the pair is usable: both tokens present and
// an expiry resolvable for the access token.
func (p Pair) Complete() bool {
	if p.AccessToken == "" || p.RefreshToken == "" {
		return false
	}
	_, ok := p.expiry()
	return ok
}

// ExpiresWithin reports whether the access token is expired at now once
// the skew tolerance is applied. A token expiring exactly at now+skew is
// treated as expired. A pair whose expiry cannot be resolved is treated
// as expired.
func (p Pair) ExpiresWithin(skew time.Duration, now time.Time) bool {
	expiry, ok := p.expiry()
	if !ok {
		return true
	}
	return !expiry.After(now.Add(skew))
}

// expiry resolves the access token expiry. The recorded timestamp wins;
// when it is absent the JWT "exp" claim is read without verifying the
// signature, the same way the web frontend decodes the token locally.
// Verification is the backend's job - here the token is an opaque
// credential with a readable expiry hint.
func (p Pair) expiry() (time.Time, bool) {
	if !p.AccessExpiresAt.IsZero() {
		return p.AccessExpiresAt, true
	}
	if p.AccessToken == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(p.AccessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
