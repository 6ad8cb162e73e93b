package credentials_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/stretchr/testify/require"
)

func TestExpiresWithin(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	skew := 30 * time.Second

	tests := []struct {
		name      string
		expiresAt time.Time
		expired   bool
	}{
		{name: "comfortably valid", expiresAt: now.Add(10 * time.Minute), expired: false},
		{name: "just outside the skew window", expiresAt: now.Add(skew + time.Second), expired: false},
		{name: "exactly at the skew boundary", expiresAt: now.Add(skew), expired: true},
		{name: "inside the skew window", expiresAt: now.Add(10 * time.Second), expired: true},
		{name: "already expired", expiresAt: now.Add(-time.Minute), expired: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pair := credentials.Pair{
				AccessToken:     "access",
				RefreshToken:    "refresh",
				AccessExpiresAt: tc.expiresAt,
			}
			require.Equal(t, tc.expired, pair.ExpiresWithin(skew, now))
		})
	}
}

func TestExpiryFallsBackToJWTClaim(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	pair := credentials.Pair{AccessToken: signed, RefreshToken: "refresh"}
	require.True(t, pair.Complete())
	require.False(t, pair.ExpiresWithin(30*time.Second, now))
	require.True(t, pair.ExpiresWithin(30*time.Second, now.Add(time.Hour)))
}

func TestUnresolvableExpiryIsExpired(t *testing.T) {
	pair := credentials.Pair{AccessToken: "not-a-jwt", RefreshToken: "refresh"}
	require.False(t, pair.Complete())
	require.True(t, pair.ExpiresWithin(30*time.Second, time.Now()))
}

func TestCompleteRejectsPartialPairs(t *testing.T) {
	require.False(t, credentials.Pair{AccessToken: "access"}.Complete())
	require.False(t, credentials.Pair{RefreshToken: "refresh"}.Complete())
	require.True(t, credentials.Pair{
		AccessToken:     "access",
		RefreshToken:    "refresh",
		AccessExpiresAt: time.Now().Add(time.Hour),
	}.Complete())
}
