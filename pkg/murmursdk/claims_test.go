package murmursdk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeClaims(t *testing.T) {
	t.Parallel()

	t.Run("extracts subject and expiry", func(t *testing.T) {
		t.Parallel()

		expiry := time.Now().Add(time.Hour).Truncate(time.Second)
		token := mintToken(t, "user-123", expiry)

		claims, err := DecodeClaims(token)
		require.NoError(t, err)
		require.Equal(t, "user-123", claims.SubjectID)
		require.True(t, claims.ExpiresAt.Equal(expiry))
	})

	t.Run("missing expiry leaves zero time", func(t *testing.T) {
		t.Parallel()

		claims, err := DecodeClaims(mintTokenNoExpiry(t, "user-123"))
		require.NoError(t, err)
		require.Equal(t, "user-123", claims.SubjectID)
		require.True(t, claims.ExpiresAt.IsZero())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()

		_, err := DecodeClaims("not-a-token")
		require.ErrorIs(t, err, ErrMalformedToken)

		_, err = DecodeClaims("")
		require.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("rejects token without subject", func(t *testing.T) {
		t.Parallel()

		token := mintToken(t, "", time.Now().Add(time.Hour))
		_, err := DecodeClaims(token)
		require.ErrorIs(t, err, ErrMissingSubject)
	})
}

func TestIsLive(t *testing.T) {
	t.Run("live token", func(t *testing.T) {
		token := mintToken(t, "user-123", time.Now().Add(time.Hour))
		require.True(t, IsLive(token))
	})

	t.Run("expired token", func(t *testing.T) {
		token := mintToken(t, "user-123", time.Now().Add(-100*time.Second))
		require.False(t, IsLive(token))
	})

	t.Run("no expiry claim is not live", func(t *testing.T) {
		require.False(t, IsLive(mintTokenNoExpiry(t, "user-123")))
	})

	t.Run("malformed token is not live", func(t *testing.T) {
		require.False(t, IsLive("garbage"))
		require.False(t, IsLive(""))
	})

	t.Run("expiry boundary", func(t *testing.T) {
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		timeNow = func() time.Time { return fixed }
		defer func() { timeNow = time.Now }()

		require.False(t, IsLive(mintToken(t, "user-123", fixed)))
		require.True(t, IsLive(mintToken(t, "user-123", fixed.Add(time.Second))))
	})
}
