package murmursdk

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/murmurapp/murmur-go/pkg/tokenstore"
	"github.com/stretchr/testify/require"
)

// mintToken builds a signed JWT for the given subject and expiry. The client
// never verifies signatures, so the signing key is irrelevant.
func mintToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return token
}

// mintTokenNoExpiry builds a signed JWT that carries a subject but no exp
// claim.
func mintTokenNoExpiry(t *testing.T, subject string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{Subject: subject}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return token
}

// newTestClient builds a client against a test server with an in-memory
// store and a discarding logger.
func newTestClient(t *testing.T, server *httptest.Server) (*Client, tokenstore.Store) {
	t.Helper()

	store := tokenstore.NewMemory()
	client := New(Config{
		BaseURL: server.URL,
		Store:   store,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return client, store
}
