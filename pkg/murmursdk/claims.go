package murmursdk

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the client reads off an access token. Signature
// validation is the server's job; the client only identifies the subject and
// checks expiry.
type Claims struct {
	SubjectID string
	ExpiresAt time.Time
}

var (
	// ErrMalformedToken reports a token that is not three dot-separated
	// base64url segments with a JSON payload.
	ErrMalformedToken = errors.New("murmur: malformed access token")

	// ErrMissingSubject reports a token without a sub claim. Such a token is
	// invalid regardless of expiry.
	ErrMissingSubject = errors.New("murmur: access token has no subject")
)

// timeNow is swapped in tests.
var timeNow = time.Now

// DecodeClaims parses the token payload without verifying its signature.
func DecodeClaims(accessToken string) (Claims, error) {
	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &registered); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if registered.Subject == "" {
		return Claims{}, ErrMissingSubject
	}

	claims := Claims{SubjectID: registered.Subject}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}

// IsLive reports whether the token decodes and has not expired. Malformed,
// subject-less, and expired tokens are all equally "not live"; this never
// returns an error.
func IsLive(accessToken string) bool {
	claims, err := DecodeClaims(accessToken)
	if err != nil {
		return false
	}

	if claims.ExpiresAt.IsZero() {
		return false
	}
	return timeNow().Before(claims.ExpiresAt)
}
