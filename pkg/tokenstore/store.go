// Package tokenstore persists the bearer credential pair for the Murmur API
// client. Storage is purely mechanical: no expiry interpretation happens here,
// and the access/refresh tokens are always written and cleared together.
package tokenstore

import (
	"context"
	"errors"
)

// Pair is the credential pair returned by the login and refresh endpoints.
type Pair struct {
	AccessToken  string
	RefreshToken string

	// ExpiresIn is the access token lifetime in seconds as reported by the
	// server at issue time. Stored for inspection only; liveness decisions
	// are made from the token's own exp claim.
	ExpiresIn int
}

// ErrNoCredentials reports that no pair is currently stored.
var ErrNoCredentials = errors.New("tokenstore: no credentials stored")

// Store persists a single credential pair across process restarts.
//
// Implementations must replace the whole pair on Save and remove the whole
// pair on Clear so a reader can never observe a partial pair. Stores are safe
// for concurrent use; concurrent Saves are idempotent replacements, so the
// last writer wins.
type Store interface {
	Save(ctx context.Context, pair Pair) error

	// Load returns the stored pair or ErrNoCredentials when absent.
	Load(ctx context.Context) (Pair, error)

	// Clear removes the stored pair. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
