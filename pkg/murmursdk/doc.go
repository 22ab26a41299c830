/*
Package murmursdk is the client SDK for the Murmur API, the backend of the
anonymous location-aware posting app.

# Overview

The package is organized around three cooperating pieces:

  - Client: typed resource calls (posts, comments, votes, reports, users)
    routed through the authenticated request pipeline
  - Transport: the pipeline itself, an http.RoundTripper that attaches
    bearer tokens and recovers from access-token expiry
  - SessionManager: the session state machine and the single source of
    truth for "who is logged in"

Create a Client around a durable token store, then a SessionManager bound
to it:

	store, err := tokenstore.OpenSQLite("murmur.db")
	client := murmursdk.New(murmursdk.Config{
		BaseURL: "https://api.murmur.example",
		Store:   store,
	})
	session := murmursdk.NewSessionManager(client)

	if err := session.Login(ctx, email, password); err != nil {
		// *AuthError carries the server's message for inline display
	}

	feed, err := client.ListPosts(ctx, murmursdk.PostQuery{Size: 10})

# Token refresh

Every protected call reads the store and attaches the access token as a
bearer credential. When the server answers 401, the pipeline posts the
stored refresh token to /auth/refresh, overwrites the stored pair, and
re-sends the original request exactly once; the retry's outcome is final.
A failed exchange clears the store, settles the session Anonymous, and
propagates the original 401 so the view layer can redirect to login.

# Session lifecycle

The session starts Unresolved, moves to Resolving while the store is
checked and the profile fetched, and settles Authenticated or Anonymous.
Any number of views can observe changes:

	unsubscribe := session.Subscribe(func(snap murmursdk.Snapshot) {
		// re-render header, re-evaluate guards, ...
	})
	defer unsubscribe()

Navigation is gated with Decide, which waits while resolving, redirects
anonymous users to /login (preserving the origin), and bounces non-admins
off admin views.

# Errors

Client-side form constraints fail with *ValidationError before any network
traffic. Login and registration failures are *AuthError with the server's
message verbatim. ErrNotFound marks posts that never existed or have
expired, and ErrSessionExpired marks a 401 that survived a refresh
attempt. Transport-level failures are detected with IsNetworkError. The
resource clients log and return errors, never swallow them; views decide
between inline messages, retry affordances, and redirects.
*/
package murmursdk
