package murmursdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/murmurapp/murmur-go/pkg/tokenstore"
	"github.com/stretchr/testify/require"
)

func TestSessionLogin(t *testing.T) {
	t.Parallel()

	t.Run("success resolves the identity", func(t *testing.T) {
		t.Parallel()

		accessToken := mintToken(t, "u1", time.Now().Add(time.Hour))

		mux := http.NewServeMux()
		mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var req LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "someone@example.com", req.Email)

			_ = json.NewEncoder(w).Encode(TokenResponse{
				AccessToken:  accessToken,
				RefreshToken: "r1",
				ExpiresIn:    3600,
			})
		})
		mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "u1", r.URL.Query().Get("keycloakId"))
			_ = json.NewEncoder(w).Encode(User{ID: "u1", Alias: "SilentFox1234", Role: RoleUser})
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		client, store := newTestClient(t, server)
		session := NewSessionManager(client)

		err := session.Login(context.Background(), "someone@example.com", "hunter2hunter2")
		require.NoError(t, err)

		snap := session.Snapshot()
		require.Equal(t, StatusAuthenticated, snap.Status)
		require.NotNil(t, snap.User)
		require.Equal(t, "SilentFox1234", snap.User.Alias)

		pair, err := store.Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, accessToken, pair.AccessToken)
		require.Equal(t, "r1", pair.RefreshToken)
	})

	t.Run("invalid form never reaches the network", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer server.Close()

		client, _ := newTestClient(t, server)
		session := NewSessionManager(client)

		err := session.Login(context.Background(), "not-an-email", "pw")
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		require.EqualValues(t, 0, hits.Load())
		require.Equal(t, StatusUnresolved, session.Snapshot().Status)
	})

	t.Run("rejected credentials carry the server message", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
		}))
		defer server.Close()

		client, store := newTestClient(t, server)
		session := NewSessionManager(client)

		err := session.Login(context.Background(), "someone@example.com", "wrong-password")
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "Invalid email or password", authErr.Message)

		// Session and store are untouched by the failure.
		require.Equal(t, StatusUnresolved, session.Snapshot().Status)
		_, err = store.Load(context.Background())
		require.ErrorIs(t, err, tokenstore.ErrNoCredentials)
	})
}

func TestSessionRefreshIdentity(t *testing.T) {
	t.Parallel()

	t.Run("no credentials settles anonymous without network", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer server.Close()

		client, _ := newTestClient(t, server)
		session := NewSessionManager(client)

		session.RefreshIdentity(context.Background())
		require.Equal(t, StatusAnonymous, session.Snapshot().Status)
		require.EqualValues(t, 0, hits.Load())
	})

	t.Run("expired token settles anonymous without a profile fetch", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer server.Close()

		client, store := newTestClient(t, server)
		session := NewSessionManager(client)

		dead := mintToken(t, "u1", time.Now().Add(-100*time.Second))
		require.NoError(t, store.Save(context.Background(), tokenstore.Pair{
			AccessToken:  dead,
			RefreshToken: "r1",
		}))

		session.RefreshIdentity(context.Background())
		require.Equal(t, StatusAnonymous, session.Snapshot().Status)
		require.Nil(t, session.Snapshot().User)
		require.EqualValues(t, 0, hits.Load())
	})

	t.Run("profile fetch failure fails closed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client, store := newTestClient(t, server)
		session := NewSessionManager(client)

		live := mintToken(t, "u1", time.Now().Add(time.Hour))
		require.NoError(t, store.Save(context.Background(), tokenstore.Pair{
			AccessToken:  live,
			RefreshToken: "r1",
		}))

		session.RefreshIdentity(context.Background())
		require.Equal(t, StatusAnonymous, session.Snapshot().Status)
	})

	t.Run("live token resolves the profile", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(User{ID: "u1", Alias: "HiddenOwl9000", Role: RoleAdmin})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client, store := newTestClient(t, server)
		session := NewSessionManager(client)

		live := mintToken(t, "u1", time.Now().Add(time.Hour))
		require.NoError(t, store.Save(context.Background(), tokenstore.Pair{
			AccessToken:  live,
			RefreshToken: "r1",
		}))

		session.RefreshIdentity(context.Background())

		snap := session.Snapshot()
		require.Equal(t, StatusAuthenticated, snap.Status)
		require.Equal(t, RoleAdmin, snap.User.Role)
	})
}

func TestSessionSubscribers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)
	session := NewSessionManager(client)

	var seen []Status
	unsubscribe := session.Subscribe(func(snap Snapshot) {
		seen = append(seen, snap.Status)
	})

	session.RefreshIdentity(context.Background())
	require.Equal(t, []Status{StatusResolving, StatusAnonymous}, seen)

	unsubscribe()
	session.Logout()
	require.Equal(t, []Status{StatusResolving, StatusAnonymous}, seen)
}

func TestSessionLogout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client, store := newTestClient(t, server)
	session := NewSessionManager(client)

	require.NoError(t, store.Save(context.Background(), tokenstore.Pair{
		AccessToken:  mintToken(t, "u1", time.Now().Add(time.Hour)),
		RefreshToken: "r1",
	}))

	session.Logout()
	require.Equal(t, StatusAnonymous, session.Snapshot().Status)

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, tokenstore.ErrNoCredentials)

	// Repeated logout is harmless.
	session.Logout()
	require.Equal(t, StatusAnonymous, session.Snapshot().Status)
}

func TestSessionExpiresOnFailedRefresh(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(User{ID: "u1", Alias: "GhostWolf1111", Role: RoleUser})
	})
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, store := newTestClient(t, server)
	session := NewSessionManager(client)

	require.NoError(t, store.Save(context.Background(), tokenstore.Pair{
		AccessToken:  mintToken(t, "u1", time.Now().Add(time.Hour)),
		RefreshToken: "revoked",
	}))
	session.RefreshIdentity(context.Background())
	require.Equal(t, StatusAuthenticated, session.Snapshot().Status)

	var expiredNotified atomic.Bool
	session.Subscribe(func(snap Snapshot) {
		if snap.Status == StatusAnonymous {
			expiredNotified.Store(true)
		}
	})

	// The server now rejects the token and the refresh; the pipeline expires
	// the session on its own.
	_, err := client.ListPosts(context.Background(), PostQuery{})
	require.ErrorIs(t, err, ErrSessionExpired)

	require.Equal(t, StatusAnonymous, session.Snapshot().Status)
	require.True(t, expiredNotified.Load())

	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, tokenstore.ErrNoCredentials)
}

func TestSessionRegister(t *testing.T) {
	t.Parallel()

	t.Run("fills a generated alias", func(t *testing.T) {
		t.Parallel()

		var got RegisterRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/register", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client, store := newTestClient(t, server)
		session := NewSessionManager(client)

		err := session.Register(context.Background(), RegisterRequest{
			Email:    "someone@example.com",
			Password: "hunter2hunter2",
		})
		require.NoError(t, err)
		require.NotEmpty(t, got.Alias)
		require.Equal(t, RoleUser, got.Role)

		// Registration does not log the user in.
		require.Equal(t, StatusUnresolved, session.Snapshot().Status)
		_, err = store.Load(context.Background())
		require.ErrorIs(t, err, tokenstore.ErrNoCredentials)
	})

	t.Run("keeps a caller-chosen alias", func(t *testing.T) {
		t.Parallel()

		var got RegisterRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client, _ := newTestClient(t, server)
		session := NewSessionManager(client)

		err := session.Register(context.Background(), RegisterRequest{
			Email:    "someone@example.com",
			Password: "hunter2hunter2",
			Alias:    "PickyBadger42",
		})
		require.NoError(t, err)
		require.Equal(t, "PickyBadger42", got.Alias)
	})

	t.Run("duplicate alias surfaces the server message", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"Alias already taken"}`))
		}))
		defer server.Close()

		client, _ := newTestClient(t, server)
		session := NewSessionManager(client)

		err := session.Register(context.Background(), RegisterRequest{
			Email:    "someone@example.com",
			Password: "hunter2hunter2",
			Alias:    "TakenAlias99",
		})
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "Alias already taken", authErr.Message)
	})
}
