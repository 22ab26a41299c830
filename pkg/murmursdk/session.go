package murmursdk

import (
	"context"
	"errors"
	"sync"

	"github.com/murmurapp/murmur-go/pkg/tokenstore"
)

// Status is the resolution state of the session.
type Status int

const (
	// StatusUnresolved is the state at process start, before the store has
	// been consulted.
	StatusUnresolved Status = iota

	// StatusResolving means the store is being checked and the profile
	// fetched. Views should render a neutral loading state.
	StatusResolving

	// StatusAuthenticated means a live token resolved to a user profile.
	StatusAuthenticated

	// StatusAnonymous means no usable credentials exist.
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusUnresolved:
		return "unresolved"
	case StatusResolving:
		return "resolving"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session handed to subscribers.
// User is non-nil only when Status is StatusAuthenticated.
type Snapshot struct {
	Status Status
	User   *User
}

// SessionManager holds the resolved user identity and is the single source
// of truth for every view. It is constructed once at process start and
// passed by reference to all consumers; there is no ambient global.
//
// Transitions: Unresolved -> Resolving -> Authenticated | Anonymous;
// Authenticated -> Anonymous on logout or a failed identity refresh;
// Anonymous -> Resolving on login success. Nothing else.
type SessionManager struct {
	client *Client
	store  tokenstore.Store

	mu      sync.Mutex
	status  Status
	user    *User
	gen     uint64
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewSessionManager creates a manager bound to the client's pipeline: a
// failed token refresh inside the pipeline expires the session and notifies
// every subscriber.
func NewSessionManager(client *Client) *SessionManager {
	m := &SessionManager{
		client: client,
		store:  client.store,
		status: StatusUnresolved,
		subs:   make(map[int]func(Snapshot)),
	}

	client.transport.onSessionExpired = m.expire
	return m
}

// Snapshot returns the current session state.
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Status: m.status, User: m.user}
}

// Subscribe registers a listener invoked on every session change. The
// returned function removes the listener.
func (m *SessionManager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// setState updates the session and notifies subscribers outside the lock.
func (m *SessionManager) setState(status Status, user *User) {
	m.mu.Lock()
	m.status = status
	m.user = user
	snap := Snapshot{Status: status, User: user}
	listeners := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// Login exchanges credentials for a token pair, persists it, and resolves
// the identity. On failure the session stays as it was and the returned
// *AuthError carries the server's message verbatim.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	req := LoginRequest{Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}

	tokens, err := m.client.login(ctx, req)
	if err != nil {
		return err
	}

	pair := tokenstore.Pair{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}
	if err := m.store.Save(ctx, pair); err != nil {
		return err
	}

	m.RefreshIdentity(ctx)
	return nil
}

// Register creates an account. It does not log the new user in. An empty
// Alias is filled with a generated one before validation.
func (m *SessionManager) Register(ctx context.Context, req RegisterRequest) error {
	if req.Alias == "" {
		req.Alias = GenerateAlias()
	}
	if req.Role == "" {
		req.Role = RoleUser
	}

	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}

	return m.client.register(ctx, req)
}

// RefreshIdentity re-resolves the session from the token store: no token or
// a dead token settles Anonymous without touching the network; a live token
// resolves the subject's profile. A profile fetch failure fails closed to
// Anonymous. Safe to call while already resolving; the newest call wins.
func (m *SessionManager) RefreshIdentity(ctx context.Context) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.status = StatusResolving
	snap := Snapshot{Status: StatusResolving, User: m.user}
	listeners := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}

	pair, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, tokenstore.ErrNoCredentials) {
			m.client.log.Error("failed to read credentials", "err", err)
		}
		m.settle(gen, StatusAnonymous, nil)
		return
	}

	if !IsLive(pair.AccessToken) {
		m.settle(gen, StatusAnonymous, nil)
		return
	}

	claims, err := DecodeClaims(pair.AccessToken)
	if err != nil {
		m.settle(gen, StatusAnonymous, nil)
		return
	}

	user, err := m.client.GetCurrentUser(ctx, claims.SubjectID)
	if err != nil {
		m.client.log.Warn("profile fetch failed, treating session as anonymous", "err", err)
		m.settle(gen, StatusAnonymous, nil)
		return
	}

	m.settle(gen, StatusAuthenticated, user)
}

// settle applies the outcome of an identity resolution unless a newer
// resolution has started since.
func (m *SessionManager) settle(gen uint64, status Status, user *User) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.status = status
	m.user = user
	snap := Snapshot{Status: status, User: user}
	listeners := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// Logout clears the stored pair and settles Anonymous immediately. No
// network call is made; calling it repeatedly is harmless.
func (m *SessionManager) Logout() {
	if err := m.store.Clear(context.Background()); err != nil {
		m.client.log.Error("failed to clear credentials", "err", err)
	}

	m.mu.Lock()
	m.gen++ // supersede any in-flight resolution
	m.mu.Unlock()

	m.setState(StatusAnonymous, nil)
}

// expire is the pipeline's session-expired hook: the store is already
// cleared by the transport, so only the in-memory state and subscribers
// need updating.
func (m *SessionManager) expire() {
	m.mu.Lock()
	m.gen++
	m.mu.Unlock()

	m.setState(StatusAnonymous, nil)
}
