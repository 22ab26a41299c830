package murmursdk

// Access is the protection level of a view.
type Access int

const (
	// AccessPublic views admit everyone, even before the session resolves.
	AccessPublic Access = iota

	// AccessProtected views require an authenticated session.
	AccessProtected

	// AccessAdminOnly views additionally require the ADMIN role.
	AccessAdminOnly
)

// Verdict is the guard's decision kind.
type Verdict int

const (
	// VerdictAdmit lets the navigation proceed.
	VerdictAdmit Verdict = iota

	// VerdictWait means the session is still resolving; render a neutral
	// loading state and decide again on the next session change.
	VerdictWait

	// VerdictRedirect denies the navigation and names the target view.
	VerdictRedirect
)

// Decision is the outcome of guarding a navigation. On a redirect to the
// login view, From preserves the originally requested path so the user can
// be returned there after logging in.
type Decision struct {
	Verdict Verdict
	Path    string
	From    string
}

// Routes the guard redirects to.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Decide evaluates a navigation to requested against the session snapshot.
// Rules in order: public always admits; an unresolved session waits; an
// anonymous session is sent to login with the origin preserved; admin-only
// views bounce non-admins home; everything else admits.
func Decide(access Access, snap Snapshot, requested string) Decision {
	if access == AccessPublic {
		return Decision{Verdict: VerdictAdmit}
	}

	switch snap.Status {
	case StatusUnresolved, StatusResolving:
		return Decision{Verdict: VerdictWait}
	case StatusAnonymous:
		return Decision{Verdict: VerdictRedirect, Path: LoginPath, From: requested}
	}

	if access == AccessAdminOnly && (snap.User == nil || snap.User.Role != RoleAdmin) {
		return Decision{Verdict: VerdictRedirect, Path: HomePath}
	}

	return Decision{Verdict: VerdictAdmit}
}
