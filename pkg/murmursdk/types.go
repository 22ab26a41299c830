package murmursdk

// Role is the server-assigned authorization role on a user profile.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the profile fetched from the server for the authenticated subject.
// It is never reconstructed client-side from token claims alone; the token
// only identifies the subject, the server owns the profile and the role.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Alias     string `json:"alias"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"userRole"`
}

// TokenResponse is returned by POST /auth/login and POST /auth/refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// ExpiresIn is the access token lifetime in seconds
	ExpiresIn int `json:"expires_in"`
}

// Post is a single feed entry. Timestamps are kept as the server's RFC3339
// strings; the client renders them, it never does arithmetic on them.
type Post struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	Text      string   `json:"text"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Tag       string   `json:"tag,omitempty"`
	Images    []string `json:"images,omitempty"`
	CreatedAt string   `json:"createdAt"`
	ExpiresAt string   `json:"expiresAt"`

	Upvotes      int `json:"upvotes"`
	Downvotes    int `json:"downvotes"`
	CommentCount int `json:"commentCount"`

	// CurrentUserVote is the caller's standing vote on this post:
	// +1, -1, or nil when no vote exists.
	CurrentUserVote *int `json:"currentUserVote,omitempty"`
}

// PostCreateRequest is the JSON part of the multipart POST /posts request.
type PostCreateRequest struct {
	UserID    string   `json:"userId"`
	Text      string   `json:"text"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	ExpiresAt string   `json:"expiresAt,omitempty"`
}

// Comment is a single comment on a post.
type Comment struct {
	ID        string `json:"id"`
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// CommentCreateRequest is the body of POST /comments.
type CommentCreateRequest struct {
	PostID string `json:"postId"`
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// Vote directions. The server stores at most one vote per user and post.
const (
	VoteUp   = 1
	VoteDown = -1
)

// VoteRequest is the body of POST /votes. Posting a vote replaces any
// standing vote by the same user on the same post.
type VoteRequest struct {
	PostID   string `json:"postId"`
	UserID   string `json:"userId"`
	VoteType int    `json:"voteType"`
}

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportReviewed ReportStatus = "REVIEWED"
)

// Report is a moderation report on a post.
type Report struct {
	ID        string       `json:"id"`
	PostID    string       `json:"postId"`
	UserID    string       `json:"userId"`
	Reason    string       `json:"reason"`
	CreatedAt string       `json:"createdAt"`
	Status    ReportStatus `json:"status"`
}

// ReportCreateRequest is the body of POST /reports.
type ReportCreateRequest struct {
	PostID string `json:"postId"`
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}
