package murmursdk

import (
	"context"
	"net/http"
	"net/url"
)

// GetCurrentUser fetches the profile for the given token subject. The
// profile, not the token, is authoritative for display and role checks.
func (c *Client) GetCurrentUser(ctx context.Context, subjectID string) (*User, error) {
	var user User
	path := "/users/me?keycloakId=" + url.QueryEscape(subjectID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}
