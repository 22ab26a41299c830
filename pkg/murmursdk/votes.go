package murmursdk

import (
	"context"
	"net/http"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
)

func (r VoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostID, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.VoteType, validation.Required, validation.In(VoteUp, VoteDown)),
	)
}

// CastVote creates or replaces the user's vote on a post.
func (c *Client) CastVote(ctx context.Context, req VoteRequest) error {
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}
	return c.doVoid(ctx, http.MethodPost, "/votes", req)
}

// RemoveVote deletes the user's standing vote on a post.
func (c *Client) RemoveVote(ctx context.Context, postID, userID string) error {
	path := "/votes/" + url.PathEscape(postID) + "?userId=" + url.QueryEscape(userID)
	return c.doVoid(ctx, http.MethodDelete, path, nil)
}

// ToggleVote applies the feed's voting gesture: voting the same direction as
// the standing vote removes it, anything else casts or replaces. It returns
// the resulting vote, nil when the vote was removed.
func (c *Client) ToggleVote(ctx context.Context, postID, userID string, current *int, voteType int) (*int, error) {
	if current != nil && *current == voteType {
		if err := c.RemoveVote(ctx, postID, userID); err != nil {
			return current, err
		}
		return nil, nil
	}

	req := VoteRequest{PostID: postID, UserID: userID, VoteType: voteType}
	if err := c.CastVote(ctx, req); err != nil {
		return current, err
	}
	return &voteType, nil
}
