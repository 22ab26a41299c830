package murmursdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
)

// ListComments returns one page of comments for a post.
func (c *Client) ListComments(ctx context.Context, postID string, pageIndex, size int) (Page[Comment], error) {
	var page Page[Comment]
	path := fmt.Sprintf("/comments/post/%s?page=%d&size=%d", url.PathEscape(postID), pageIndex, size)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page, http.StatusOK); err != nil {
		return Page[Comment]{}, err
	}
	return page, nil
}

func (r CommentCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostID, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Text, validation.Required, validation.Length(1, 300)),
	)
}

// CreateComment posts a comment and returns the created resource.
func (c *Client) CreateComment(ctx context.Context, req CommentCreateRequest) (*Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, wrapValidation(err)
	}

	var comment Comment
	if err := c.doJSON(ctx, http.MethodPost, "/comments", req, &comment, http.StatusOK); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes the caller's own comment.
func (c *Client) DeleteComment(ctx context.Context, id, userID string) error {
	path := "/comments/" + url.PathEscape(id) + "?userId=" + url.QueryEscape(userID)
	return c.doVoid(ctx, http.MethodDelete, path, nil)
}
