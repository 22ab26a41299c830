package murmursdk

import (
	"context"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

func (r ReportCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostID, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Reason, validation.Required, validation.Length(3, 500)),
	)
}

// CreateReport files a moderation report against a post. Reports are
// create-only for regular users.
func (c *Client) CreateReport(ctx context.Context, req ReportCreateRequest) error {
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}
	return c.doVoid(ctx, http.MethodPost, "/reports", req)
}

// ListReports returns one page of open reports. Admin only; the server
// rejects other roles.
func (c *Client) ListReports(ctx context.Context, pageIndex, size int) (Page[Report], error) {
	var page Page[Report]
	path := fmt.Sprintf("/reports?page=%d&size=%d", pageIndex, size)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page, http.StatusOK); err != nil {
		return Page[Report]{}, err
	}
	return page, nil
}
