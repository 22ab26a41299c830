package murmursdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// PostQuery narrows a feed listing. Zero values mean "no filter"; a radius
// filter requires both coordinates.
type PostQuery struct {
	Page int
	Size int

	Search    string
	Radius    int // km
	Latitude  *float64
	Longitude *float64
	Tags      []string
}

func (q PostQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Radius > 0 && q.Latitude != nil && q.Longitude != nil {
		v.Set("radius", strconv.Itoa(q.Radius))
		v.Set("latitude", strconv.FormatFloat(*q.Latitude, 'f', -1, 64))
		v.Set("longitude", strconv.FormatFloat(*q.Longitude, 'f', -1, 64))
	}
	if len(q.Tags) > 0 {
		v.Set("tags", strings.Join(q.Tags, ","))
	}
	return v
}

// ListPosts returns one page of the public feed.
func (c *Client) ListPosts(ctx context.Context, query PostQuery) (Page[Post], error) {
	var page Page[Post]
	path := "/posts?" + query.values().Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page, http.StatusOK); err != nil {
		return Page[Post]{}, err
	}
	return page, nil
}

// ListMyPosts returns one page of the caller's own posts.
func (c *Client) ListMyPosts(ctx context.Context, pageIndex, size int) (Page[Post], error) {
	var page Page[Post]
	path := fmt.Sprintf("/posts/user/?page=%d&size=%d", pageIndex, size)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page, http.StatusOK); err != nil {
		return Page[Post]{}, err
	}
	return page, nil
}

// GetPost fetches a single post. A 404 or 410 yields ErrNotFound: the post
// never existed or has expired.
func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	var post Post
	path := "/posts/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &post, http.StatusOK); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r PostCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Text, validation.Required, validation.Length(1, 500)),
	)
}

// ImageUpload is one attachment for CreatePost.
type ImageUpload struct {
	Name    string
	Content io.Reader
}

// CreatePost creates a post via the multipart endpoint: a JSON part named
// "post" plus zero or more "images" file parts.
func (c *Client) CreatePost(ctx context.Context, req PostCreateRequest, images []ImageUpload) (*Post, error) {
	if err := req.Validate(); err != nil {
		return nil, wrapValidation(err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="post"`)
	partHeader.Set("Content-Type", "application/json")
	jsonPart, err := writer.CreatePart(partHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create post part: %w", err)
	}
	if err := json.NewEncoder(jsonPart).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to encode post part: %w", err)
	}

	for _, img := range images {
		filePart, err := writer.CreateFormFile("images", img.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(filePart, img.Content); err != nil {
			return nil, fmt.Errorf("failed to write image %q: %w", img.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/posts"), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		c.log.Error("request failed", "method", http.MethodPost, "path", "/posts", "err", err)
		return nil, err
	}

	var post Post
	if err := decodeJSON(resp, &post, http.StatusOK); err != nil {
		c.log.Error("request failed", "method", http.MethodPost, "path", "/posts", "err", err)
		return nil, err
	}

	return &post, nil
}

// DeletePost removes the caller's own post. The server enforces
// author-or-nothing via the userId parameter.
func (c *Client) DeletePost(ctx context.Context, id, userID string) error {
	path := "/posts/" + url.PathEscape(id) + "?userId=" + url.QueryEscape(userID)
	return c.doVoid(ctx, http.MethodDelete, path, nil)
}
