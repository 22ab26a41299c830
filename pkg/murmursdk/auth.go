package murmursdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Fallback messages used when the server provides none.
const (
	loginFailedFallback    = "Login failed. Please check your credentials and try again."
	registerFailedFallback = "Registration failed. Please try again."
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Alias    string `json:"alias"`
	Role     Role   `json:"userRole"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&r.Alias, validation.Required, validation.Length(3, 32)),
	)
}

// login exchanges credentials for a token pair. Auth endpoints have their
// own error mapping: any failure becomes an *AuthError carrying the server
// message verbatim so views can show it inline.
func (c *Client) login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	var tokens TokenResponse
	if err := c.doAuth(ctx, "/auth/login", req, &tokens, loginFailedFallback); err != nil {
		return nil, err
	}

	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return nil, &AuthError{Message: loginFailedFallback}
	}

	return &tokens, nil
}

// register creates an account. The server returns no body of interest.
func (c *Client) register(ctx context.Context, req RegisterRequest) error {
	return c.doAuth(ctx, "/auth/register", req, nil, registerFailedFallback)
}

func (c *Client) doAuth(ctx context.Context, path string, in, out any, fallback string) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url(path),
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Error("auth request failed", "path", path, "err", err)
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, message := serverMessage(bodyBytes)
		if message == "" {
			message = fallback
		}
		c.log.Debug("auth request rejected", "path", path, "status", resp.StatusCode)
		return &AuthError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
