package murmursdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Error taxonomy for callers deciding between inline messaging, a retry
// affordance, or a redirect. Nothing here is fatal to the process.

// ErrNotFound reports a 404/410 on a resource fetch: the post either never
// existed or has expired.
var ErrNotFound = errors.New("murmur: not found or expired")

// ErrSessionExpired reports a 401 on a protected call after the pipeline's
// refresh attempt failed. The token store has already been cleared; the
// front end should send the user back to the login view.
var ErrSessionExpired = errors.New("murmur: session expired")

// AuthError is a login or registration failure. Message carries the
// server-provided text verbatim, or a generic fallback when none is present.
// The session state is unaffected.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string { return e.Message }

// ValidationError reports client-side form constraint failures. It blocks
// submission and never reaches the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// wrapValidation converts an ozzo-validation result into a *ValidationError.
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: map[string]string{"": err.Error()}}
	}

	fields := make(map[string]string, len(fieldErrs))
	for name, fieldErr := range fieldErrs {
		fields[name] = fieldErr.Error()
	}
	return &ValidationError{Fields: fields}
}

// APIError is any other non-2xx response. The pipeline performs no
// interpretation of business-level error bodies, so this is the raw status
// plus whatever message the server included.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNetworkError reports whether err is a transport-level failure with no
// HTTP response, e.g. DNS failure or connection refused.
func IsNetworkError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// serverMessage extracts a human-readable message from an error body.
// Two shapes are recognised: {"message": ...} and
// {"error": ..., "error_description": ...}.
func serverMessage(body []byte) (code, message string) {
	var springErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &springErr); err == nil && springErr.Message != "" {
		return springErr.Error, springErr.Message
	}

	var oauthErr struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Error != "" {
		return oauthErr.Error, oauthErr.ErrorDescription
	}

	return "", ""
}

// parseErrorResponse maps a non-2xx response to a typed error.
func parseErrorResponse(statusCode int, body []byte) error {
	code, message := serverMessage(body)

	switch statusCode {
	case http.StatusNotFound, http.StatusGone:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, message)
		}
		return ErrNotFound
	case http.StatusUnauthorized:
		// A 401 surviving the pipeline means the refresh already failed.
		return ErrSessionExpired
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}
