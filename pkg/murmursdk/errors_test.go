package murmursdk

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerMessage(t *testing.T) {
	t.Parallel()

	t.Run("message shape", func(t *testing.T) {
		t.Parallel()

		code, message := serverMessage([]byte(`{"error":"CONFLICT","message":"Alias already taken"}`))
		require.Equal(t, "CONFLICT", code)
		require.Equal(t, "Alias already taken", message)
	})

	t.Run("oauth shape", func(t *testing.T) {
		t.Parallel()

		code, message := serverMessage([]byte(`{"error":"invalid_grant","error_description":"refresh token revoked"}`))
		require.Equal(t, "invalid_grant", code)
		require.Equal(t, "refresh token revoked", message)
	})

	t.Run("unrecognised body", func(t *testing.T) {
		t.Parallel()

		code, message := serverMessage([]byte(`<html>nope</html>`))
		require.Empty(t, code)
		require.Empty(t, message)
	})
}

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	t.Run("404 and 410 map to ErrNotFound", func(t *testing.T) {
		t.Parallel()

		err := parseErrorResponse(http.StatusNotFound, nil)
		require.ErrorIs(t, err, ErrNotFound)

		err = parseErrorResponse(http.StatusGone, []byte(`{"message":"post expired"}`))
		require.ErrorIs(t, err, ErrNotFound)
		require.Contains(t, err.Error(), "post expired")
	})

	t.Run("401 maps to ErrSessionExpired", func(t *testing.T) {
		t.Parallel()

		err := parseErrorResponse(http.StatusUnauthorized, nil)
		require.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("other statuses become APIError", func(t *testing.T) {
		t.Parallel()

		err := parseErrorResponse(http.StatusInternalServerError, []byte(`{"error":"INTERNAL","message":"boom"}`))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		require.Equal(t, "INTERNAL", apiErr.Code)
		require.Equal(t, "boom", apiErr.Message)
		require.Contains(t, apiErr.Error(), "boom")
	})

	t.Run("APIError without message falls back to status text", func(t *testing.T) {
		t.Parallel()

		err := parseErrorResponse(http.StatusBadGateway, nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Contains(t, apiErr.Error(), "Bad Gateway")
	})
}

func TestWrapValidation(t *testing.T) {
	t.Parallel()

	t.Run("nil passes through", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, wrapValidation(nil))
	})

	t.Run("field errors are keyed by field", func(t *testing.T) {
		t.Parallel()

		err := LoginRequest{Email: "not-an-email", Password: ""}.Validate()
		require.Error(t, err)

		wrapped := wrapValidation(err)
		var valErr *ValidationError
		require.ErrorAs(t, wrapped, &valErr)
		require.Contains(t, valErr.Fields, "email")
		require.Contains(t, valErr.Fields, "password")
	})
}

func TestIsNetworkError(t *testing.T) {
	t.Parallel()

	require.True(t, IsNetworkError(&url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}))
	require.False(t, IsNetworkError(ErrNotFound))
	require.False(t, IsNetworkError(nil))
}
