package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad email", appErr.ErrInvalid), http.StatusUnprocessableEntity},
		{appErr.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("lookup: %w", appErr.ErrNotFound), http.StatusNotFound},
		{appErr.ErrConflict, http.StatusConflict},
		{appErr.ErrTooMany, http.StatusTooManyRequests},
		{fmt.Errorf("acquire: %w", appErr.ErrUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, detail := StatusOf(tc.err)
		require.Equal(t, tc.status, status, tc.err.Error())
		require.NotEmpty(t, detail)
	}

	_, detail := StatusOf(fmt.Errorf("%w: token expired", appErr.ErrUnauthorized))
	require.Equal(t, UnauthorizedDetail, detail)
	_, detail = StatusOf(errors.New("pq: password authentication failed"))
	require.Equal(t, "Internal server error", detail)
}

func failWith(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	status := Fail(c, err)
	require.Equal(t, status, w.Code)
	require.True(t, c.IsAborted())
	require.Len(t, c.Errors, 1)
	return w
}

func TestFailHeaders(t *testing.T) {
	w := failWith(t, appErr.ErrUnauthorized)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	require.Empty(t, w.Header().Get("Retry-After"))

	w = failWith(t, fmt.Errorf("pool: %w", appErr.ErrUnavailable))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))

	w = failWith(t, appErr.ErrTooMany)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	w = failWith(t, appErr.ErrNotFound)
	require.Empty(t, w.Header().Get("WWW-Authenticate"))
	require.Empty(t, w.Header().Get("Retry-After"))
}

func TestFailBody(t *testing.T) {
	w := failWith(t, errors.New("secret internals"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, map[string]string{"detail": "Internal server error"}, body)
}
