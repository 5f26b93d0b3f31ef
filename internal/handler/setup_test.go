package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lukinkratas/zapis-stavy/internal/handler"
	"github.com/lukinkratas/zapis-stavy/internal/middleware"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/jwt"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/password"
	"github.com/lukinkratas/zapis-stavy/internal/service"
	"github.com/lukinkratas/zapis-stavy/internal/testutil"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func setupRouter(t *testing.T, pinger handler.Pinger) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := testutil.NewMemory()
	hasher, err := password.NewHasher("bcrypt")
	require.NoError(t, err)
	issuer, err := jwt.NewIssuer([]byte("0123456789abcdef0123456789abcdef"), "HS256", time.Hour)
	require.NoError(t, err)
	authService, err := service.NewAuthService(mem.Users(), hasher, issuer, service.AuthConfig{CacheSize: 8, CacheTTL: time.Minute})
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	handler.RegisterRoutes(engine.Group("/"), handler.RouterDeps{
		Auth:       handler.NewAuthHandler(authService),
		Users:      handler.NewUserHandler(service.NewUserService(mem.Users(), authService)),
		Meters:     handler.NewMeterHandler(service.NewMeterService(mem.Meters(), mem.Readings())),
		Readings:   handler.NewReadingHandler(service.NewReadingService(mem.Readings(), mem.Meters())),
		Health:     handler.NewHealthHandler(pinger),
		Principals: authService,
	})
	return &testServer{t: t, handler: engine}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) token(email, pass string) *httptest.ResponseRecorder {
	s.t.Helper()
	form := url.Values{"username": {email}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// signup registers an account and returns its id and a bearer token.
func (s *testServer) signup(email string) (string, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/register", "", map[string]string{"email": email, "password": "secret12"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	user := decode(s.t, w)

	w = s.token(email, "secret12")
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return user["id"].(string), decode(s.t, w)["access_token"].(string)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var errDown = errors.New("connection refused")
