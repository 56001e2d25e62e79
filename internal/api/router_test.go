package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ecommerce_api/internal/api/handler"
	"ecommerce_api/internal/app/service"
	"ecommerce_api/internal/common/security"
	"ecommerce_api/internal/domain/model"
	"ecommerce_api/internal/domain/repository"
	"ecommerce_api/internal/platform/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingNotifier struct {
	mu   sync.Mutex
	sent []model.PasswordResetNotification
}

func (c *capturingNotifier) NotifyPasswordReset(ctx context.Context, n model.PasswordResetNotification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return nil
}

type stubPinger struct{ err error }

func (s stubPinger) PingContext(ctx context.Context) error { return s.err }

type testServer struct {
	t        *testing.T
	handler  http.Handler
	users    repository.UserRepository
	notifier *capturingNotifier
}

func newTestServer(t *testing.T, storage handler.Pinger) *testServer {
	t.Helper()
	log := zap.NewNop()
	m := metrics.New("test")
	tokens, err := security.NewTokenService(security.TokenServiceConfig{
		SessionSecret: []byte("router-session-secret"),
		ResetSecret:   []byte("router-reset-secret"),
	})
	require.NoError(t, err)

	users := repository.NewMemoryUserRepository()
	products := repository.NewMemoryProductRepository()
	notifier := &capturingNotifier{}
	hasher := security.NewPBKDF2HasherWithIterations(1000)
	identity := service.NewIdentityResolver(tokens, users, log, m)

	h := NewRouter(Services{
		Auth:     service.NewAuthService(users, hasher, tokens, notifier, log, m),
		Identity: identity,
		Product:  service.NewProductService(products, log),
		Admin:    service.NewAdminService(users, products, log),
	}, RouterConfig{Version: "test", Storage: storage}, m, log)

	return &testServer{t: t, handler: h, users: users, notifier: notifier}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) registerAndLogin(email string, role model.Role) (int64, string) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "User " + string(role), "email": email, "password": "Pass1234", "role": string(role),
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[service.RegisterResponse](s.t, rec)

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "Pass1234"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[service.TokenResponse](s.t, rec)
	return reg.ID, login.AccessToken
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/ready", "", nil).Code)

	rec := s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")

	down := newTestServer(t, stubPinger{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/health/ready", "", nil).Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/nope", "", nil).Code)
}

func TestRouter_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t, nil)
	id, token := s.registerAndLogin("a@x.com", model.RoleBuyer)

	rec := s.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[model.Principal](t, rec)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, model.RoleBuyer, me.Role)

	rec = s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Dup", "email": "a@x.com", "password": "Pass1234", "role": "buyer",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")

	rec = s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Weak", "email": "w@x.com", "password": "weakpass", "role": "buyer",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "Nope1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	wrongPassword := rec.Body.String()

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ghost@x.com", "password": "Pass1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrongPassword, rec.Body.String())
}

func TestRouter_ProtectedEndpointsNeedToken(t *testing.T) {
	s := newTestServer(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/auth/me"},
		{http.MethodPost, "/products"},
		{http.MethodPut, "/products/1"},
		{http.MethodDelete, "/products/1"},
		{http.MethodGet, "/admin/users"},
	} {
		rec := s.do(tc.method, tc.path, "", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		rec = s.do(tc.method, tc.path, "garbage", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s with bad token", tc.method, tc.path)
	}
}

func TestRouter_ProductOwnershipScenario(t *testing.T) {
	s := newTestServer(t, nil)
	_, sellerToken := s.registerAndLogin("seller@x.com", model.RoleSeller)
	_, buyerToken := s.registerAndLogin("buyer@x.com", model.RoleBuyer)
	_, adminToken := s.registerAndLogin("admin@x.com", model.RoleAdmin)

	rec := s.do(http.MethodPost, "/products", buyerToken, map[string]interface{}{"name": "Lamp", "price": 10, "stock": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/products", sellerToken, map[string]interface{}{"name": "Lamp", "price": 10, "stock": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[model.Product](t, rec)
	path := fmt.Sprintf("/products/%d", product.ID)

	rec = s.do(http.MethodPut, path, buyerToken, map[string]interface{}{"price": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, path, sellerToken, map[string]interface{}{"price": 12.5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12.5, decode[model.Product](t, rec).Price)

	rec = s.do(http.MethodPut, path, adminToken, map[string]interface{}{"stock": 9})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, decode[model.Product](t, rec).Stock)

	rec = s.do(http.MethodPut, "/products/9999", buyerToken, map[string]interface{}{"price": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Product](t, rec), 1)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, sellerToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, "", nil).Code)

	rec = s.do(http.MethodGet, "/products", "", nil)
	assert.Empty(t, decode[[]model.Product](t, rec))

	rec = s.do(http.MethodGet, "/admin/products/all?include_inactive=true", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Product](t, rec), 1)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/admin/products/%d", product.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "permanently deleted")
}

func TestRouter_ListValidation(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/products?limit=0", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/products?limit=101", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/products?skip=-1", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/products?skip=abc", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/products/abc", "", nil).Code)
}

func TestRouter_AdminDeactivationRevokesAccess(t *testing.T) {
	s := newTestServer(t, nil)
	buyerID, buyerToken := s.registerAndLogin("a@x.com", model.RoleBuyer)
	adminID, adminToken := s.registerAndLogin("admin@x.com", model.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/admin/users", buyerToken, nil).Code)

	rec := s.do(http.MethodGet, "/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]model.User](t, rec)
	assert.Len(t, users, 2)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPut, fmt.Sprintf("/admin/users/%d/deactivate", adminID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, fmt.Sprintf("/admin/users/%d/deactivate", buyerID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com has been deactivated")

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/auth/me", buyerToken, nil).Code)

	rec = s.do(http.MethodPut, fmt.Sprintf("/admin/users/%d/activate", buyerID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/auth/me", buyerToken, nil).Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/admin/users/999", adminToken, nil).Code)
}

func TestRouter_RoleDowngradeTakesEffectImmediately(t *testing.T) {
	s := newTestServer(t, nil)
	sellerID, sellerToken := s.registerAndLogin("seller@x.com", model.RoleSeller)
	_, adminToken := s.registerAndLogin("admin@x.com", model.RoleAdmin)

	rec := s.do(http.MethodPut, fmt.Sprintf("/admin/users/%d/role", sellerID), adminToken, map[string]string{"role": "buyer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/products", sellerToken, map[string]interface{}{"name": "Lamp", "price": 10, "stock": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_PasswordResetFlow(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndLogin("a@x.com", model.RoleBuyer)

	known := s.do(http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "a@x.com"})
	unknown := s.do(http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "ghost@x.com"})
	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.NotContains(t, known.Body.String(), "reset_token")

	require.Len(t, s.notifier.sent, 1)
	resetToken := s.notifier.sent[0].Token

	rec := s.do(http.MethodGet, "/auth/me", resetToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/auth/reset-password", "", map[string]string{"token": "bogus", "new_password": "NewPass99"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired reset token")

	rec = s.do(http.MethodPost, "/auth/reset-password", "", map[string]string{"token": resetToken, "new_password": "NewPass99"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "NewPass99"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MalformedJSON(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CookieToken(t *testing.T) {
	s := newTestServer(t, nil)
	_, token := s.registerAndLogin("a@x.com", model.RoleBuyer)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token, Expires: time.Now().Add(time.Hour)})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
