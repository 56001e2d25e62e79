package service

import (
	"context"
	"testing"
	"time"

	"ecommerce_api/internal/common/security"
	"ecommerce_api/internal/domain/model"
	"ecommerce_api/internal/domain/repository"
	"ecommerce_api/internal/platform/metrics"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockResetNotifier struct {
	mock.Mock
}

func (m *MockResetNotifier) NotifyPasswordReset(ctx context.Context, n model.PasswordResetNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type testEnv struct {
	users    repository.UserRepository
	products repository.ProductRepository
	hasher   security.PasswordHasher
	tokens   *security.TokenService
	notifier *MockResetNotifier
	metrics  *metrics.Metrics

	auth     *AuthService
	identity *IdentityResolver
	product  *ProductService
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens, err := security.NewTokenService(security.TokenServiceConfig{
		SessionSecret: []byte("test-session-secret"),
		ResetSecret:   []byte("test-reset-secret"),
		SessionTTL:    60 * time.Minute,
		ResetTTL:      15 * time.Minute,
	})
	require.NoError(t, err)

	env := &testEnv{
		users:    repository.NewMemoryUserRepository(),
		products: repository.NewMemoryProductRepository(),
		hasher:   security.NewPBKDF2HasherWithIterations(1000),
		tokens:   tokens,
		notifier: &MockResetNotifier{},
		metrics:  metrics.New("test"),
	}
	log := zap.NewNop()
	env.auth = NewAuthService(env.users, env.hasher, env.tokens, env.notifier, log, env.metrics)
	env.identity = NewIdentityResolver(env.tokens, env.users, log, env.metrics)
	env.product = NewProductService(env.products, log)
	env.admin = NewAdminService(env.users, env.products, log)
	return env
}

// register creates an active user directly through the service.
func (e *testEnv) register(t *testing.T, email string, role model.Role) *model.Principal {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Name:     "Test " + string(role),
		Email:    email,
		Password: "Pass1234",
		Role:     role,
	})
	require.NoError(t, err)
	return &model.Principal{ID: resp.ID, Email: resp.Email, Role: resp.Role, IsActive: true}
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	resp, err := e.auth.Login(context.Background(), LoginRequest{Email: email, Password: "Pass1234"})
	require.NoError(t, err)
	return resp.AccessToken
}
