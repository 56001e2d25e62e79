package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/common/security"
	"ecommerce_api/internal/domain/model"
	"ecommerce_api/internal/domain/repository"
	"ecommerce_api/internal/platform/metrics"

	"go.uber.org/zap"
)

// ResetNotifier hands a reset token to whatever delivers it to the user.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, n model.PasswordResetNotification) error
}

const ForgotPasswordMessage = "If the email exists, a reset token has been sent"

type AuthService struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	tokens   *security.TokenService
	notifier ResetNotifier
	log      *zap.Logger
	metrics  *metrics.Metrics

	// dummyHash is verified against when the email is unknown so both
	// login failure paths do the same work.
	dummyHash string
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	tokens *security.TokenService,
	notifier ResetNotifier,
	log *zap.Logger,
	m *metrics.Metrics,
) *AuthService {
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		log.Warn("failed to precompute dummy hash", zap.Error(err))
	}
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		notifier:  notifier,
		log:       log,
		metrics:   m,
		dummyHash: dummy,
	}
}

type RegisterRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type RegisterResponse struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Role    model.Role `json:"role"`
	Message string     `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	UserID      int64      `json:"user_id"`
	Email       string     `json:"email"`
	Role        model.Role `json:"role"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r *RegisterRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if err := validateLength("name", r.Name, 2, 150); err != nil {
		return err
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if err := security.ValidatePasswordStrength(r.Password); err != nil {
		return common.Invalid("%s", capitalize(err.Error()))
	}
	if !r.Role.Valid() {
		return common.Invalid("role must be one of buyer, seller, admin")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict for duplicate emails
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &RegisterResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		Message: "User registered successfully",
	}, nil
}

// Login returns ErrInvalidCredentials for an unknown email, a wrong
// password and a deactivated account alike.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.BadRequest("Email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(req.Password, s.dummyHash)
			s.metrics.AuthEvent("login", "failure")
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) || !user.IsActive {
		s.metrics.AuthEvent("login", "failure")
		s.log.Info("login rejected", zap.Int64("user_id", user.ID), zap.Bool("active", user.IsActive))
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	s.metrics.AuthEvent("login", "success")
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.SessionTTL() / time.Second),
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
	}, nil
}

// ForgotPassword never reveals whether the email is registered: callers
// get the same outcome either way, and delivery failures are only logged.
func (s *AuthService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Error("forgot password lookup failed", zap.Error(err))
		}
		s.metrics.AuthEvent("reset_request", "ignored")
		return nil
	}
	if !user.IsActive {
		s.metrics.AuthEvent("reset_request", "ignored")
		return nil
	}

	token, err := s.tokens.IssueResetToken(user)
	if err != nil {
		s.log.Error("failed to issue reset token", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil
	}
	n := model.PasswordResetNotification{
		UserID:      user.ID,
		Email:       user.Email,
		Token:       token,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.notifier.NotifyPasswordReset(ctx, n); err != nil {
		s.log.Error("failed to enqueue reset notification", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil
	}
	s.metrics.AuthEvent("reset_request", "queued")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	claims, err := s.tokens.VerifyResetToken(req.Token)
	if err != nil {
		s.metrics.AuthEvent("reset", "invalid_token")
		return err
	}
	if err := security.ValidatePasswordStrength(req.NewPassword); err != nil {
		return common.Invalid("%s", capitalize(err.Error()))
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if user.Email != claims.Email {
		s.metrics.AuthEvent("reset", "invalid_token")
		return common.ErrInvalidToken
	}

	hashedPassword, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.metrics.AuthEvent("reset", "success")
	s.log.Info("password reset", zap.Int64("user_id", user.ID), zap.String("jti", claims.ID))
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
