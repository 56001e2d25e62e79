package service

import (
	"context"
	"errors"
	"fmt"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/common/security"
	"ecommerce_api/internal/domain/model"
	"ecommerce_api/internal/domain/repository"
	"ecommerce_api/internal/platform/metrics"

	"go.uber.org/zap"
)

// SessionVerifier checks a session token's signature and expiry.
type SessionVerifier interface {
	VerifySessionToken(token string) (*security.Claims, error)
}

// IdentityResolver turns a bearer token into the current Principal.
// The token only vouches for identity and expiry; role and active state
// are read from storage on every call.
type IdentityResolver struct {
	tokens   SessionVerifier
	userRepo repository.UserRepository
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewIdentityResolver(tokens SessionVerifier, userRepo repository.UserRepository, log *zap.Logger, m *metrics.Metrics) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, userRepo: userRepo, log: log, metrics: m}
}

func (s *IdentityResolver) Resolve(ctx context.Context, token string) (*model.Principal, error) {
	if token == "" {
		s.metrics.AuthEvent("resolve", "missing_token")
		return nil, common.ErrUnauthorized
	}

	claims, err := s.tokens.VerifySessionToken(token)
	if err != nil {
		s.metrics.AuthEvent("resolve", "invalid_token")
		return nil, fmt.Errorf("%w: %v", common.ErrUnauthorized, err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.metrics.AuthEvent("resolve", "unknown_user")
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user %d: %w", claims.UserID, err)
	}
	if !user.IsActive {
		s.metrics.AuthEvent("resolve", "inactive_user")
		s.log.Info("rejected token for inactive user", zap.Int64("user_id", user.ID), zap.String("jti", claims.ID))
		return nil, common.ErrUnauthorized
	}

	s.metrics.AuthEvent("resolve", "success")
	return user.Principal(), nil
}
