package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	PurposeSession = "session"
	PurposeReset   = "reset"

	DefaultSessionTTL = 60 * time.Minute
	DefaultResetTTL   = 15 * time.Minute
)

// Claims is the payload of both token kinds. Role is a snapshot taken at
// issuance and must not be used for authorization decisions.
type Claims struct {
	UserID  int64      `json:"user_id"`
	Email   string     `json:"email"`
	Role    model.Role `json:"role,omitempty"`
	Purpose string     `json:"purpose"`
	jwt.RegisteredClaims
}

type TokenServiceConfig struct {
	SessionSecret []byte
	ResetSecret   []byte
	SessionTTL    time.Duration
	ResetTTL      time.Duration
	// Now overrides the clock used for issuing and verifying.
	Now           func() time.Time
}

// TokenService mints and verifies HS256 tokens. Session and reset tokens
// are signed with different keys and carry different purposes, so neither
// can be replayed as the other.
type TokenService struct {
	sessionSecret []byte
	resetSecret   []byte
	sessionTTL    time.Duration
	resetTTL      time.Duration
	now           func() time.Time
}

func NewTokenService(cfg TokenServiceConfig) (*TokenService, error) {
	if len(cfg.SessionSecret) == 0 || len(cfg.ResetSecret) == 0 {
		return nil, errors.New("token secrets must not be empty")
	}
	if string(cfg.SessionSecret) == string(cfg.ResetSecret) {
		return nil, errors.New("session and reset secrets must differ")
	}
	ts := &TokenService{
		sessionSecret: cfg.SessionSecret,
		resetSecret:   cfg.ResetSecret,
		sessionTTL:    cfg.SessionTTL,
		resetTTL:      cfg.ResetTTL,
		now:           cfg.Now,
	}
	if ts.sessionTTL <= 0 {
		ts.sessionTTL = DefaultSessionTTL
	}
	if ts.resetTTL <= 0 {
		ts.resetTTL = DefaultResetTTL
	}
	if ts.now == nil {
		ts.now = time.Now
	}
	return ts, nil
}

func (s *TokenService) SessionTTL() time.Duration { return s.sessionTTL }

func (s *TokenService) IssueSessionToken(user *model.User) (string, error) {
	return s.issue(user, user.Role, PurposeSession, s.sessionTTL, s.sessionSecret)
}

func (s *TokenService) IssueResetToken(user *model.User) (string, error) {
	return s.issue(user, "", PurposeReset, s.resetTTL, s.resetSecret)
}

func (s *TokenService) VerifySessionToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, PurposeSession, s.sessionSecret)
}

func (s *TokenService) VerifyResetToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, PurposeReset, s.resetSecret)
}

func (s *TokenService) issue(user *model.User, role model.Role, purpose string, ttl time.Duration, secret []byte) (string, error) {
	if user == nil {
		return "", errors.New("cannot issue token for nil user")
	}
	now := s.now().Truncate(time.Second)
	claims := Claims{
		UserID:  user.ID,
		Email:   user.Email,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", purpose, err)
	}
	return signed, nil
}

func (s *TokenService) verify(tokenString, purpose string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Purpose != purpose || claims.UserID <= 0 {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
