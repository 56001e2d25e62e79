package middleware

import (
	"context"
	"errors"
	"net/http"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/common/security"
	"ecommerce_api/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

type contextKey string

const PrincipalCtxKey contextKey = "principal"

// Resolver is implemented by service.IdentityResolver.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*model.Principal, error)
}

// BearerToken reads "Authorization: Bearer T", falling back to the jwt cookie.
func BearerToken(r *http.Request) string {
	if token := jwtauth.TokenFromHeader(r); token != "" {
		return token
	}
	return jwtauth.TokenFromCookie(r)
}

// Authenticator rejects the request with 401 unless its bearer token
// resolves to an active user, and stores the Principal in the context.
func Authenticator(resolver Resolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolver.Resolve(r.Context(), BearerToken(r))
			if err != nil {
				if !errors.Is(err, common.ErrUnauthorized) {
					log.Error("failed to resolve identity", zap.Error(err))
				}
				common.RespondWithServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole must run after Authenticator.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := PrincipalFromContext(r.Context())
			if err := security.Authorize(principal, security.RoleAtLeast{Role: role}); err != nil {
				common.RespondWithServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, PrincipalCtxKey, p)
}

func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	p, ok := ctx.Value(PrincipalCtxKey).(*model.Principal)
	return p, ok && p != nil
}
