// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nutriai/backend/internal/core"
)

const (
	UserIDKey   contextKey = "user_id"
	UserTierKey contextKey = "user_tier"
)

// Principal is the authenticated caller as far as the HTTP layer cares.
type Principal struct {
	UserID string
	Tier   string
}

// IdentityResolver turns a bearer credential into a Principal. The token may
// be empty; resolvers running without an identity provider accept that.
type IdentityResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (*Principal, error)
}

func Authenticator(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolver.ResolvePrincipal(
				r.Context(),
				ExtractToken(r),
			)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			annotateLog(r.Context(), principal.UserID)
			ctx := WithPrincipal(r.Context(), *principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	appErr := core.MapError(err)
	if appErr.StatusCode < http.StatusInternalServerError &&
		appErr.StatusCode != http.StatusUnauthorized {
		core.JSONError(w, core.UnauthorizedError(""))
		return
	}
	core.JSONError(w, err)
}

// WithPrincipal stores p in ctx the way Authenticator does.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, p.UserID)
	return context.WithValue(ctx, UserTierKey, p.Tier)
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func GetUserTier(ctx context.Context) string {
	if tier, ok := ctx.Value(UserTierKey).(string); ok {
		return tier
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}
