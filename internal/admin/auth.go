// AngelaMos | 2026
// auth.go

package admin

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nutriai/backend/internal/config"
	"github.com/nutriai/backend/internal/core"
)

const basicAuthUser = "admin"

// Authenticator guards the admin surface with either a session cookie or
// HTTP Basic credentials for user "admin".
type Authenticator struct {
	sessions     SessionStore
	passwordHash string
	basicDigest  [sha256.Size]byte
	verify       func(password, hash string) (bool, error)
	ttl          time.Duration
	cookieName   string
	cookieSecure bool
	logger       *slog.Logger
}

// NewAuthenticator hashes the configured password once at startup. An empty
// password disables admin login entirely.
func NewAuthenticator(
	cfg config.AdminConfig,
	sessions SessionStore,
	logger *slog.Logger,
) (*Authenticator, error) {
	a := &Authenticator{
		sessions:     sessions,
		ttl:          cfg.SessionTTL,
		cookieName:   cfg.CookieName,
		cookieSecure: cfg.CookieSecure,
		verify:       core.VerifyPassword,
		logger:       logger,
	}

	if cfg.Password == "" {
		logger.Warn("ADMIN_PASSWORD not set, admin surface disabled")
		return a, nil
	}

	hash, err := core.HashPassword(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	a.passwordHash = hash
	a.basicDigest = sha256.Sum256([]byte(cfg.Password))

	return a, nil
}

func (a *Authenticator) Enabled() bool {
	return a.passwordHash != ""
}

func (a *Authenticator) checkPassword(password string) bool {
	if !a.Enabled() || password == "" {
		return false
	}
	ok, err := a.verify(password, a.passwordHash)
	if err != nil {
		a.logger.Error("verify admin password", "error", err)
		return false
	}
	return ok
}

// checkBasic runs on every Basic-authenticated request, so it compares a
// SHA-256 digest instead of paying for argon2 each time.
func (a *Authenticator) checkBasic(password string) bool {
	if !a.Enabled() || password == "" {
		return false
	}
	digest := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(digest[:], a.basicDigest[:]) == 1
}

// Login checks password and opens a session, returning the raw cookie value.
func (a *Authenticator) Login(ctx context.Context, password string) (string, error) {
	if !a.Enabled() {
		return "", core.NotConfiguredError("admin password")
	}

	if !a.checkPassword(password) {
		return "", basicChallenge("invalid password")
	}

	token, err := core.GenerateSecureToken(sessionTokenBytes)
	if err != nil {
		return "", fmt.Errorf("admin login: %w", err)
	}

	if err := a.sessions.Save(ctx, core.HashToken(token), a.ttl); err != nil {
		return "", fmt.Errorf("admin login: %w", err)
	}

	return token, nil
}

func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.Delete(ctx, core.HashToken(token))
}

func (a *Authenticator) sessionValid(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	ok, err := a.sessions.Exists(ctx, core.HashToken(token))
	if err != nil {
		a.logger.Warn("admin session lookup failed", "error", err)
		return false
	}
	return ok
}

func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(a.cookieName); err == nil &&
			a.sessionValid(r.Context(), c.Value) {
			next.ServeHTTP(w, r)
			return
		}

		if user, pass, ok := r.BasicAuth(); ok &&
			subtle.ConstantTimeCompare([]byte(user), []byte(basicAuthUser)) == 1 &&
			a.checkBasic(pass) {
			next.ServeHTTP(w, r)
			return
		}

		core.JSONError(w, basicChallenge("admin authentication required"))
	})
}

func (a *Authenticator) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (a *Authenticator) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func basicChallenge(message string) *core.AppError {
	appErr := core.UnauthorizedError(message)
	appErr.Headers = map[string]string{"WWW-Authenticate": `Basic realm="admin"`}
	return appErr
}
