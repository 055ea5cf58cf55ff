// AngelaMos | 2026
// token.go

package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/nutriai/backend/internal/core"
)

// Claims are the identity fields read from a provider-issued session token.
type Claims struct {
	Subject string
	Email   string
	Name    string
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

const (
	jwksRefreshInterval = time.Hour
	jwksRetryBackoff    = time.Minute
	defaultFetchTimeout = 10 * time.Second
)

// NewTokenVerifier verifies signatures against the provider's published
// keys when jwksURL is set. Without it, claims are decoded unverified.
// fetchTimeout bounds every key set download.
func NewTokenVerifier(jwksURL string, fetchTimeout time.Duration) TokenVerifier {
	if jwksURL == "" {
		return insecureVerifier{}
	}
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &jwksVerifier{
		url:          jwksURL,
		client:       &http.Client{Timeout: fetchTimeout},
		refreshTTL:   jwksRefreshInterval,
		retryBackoff: jwksRetryBackoff,
	}
}

type insecureVerifier struct{}

func (insecureVerifier) Verify(_ context.Context, raw string) (*Claims, error) {
	token, err := jwt.ParseInsecure([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", core.ErrTokenInvalid)
	}
	return claimsFrom(token)
}

type jwksVerifier struct {
	url          string
	client       *http.Client
	refreshTTL   time.Duration
	retryBackoff time.Duration

	mu        sync.RWMutex
	set       jwk.Set
	lastErr   error
	refreshAt time.Time
}

func (v *jwksVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	set, err := v.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("load signing keys: %v: %w", err, core.ErrUpstreamUnavailable)
	}

	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	return claimsFrom(token)
}

// cached returns the current key set, or the last fetch error, while the
// refresh deadline has not passed.
func (v *jwksVerifier) cached() (jwk.Set, bool, error) {
	if !time.Now().Before(v.refreshAt) {
		return nil, false, nil
	}
	if v.set != nil {
		return v.set, true, nil
	}
	return nil, true, v.lastErr
}

func (v *jwksVerifier) keys(ctx context.Context) (jwk.Set, error) {
	v.mu.RLock()
	set, ok, err := v.cached()
	v.mu.RUnlock()
	if ok {
		return set, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if set, ok, err := v.cached(); ok {
		return set, err
	}

	fresh, err := jwk.Fetch(ctx, v.url, jwk.WithHTTPClient(v.client))
	if err != nil {
		// failed refreshes are retried after a backoff, not on every request
		v.refreshAt = time.Now().Add(v.retryBackoff)
		if v.set != nil {
			return v.set, nil
		}
		v.lastErr = fmt.Errorf("fetch jwks: %w", err)
		return nil, v.lastErr
	}

	v.set = fresh
	v.lastErr = nil
	v.refreshAt = time.Now().Add(v.refreshTTL)
	return fresh, nil
}

func claimsFrom(token jwt.Token) (*Claims, error) {
	subject, ok := token.Subject()
	if !ok || strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("token subject missing: %w", core.ErrTokenInvalid)
	}

	c := &Claims{Subject: subject}
	c.Email = stringClaim(token, "email")
	c.Name = stringClaim(token, "name")
	if c.Name == "" {
		c.Name = stringClaim(token, "first_name")
	}

	return c, nil
}

func stringClaim(token jwt.Token, name string) string {
	var v string
	if err := token.Get(name, &v); err != nil {
		return ""
	}
	return v
}
