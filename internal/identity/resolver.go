// AngelaMos | 2026
// resolver.go

package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/middleware"
	"github.com/nutriai/backend/internal/user"
)

const (
	DevUserID    = "temp_user_dev"
	DevUserEmail = "dev@nutriai.app"
	DevUserName  = "Dev User"

	// SimpleTokenPrefix marks application-issued tokens of the form
	// "clerk_<user id>" handed out by sign-in.
	SimpleTokenPrefix = "clerk_"
)

type UserSyncer interface {
	Sync(ctx context.Context, p user.Profile) (*user.User, error)
}

// Provider looks users up in the identity provider for profile enrichment.
type Provider interface {
	GetUser(ctx context.Context, id string) (*ClerkUser, error)
}

type Resolver struct {
	users    UserSyncer
	provider Provider
	verifier TokenVerifier
	devMode  bool
	logger   *slog.Logger
}

// NewResolver builds a resolver backed by provider. A nil provider puts the
// resolver in development mode: every request maps to the fixed dev user.
func NewResolver(
	users UserSyncer,
	provider Provider,
	verifier TokenVerifier,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		users:    users,
		provider: provider,
		verifier: verifier,
		devMode:  provider == nil,
		logger:   logger,
	}
}

func (r *Resolver) DevMode() bool {
	return r.devMode
}

// Resolve maps a bearer credential to a stored user, creating it on first
// sight and refreshing its profile when the provider reports changes.
func (r *Resolver) Resolve(ctx context.Context, token string) (*user.User, error) {
	ctx, span := core.StartSpan(ctx, "identity.resolve",
		attribute.Bool("identity.dev_mode", r.devMode),
	)
	defer span.End()

	if r.devMode {
		return r.users.Sync(ctx, user.Profile{
			ID:          DevUserID,
			Email:       DevUserEmail,
			DisplayName: DevUserName,
		})
	}

	if token == "" {
		return nil, core.UnauthorizedError("missing authorization token")
	}

	var fallback user.Profile
	if id, ok := strings.CutPrefix(token, SimpleTokenPrefix); ok {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("resolve: empty user id: %w", core.ErrTokenInvalid)
		}
		fallback = user.Profile{ID: id}
	} else {
		claims, err := r.verifier.Verify(ctx, token)
		if err != nil {
			return nil, err
		}
		fallback = user.Profile{
			ID:          claims.Subject,
			Email:       claims.Email,
			DisplayName: claims.Name,
		}
	}

	profile := r.enrich(ctx, fallback)

	u, err := r.users.Sync(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	return u, nil
}

// enrich asks the provider for the current profile. Any failure degrades to
// the fields already known from the credential.
func (r *Resolver) enrich(ctx context.Context, fallback user.Profile) user.Profile {
	cu, err := r.provider.GetUser(ctx, fallback.ID)
	if err != nil {
		r.logger.Debug("identity enrichment failed, using token claims",
			"user_id", fallback.ID,
			"error", err,
		)
		return fallback
	}

	p := user.Profile{
		ID:          fallback.ID,
		Email:       cu.PrimaryEmail(),
		DisplayName: cu.DisplayName(),
	}
	if p.Email == "" {
		p.Email = fallback.Email
	}
	if p.DisplayName == "" {
		p.DisplayName = fallback.DisplayName
	}
	return p
}

func (r *Resolver) ResolvePrincipal(
	ctx context.Context,
	token string,
) (*middleware.Principal, error) {
	u, err := r.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return &middleware.Principal{UserID: u.ID, Tier: u.Subscription}, nil
}

var _ middleware.IdentityResolver = (*Resolver)(nil)
