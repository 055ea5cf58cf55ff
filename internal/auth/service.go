// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/identity"
	"github.com/nutriai/backend/internal/user"
)

const (
	MessageSignedUp = "account created, please sign in"
	MessageSignedIn = "signed in"
)

type Provider interface {
	CreateUser(ctx context.Context, p identity.CreateUserParams) (*identity.ClerkUser, error)
	FindUserByEmail(ctx context.Context, email string) (*identity.ClerkUser, error)
	VerifyPassword(ctx context.Context, id, password string) (bool, error)
}

type UserSyncer interface {
	Sync(ctx context.Context, p user.Profile) (*user.User, error)
}

type Service struct {
	provider Provider
	users    UserSyncer
	logger   *slog.Logger
}

// NewService wires signup and signin. A nil provider means the identity
// provider secret is not configured and both operations fail.
func NewService(provider Provider, users UserSyncer, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		users:    users,
		logger:   logger,
	}
}

func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	if s.provider == nil {
		return nil, core.NotConfiguredError("identity provider")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	created, err := s.provider.CreateUser(ctx, identity.CreateUserParams{
		Email:     email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		return nil, providerFailure(err, "account creation rejected")
	}

	name := strings.TrimSpace(req.FirstName + " " + req.LastName)
	if name == "" {
		name = created.DisplayName()
	}

	if _, err := s.users.Sync(ctx, user.Profile{
		ID:          created.ID,
		Email:       email,
		DisplayName: name,
	}); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.logger.Info("user signed up", "user_id", created.ID)

	return &AuthResponse{
		Token:   "",
		UserID:  created.ID,
		Email:   email,
		Message: MessageSignedUp,
	}, nil
}

func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	if s.provider == nil {
		return nil, core.NotConfiguredError("identity provider")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	found, err := s.provider.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, providerFailure(err, "")
	}

	ok, err := s.provider.VerifyPassword(ctx, found.ID, req.Password)
	if err != nil {
		return nil, providerFailure(err, "")
	}
	if !ok {
		return nil, invalidCredentials()
	}

	if _, err := s.users.Sync(ctx, user.Profile{
		ID:          found.ID,
		Email:       email,
		DisplayName: found.DisplayName(),
	}); err != nil {
		return nil, fmt.Errorf("signin: %w", err)
	}

	return &AuthResponse{
		Token:   identity.SimpleTokenPrefix + found.ID,
		UserID:  found.ID,
		Email:   email,
		Message: MessageSignedIn,
	}, nil
}

func invalidCredentials() *core.AppError {
	return core.UnauthorizedError("invalid email or password")
}

// providerFailure maps a provider client rejection to a 400 when
// rejectedMessage is set, to 401 otherwise. Transport failures stay 503.
func providerFailure(err error, rejectedMessage string) error {
	var pe *identity.ProviderError
	if !errors.As(err, &pe) {
		return err
	}

	if pe.StatusCode >= http.StatusInternalServerError {
		return core.UpstreamUnavailableError("identity provider unavailable")
	}

	if rejectedMessage == "" {
		return invalidCredentials()
	}

	return core.NewAppError(err, rejectedMessage, http.StatusBadRequest, core.CodeBadRequest)
}
