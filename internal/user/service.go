// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nutriai/backend/internal/core"
)

// Profile is what an identity source knows about a user. Empty fields are
// treated as unknown and never overwrite stored values.
type Profile struct {
	ID          string
	Email       string
	DisplayName string
}

type Service struct {
	repo         Repository
	defaultQuota int
}

func NewService(repo Repository, defaultQuota int) *Service {
	return &Service{
		repo:         repo,
		defaultQuota: defaultQuota,
	}
}

// Sync returns the stored user for profile.ID, creating it with free-tier
// defaults on first sight, or refreshing email and display name when the
// profile carries newer values.
func (s *Service) Sync(ctx context.Context, p Profile) (*User, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("sync user: %w", core.ErrUnauthorized)
	}

	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("sync user: %w", err)
	}

	if existing == nil {
		created, err := s.create(ctx, p)
		if errors.Is(err, core.ErrDuplicateKey) {
			// lost a first-sight race with a concurrent request
			return s.repo.GetByID(ctx, p.ID)
		}
		return created, err
	}

	changed := false
	if email := strings.ToLower(strings.TrimSpace(p.Email)); email != "" &&
		email != existing.Email {
		existing.Email = email
		changed = true
	}
	if p.DisplayName != "" && p.DisplayName != existing.DisplayName {
		existing.DisplayName = p.DisplayName
		changed = true
	}

	if changed {
		if err := s.repo.UpdateProfile(ctx, existing); err != nil {
			return nil, fmt.Errorf("sync user: %w", err)
		}
	}

	return existing, nil
}

func (s *Service) create(ctx context.Context, p Profile) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		email = p.ID + "@clerk.app"
	}

	name := p.DisplayName
	if name == "" {
		name = "User"
	}

	u := &User{
		ID:           p.ID,
		Email:        email,
		DisplayName:  name,
		Subscription: TierFree,
		DailyQuota:   s.defaultQuota,
		QuotaUsed:    0,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, fmt.Errorf("get user: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ResetQuotas(ctx context.Context) (int64, error) {
	return s.repo.ResetQuotas(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
