// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nutriai/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	ConsumeQuota(ctx context.Context, id string) (*QuotaState, error)
	ResetQuotas(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

// NewRepository accepts either the pool or an open transaction.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, email, display_name, subscription, daily_quota,
		       quota_used, quota_reset_date, created_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, display_name, subscription, daily_quota, quota_used)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING quota_reset_date, created_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.Subscription,
		user.DailyQuota,
		user.QuotaUsed,
	)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET email = $2, display_name = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
	)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("update profile: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}

	return nil
}

// ConsumeQuota increments quota_used by one only while the user still has
// capacity. The check and the increment are a single statement, so two
// concurrent analyses at the boundary cannot both succeed.
func (r *repository) ConsumeQuota(
	ctx context.Context,
	id string,
) (*QuotaState, error) {
	query := `
		UPDATE users
		SET quota_used = quota_used + 1
		WHERE id = $1
		  AND (daily_quota = -1 OR quota_used < daily_quota)
		RETURNING daily_quota, quota_used`

	var state QuotaState
	err := r.db.GetContext(ctx, &state, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consume quota: %w", core.ErrQuotaExceeded)
	}
	if err != nil {
		return nil, fmt.Errorf("consume quota: %w", err)
	}

	return &state, nil
}

func (r *repository) ResetQuotas(ctx context.Context) (int64, error) {
	query := `
		UPDATE users
		SET quota_used = 0, quota_reset_date = NOW()
		WHERE quota_used > 0`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("reset quotas: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset quotas: %w", err)
	}

	return rows, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}
