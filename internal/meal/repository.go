// AngelaMos | 2026
// repository.go

package meal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/user"
)

type Repository interface {
	// CreateWithQuota consumes one unit of the owner's quota and inserts m
	// as a single unit of work. On any failure neither change is kept.
	CreateWithQuota(ctx context.Context, m *Meal) (*user.QuotaState, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]Meal, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const mealColumns = `id, user_id, description, calories, proteins, carbs, fats,
		       fiber, suggestions, model_used, tokens_used, cost_usd, created_at`

func (r *repository) CreateWithQuota(
	ctx context.Context,
	m *Meal,
) (*user.QuotaState, error) {
	var state *user.QuotaState

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		state, err = user.NewRepository(tx).ConsumeQuota(ctx, m.UserID)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO meals (
				id, user_id, description, calories, proteins, carbs, fats,
				fiber, suggestions, model_used, tokens_used, cost_usd
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING created_at`

		return tx.GetContext(ctx, &m.CreatedAt, query,
			m.ID,
			m.UserID,
			m.Description,
			m.Calories,
			m.Proteins,
			m.Carbs,
			m.Fats,
			m.Fiber,
			m.Suggestions,
			m.ModelUsed,
			m.TokensUsed,
			m.CostUSD,
		)
	})
	if err != nil {
		if errors.Is(err, core.ErrQuotaExceeded) {
			return nil, fmt.Errorf("create meal: %w", err)
		}
		return nil, fmt.Errorf("create meal: %w: %w", core.ErrPersistence, err)
	}

	return state, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
	offset, limit int,
) ([]Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	meals := []Meal{}
	if err := r.db.SelectContext(ctx, &meals, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}

	return meals, nil
}
