// AngelaMos | 2026
// repository.go

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/nutriai/backend/internal/core"
)

type Totals struct {
	Meals   int     `db:"total_meals"`
	CostUSD float64 `db:"total_cost"`
	Tokens  int64   `db:"total_tokens"`
}

type dailyCostRow struct {
	Day  time.Time `db:"day"`
	Cost float64   `db:"cost"`
}

type dailyCountRow struct {
	Day   time.Time `db:"day"`
	Count int       `db:"count"`
}

type modelUsageRow struct {
	Model string  `db:"model_used"`
	Count int     `db:"count"`
	Cost  float64 `db:"cost"`
}

type Repository interface {
	Totals(ctx context.Context) (*Totals, error)
	CountUsers(ctx context.Context) (int, error)
	DailyCosts(ctx context.Context, days int) ([]DailyCost, error)
	DailyMealCounts(ctx context.Context, days int) ([]DailyCount, error)
	ModelUsage(ctx context.Context) ([]ModelUsage, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Totals(ctx context.Context) (*Totals, error) {
	query := `
		SELECT COUNT(*)                       AS total_meals,
		       COALESCE(SUM(cost_usd), 0)     AS total_cost,
		       COALESCE(SUM(tokens_used), 0)  AS total_tokens
		FROM meals`

	var t Totals
	if err := r.db.GetContext(ctx, &t, query); err != nil {
		return nil, fmt.Errorf("meal totals: %w", err)
	}

	return &t, nil
}

func (r *repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *repository) DailyCosts(
	ctx context.Context,
	days int,
) ([]DailyCost, error) {
	query := `
		SELECT DATE(created_at)              AS day,
		       COALESCE(SUM(cost_usd), 0)    AS cost
		FROM meals
		WHERE created_at >= NOW() - make_interval(days => $1)
		GROUP BY DATE(created_at)
		ORDER BY day ASC`

	var rows []dailyCostRow
	if err := r.db.SelectContext(ctx, &rows, query, days); err != nil {
		return nil, fmt.Errorf("daily costs: %w", err)
	}

	out := make([]DailyCost, 0, len(rows))
	for _, row := range rows {
		out = append(out, DailyCost{
			Date: row.Day.Format(time.DateOnly),
			Cost: row.Cost,
		})
	}

	return out, nil
}

func (r *repository) DailyMealCounts(
	ctx context.Context,
	days int,
) ([]DailyCount, error) {
	query := `
		SELECT DATE(created_at) AS day,
		       COUNT(*)         AS count
		FROM meals
		WHERE created_at >= NOW() - make_interval(days => $1)
		GROUP BY DATE(created_at)
		ORDER BY day ASC`

	var rows []dailyCountRow
	if err := r.db.SelectContext(ctx, &rows, query, days); err != nil {
		return nil, fmt.Errorf("daily meal counts: %w", err)
	}

	out := make([]DailyCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, DailyCount{
			Date:  row.Day.Format(time.DateOnly),
			Count: row.Count,
		})
	}

	return out, nil
}

func (r *repository) ModelUsage(ctx context.Context) ([]ModelUsage, error) {
	query := `
		SELECT model_used,
		       COUNT(*)                   AS count,
		       COALESCE(SUM(cost_usd), 0) AS cost
		FROM meals
		GROUP BY model_used
		ORDER BY count DESC, model_used ASC`

	var rows []modelUsageRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("model usage: %w", err)
	}

	out := make([]ModelUsage, 0, len(rows))
	for _, row := range rows {
		out = append(out, ModelUsage(row))
	}

	return out, nil
}
