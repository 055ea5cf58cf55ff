// AngelaMos | 2026
// service.go

package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/pricing"
)

const (
	DefaultWindowDays = 7
	MaxWindowDays     = 90
)

type Summary struct {
	TotalMeals     int     `json:"total_meals"`
	TotalUsers     int     `json:"total_users"`
	TotalCostUSD   float64 `json:"total_cost_usd"`
	TotalTokens    int64   `json:"total_tokens"`
	AvgCostPerMeal float64 `json:"avg_cost_per_meal"`
}

type DailyCost struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type ModelUsage struct {
	Model string  `json:"model"`
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

type Dashboard struct {
	Summary    Summary      `json:"summary"`
	DailyCosts []DailyCost  `json:"daily_costs"`
	DailyMeals []DailyCount `json:"daily_meals"`
	ModelUsage []ModelUsage `json:"model_usage"`
}

type Service struct {
	run func(ctx context.Context, fn func(Repository) error) error
}

// NewService reads every dashboard section from one read-only repeatable-read
// snapshot so the sections agree with each other.
func NewService(db *sqlx.DB) *Service {
	opts := &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	}
	return &Service{
		run: func(ctx context.Context, fn func(Repository) error) error {
			return core.InTxWithOptions(ctx, db, opts, func(tx *sqlx.Tx) error {
				return fn(NewRepository(tx))
			})
		},
	}
}

// NewServiceWithRepository runs queries directly against repo.
func NewServiceWithRepository(repo Repository) *Service {
	return &Service{
		run: func(_ context.Context, fn func(Repository) error) error {
			return fn(repo)
		},
	}
}

func ClampWindow(days int) int {
	if days < 1 {
		return DefaultWindowDays
	}
	if days > MaxWindowDays {
		return MaxWindowDays
	}
	return days
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var out *Summary
	err := s.run(ctx, func(repo Repository) error {
		var err error
		out, err = summary(ctx, repo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Dashboard(ctx context.Context, days int) (*Dashboard, error) {
	days = ClampWindow(days)

	var d Dashboard
	err := s.run(ctx, func(repo Repository) error {
		sum, err := summary(ctx, repo)
		if err != nil {
			return err
		}
		d.Summary = *sum

		if d.DailyCosts, err = repo.DailyCosts(ctx, days); err != nil {
			return err
		}
		for i := range d.DailyCosts {
			d.DailyCosts[i].Cost = pricing.Round6(d.DailyCosts[i].Cost)
		}

		if d.DailyMeals, err = repo.DailyMealCounts(ctx, days); err != nil {
			return err
		}

		if d.ModelUsage, err = repo.ModelUsage(ctx); err != nil {
			return err
		}
		for i := range d.ModelUsage {
			d.ModelUsage[i].Cost = pricing.Round6(d.ModelUsage[i].Cost)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return &d, nil
}

func summary(ctx context.Context, repo Repository) (*Summary, error) {
	totals, err := repo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	users, err := repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		TotalMeals:   totals.Meals,
		TotalUsers:   users,
		TotalCostUSD: pricing.Round6(totals.CostUSD),
		TotalTokens:  totals.Tokens,
	}
	if totals.Meals > 0 {
		s.AvgCostPerMeal = pricing.Round6(totals.CostUSD / float64(totals.Meals))
	}

	return s, nil
}
