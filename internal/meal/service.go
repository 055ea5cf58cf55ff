// AngelaMos | 2026
// service.go

package meal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/metrics"
	"github.com/nutriai/backend/internal/nutrition"
	"github.com/nutriai/backend/internal/quota"
	"github.com/nutriai/backend/internal/user"
)

type Estimator interface {
	Estimate(ctx context.Context, description string) (*nutrition.Estimate, error)
}

type CostCalculator interface {
	Cost(promptTokens, completionTokens int) float64
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Analysis struct {
	Meal           *Meal
	QuotaRemaining int
}

type Service struct {
	repo      Repository
	users     UserReader
	estimator Estimator
	pricing   CostCalculator
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	users UserReader,
	estimator Estimator,
	pricing CostCalculator,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		estimator: estimator,
		pricing:   pricing,
		logger:    logger,
	}
}

// Analyze runs the gate → estimate → price → store workflow. It is
// all-or-nothing: on any error no meal exists and no quota was consumed.
func (s *Service) Analyze(
	ctx context.Context,
	userID, description string,
) (*Analysis, error) {
	description = strings.TrimSpace(description)
	if n := utf8.RuneCountInString(description); n < MinDescriptionLen ||
		n > MaxDescriptionLen {
		return nil, core.ValidationError(fmt.Sprintf(
			"description must be between %d and %d characters",
			MinDescriptionLen, MaxDescriptionLen,
		))
	}

	ctx, span := core.StartSpan(ctx, "meal.analyze",
		attribute.String("user.id", userID),
	)
	defer span.End()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	if err := quota.Check(u); err != nil {
		metrics.RecordAnalysis(metrics.OutcomeQuotaExceeded)
		return nil, err
	}

	est, err := s.estimator.Estimate(ctx, description)
	if err != nil {
		metrics.RecordAnalysis(estimateOutcome(err))
		return nil, fmt.Errorf("analyze: %w", err)
	}

	cost := s.pricing.Cost(est.Usage.PromptTokens, est.Usage.CompletionTokens)

	m := &Meal{
		ID:          uuid.New().String(),
		UserID:      u.ID,
		Description: description,
		Calories:    est.Facts.Calories,
		Proteins:    est.Facts.Proteins,
		Carbs:       est.Facts.Carbs,
		Fats:        est.Facts.Fats,
		Fiber:       est.Facts.Fiber,
		Suggestions: Suggestions(est.Facts.Suggestions),
		ModelUsed:   est.Model,
		TokensUsed:  est.Usage.TotalTokens,
		CostUSD:     cost,
	}

	state, err := s.repo.CreateWithQuota(ctx, m)
	if err != nil {
		if errors.Is(err, core.ErrQuotaExceeded) {
			// a concurrent analysis took the last unit after the gate passed
			metrics.RecordAnalysis(metrics.OutcomeQuotaExceeded)
			core.AddSpanEvent(ctx, "quota.exhausted_after_estimate",
				attribute.Float64("llm.cost_usd", cost),
			)
			s.logger.Warn("quota exhausted after estimation",
				"user_id", u.ID,
				"cost_usd", cost,
			)
			return nil, err
		}
		metrics.RecordAnalysis(metrics.OutcomePersistenceErr)
		return nil, err
	}

	metrics.RecordAnalysis(metrics.OutcomeSuccess)
	metrics.RecordUsage(est.Usage.PromptTokens, est.Usage.CompletionTokens, cost)

	return &Analysis{
		Meal:           m,
		QuotaRemaining: state.Remaining(),
	}, nil
}

func (s *Service) History(
	ctx context.Context,
	userID string,
	params ListParams,
) ([]Meal, error) {
	if userID == "" {
		return nil, fmt.Errorf("history: %w", core.ErrUnauthorized)
	}

	params.Normalize()

	meals, err := s.repo.ListByUser(ctx, userID, params.Skip, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	return meals, nil
}

func estimateOutcome(err error) string {
	switch {
	case errors.Is(err, core.ErrMalformedUpstream):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeUpstreamError
	}
}
