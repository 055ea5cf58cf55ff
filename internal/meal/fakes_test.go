// AngelaMos | 2026
// fakes_test.go

package meal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/nutrition"
	"github.com/nutriai/backend/internal/user"
)

// memStore keeps users and meals in memory and applies the same
// conditional quota consumption as the postgres repository.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*user.User
	meals   []Meal
	failErr error
	clock   time.Time
}

func newMemStore(users ...*user.User) *memStore {
	s := &memStore{
		users: make(map[string]*user.User),
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memStore) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) CreateWithQuota(_ context.Context, m *Meal) (*user.QuotaState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, fmt.Errorf("create meal: %w: %w", core.ErrPersistence, s.failErr)
	}

	u := s.users[m.UserID]
	if u.DailyQuota != user.UnlimitedQuota && u.QuotaUsed >= u.DailyQuota {
		return nil, fmt.Errorf("consume quota: %w", core.ErrQuotaExceeded)
	}
	u.QuotaUsed++

	s.clock = s.clock.Add(time.Second)
	m.CreatedAt = s.clock
	s.meals = append(s.meals, *m)

	return &user.QuotaState{DailyQuota: u.DailyQuota, QuotaUsed: u.QuotaUsed}, nil
}

func (s *memStore) ListByUser(
	_ context.Context,
	userID string,
	offset, limit int,
) ([]Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var own []Meal
	for _, m := range s.meals {
		if m.UserID == userID {
			own = append(own, m)
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		return own[i].CreatedAt.After(own[j].CreatedAt)
	})

	if offset >= len(own) {
		return []Meal{}, nil
	}
	end := min(offset+limit, len(own))
	return own[offset:end], nil
}

type stubEstimator struct {
	mu    sync.Mutex
	est   *nutrition.Estimate
	err   error
	calls int
}

func (e *stubEstimator) Estimate(context.Context, string) (*nutrition.Estimate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.est, nil
}

type flatPricing struct{ perToken float64 }

func (p flatPricing) Cost(prompt, completion int) float64 {
	return float64(prompt+completion) * p.perToken
}

func sampleEstimate() *nutrition.Estimate {
	return &nutrition.Estimate{
		Facts: nutrition.Facts{
			Calories:    520,
			Proteins:    30,
			Carbs:       55,
			Fats:        18,
			Fiber:       7,
			Suggestions: []string{"add vegetables", "drink water"},
		},
		Usage: nutrition.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		Model: "openai/gpt-4o-mini",
	}
}

func freeUser(id string, used int) *user.User {
	return &user.User{
		ID:           id,
		Email:        id + "@example.com",
		DisplayName:  "Test",
		Subscription: user.TierFree,
		DailyQuota:   user.DefaultDailyQuota,
		QuotaUsed:    used,
	}
}

func newTestService(store *memStore, est *stubEstimator) *Service {
	return NewService(
		store,
		store,
		est,
		flatPricing{perToken: 0.000001},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}
