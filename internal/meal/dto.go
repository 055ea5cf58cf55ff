// AngelaMos | 2026
// dto.go

package meal

import (
	"time"
)

type AnalyzeRequest struct {
	Description string `json:"description" validate:"required,min=5,max=500"`
}

type NutritionData struct {
	Calories    float64  `json:"calories"`
	Proteins    float64  `json:"proteins"`
	Carbs       float64  `json:"carbs"`
	Fats        float64  `json:"fats"`
	Fiber       float64  `json:"fiber"`
	Suggestions []string `json:"suggestions"`
}

type Metadata struct {
	ModelUsed  string  `json:"model_used"`
	TokensUsed int     `json:"tokens_used"`
	CostUSD    float64 `json:"cost_usd"`
}

type AnalyzeResponse struct {
	MealID         string        `json:"meal_id"`
	Description    string        `json:"description"`
	Nutrition      NutritionData `json:"nutrition"`
	Metadata       Metadata      `json:"metadata"`
	QuotaRemaining int           `json:"quota_remaining"`
}

type MealResponse struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Description string   `json:"description"`
	Calories    float64  `json:"calories"`
	Proteins    float64  `json:"proteins"`
	Carbs       float64  `json:"carbs"`
	Fats        float64  `json:"fats"`
	Fiber       float64  `json:"fiber"`
	Suggestions []string `json:"suggestions"`
	ModelUsed   string   `json:"model_used"`
	TokensUsed  int      `json:"tokens_used"`
	CostUSD     float64  `json:"cost_usd"`
	CreatedAt   string   `json:"created_at"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type ListParams struct {
	Skip  int
	Limit int
}

func (p *ListParams) Normalize() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

func suggestionsOrEmpty(s Suggestions) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func ToAnalyzeResponse(a *Analysis) AnalyzeResponse {
	m := a.Meal
	return AnalyzeResponse{
		MealID:      m.ID,
		Description: m.Description,
		Nutrition: NutritionData{
			Calories:    m.Calories,
			Proteins:    m.Proteins,
			Carbs:       m.Carbs,
			Fats:        m.Fats,
			Fiber:       m.Fiber,
			Suggestions: suggestionsOrEmpty(m.Suggestions),
		},
		Metadata: Metadata{
			ModelUsed:  m.ModelUsed,
			TokensUsed: m.TokensUsed,
			CostUSD:    m.CostUSD,
		},
		QuotaRemaining: a.QuotaRemaining,
	}
}

func ToMealResponse(m *Meal) MealResponse {
	return MealResponse{
		ID:          m.ID,
		UserID:      m.UserID,
		Description: m.Description,
		Calories:    m.Calories,
		Proteins:    m.Proteins,
		Carbs:       m.Carbs,
		Fats:        m.Fats,
		Fiber:       m.Fiber,
		Suggestions: suggestionsOrEmpty(m.Suggestions),
		ModelUsed:   m.ModelUsed,
		TokensUsed:  m.TokensUsed,
		CostUSD:     m.CostUSD,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func ToMealResponseList(meals []Meal) []MealResponse {
	out := make([]MealResponse, 0, len(meals))
	for i := range meals {
		out = append(out, ToMealResponse(&meals[i]))
	}
	return out
}
