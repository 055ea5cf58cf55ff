// AngelaMos | 2026
// entity.go

package meal

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Meal is immutable once stored; no update path exists.
type Meal struct {
	ID          string      `db:"id"`
	UserID      string      `db:"user_id"`
	Description string      `db:"description"`
	Calories    float64     `db:"calories"`
	Proteins    float64     `db:"proteins"`
	Carbs       float64     `db:"carbs"`
	Fats        float64     `db:"fats"`
	Fiber       float64     `db:"fiber"`
	Suggestions Suggestions `db:"suggestions"`
	ModelUsed   string      `db:"model_used"`
	TokensUsed  int         `db:"tokens_used"`
	CostUSD     float64     `db:"cost_usd"`
	CreatedAt   time.Time   `db:"created_at"`
}

const (
	MinDescriptionLen = 5
	MaxDescriptionLen = 500
)

// Suggestions is stored as a JSONB array, preserving order.
type Suggestions []string

func (s Suggestions) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("encode suggestions: %w", err)
	}
	return string(b), nil
}

func (s *Suggestions) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Suggestions{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan suggestions: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan suggestions: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*s = out
	return nil
}
