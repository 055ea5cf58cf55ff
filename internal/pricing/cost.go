// AngelaMos | 2026
// cost.go

package pricing

import (
	"math"

	"github.com/nutriai/backend/internal/config"
)

const tokensPerMillion = 1_000_000

// Calculator prices token usage at fixed per-million rates.
type Calculator struct {
	inputPerMillion  float64
	outputPerMillion float64
}

func NewCalculator(cfg config.PricingConfig) *Calculator {
	return &Calculator{
		inputPerMillion:  cfg.InputPerMillion,
		outputPerMillion: cfg.OutputPerMillion,
	}
}

// Cost returns the price of a completion, rounded to 6 decimal places.
func (c *Calculator) Cost(promptTokens, completionTokens int) float64 {
	input := float64(promptTokens) / tokensPerMillion * c.inputPerMillion
	output := float64(completionTokens) / tokensPerMillion * c.outputPerMillion
	return Round6(input + output)
}

func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
