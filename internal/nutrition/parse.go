// AngelaMos | 2026
// parse.go

package nutrition

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nutriai/backend/internal/core"
)

// Facts is the nutritional breakdown of one meal as reported by the model.
type Facts struct {
	Calories    float64  `json:"calories"`
	Proteins    float64  `json:"proteins"`
	Carbs       float64  `json:"carbs"`
	Fats        float64  `json:"fats"`
	Fiber       float64  `json:"fiber"`
	Suggestions []string `json:"suggestions"`
}

// number accepts both JSON numbers and numeric strings; models are not
// consistent about quoting.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", string(b))
	}
	*n = number(v)
	return nil
}

type rawFacts struct {
	Calories    number   `json:"calories"`
	Proteins    number   `json:"proteins"`
	Carbs       number   `json:"carbs"`
	Fats        number   `json:"fats"`
	Fiber       number   `json:"fiber"`
	Suggestions []string `json:"suggestions"`
}

// ExtractJSON returns the span from the first '{' to the last '}' in text.
func ExtractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseFacts pulls the nutrition object out of a free-form model reply.
// Missing fields default to zero and missing suggestions to an empty list.
func ParseFacts(reply string) (*Facts, error) {
	obj, ok := ExtractJSON(reply)
	if !ok {
		return nil, fmt.Errorf("parse facts: no json object in reply: %w",
			core.ErrMalformedUpstream)
	}

	var raw rawFacts
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, fmt.Errorf("parse facts: %v: %w", err, core.ErrMalformedUpstream)
	}

	facts := &Facts{
		Calories:    float64(raw.Calories),
		Proteins:    float64(raw.Proteins),
		Carbs:       float64(raw.Carbs),
		Fats:        float64(raw.Fats),
		Fiber:       float64(raw.Fiber),
		Suggestions: raw.Suggestions,
	}
	if facts.Suggestions == nil {
		facts.Suggestions = []string{}
	}

	for name, v := range map[string]float64{
		"calories": facts.Calories,
		"proteins": facts.Proteins,
		"carbs":    facts.Carbs,
		"fats":     facts.Fats,
		"fiber":    facts.Fiber,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("parse facts: non-finite %s: %w",
				name, core.ErrMalformedUpstream)
		}
		if v < 0 {
			return nil, fmt.Errorf("parse facts: negative %s: %w",
				name, core.ErrMalformedUpstream)
		}
	}

	return facts, nil
}
