// Package prompt implements the prompt generators behind the metering
// coordinator: a local template builder and LLM-backed generators that fall
// back to it.
package prompt

import (
	"math/rand/v2"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

const (
	templateProviderName = "template"
	geminiProviderName   = "gemini"
	openAIProviderName   = "openai"
)

// CostPicker chooses the credits charged for one generation.
type CostPicker func(r domain.CostRange) int64

// RandomCost draws uniformly from the inclusive range.
func RandomCost(r domain.CostRange) int64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rand.Int64N(r.Max-r.Min+1)
}

// FixedCost always charges v, clamped into the tool's range.
func FixedCost(v int64) CostPicker {
	return func(r domain.CostRange) int64 {
		return min(max(v, r.Min), r.Max)
	}
}

func costPicker(p CostPicker) CostPicker {
	if p == nil {
		return RandomCost
	}
	return p
}
