package domain

import (
	"context"
	"time"
)

// GenerationResult is never mutated after it is returned. Refinement creates
// a new result that points back at its parent.
type GenerationResult struct {
	ID             string    `json:"id"`
	ToolKey        string    `json:"tool"`
	PromptText     string    `json:"prompt"`
	Suggestions    []string  `json:"suggestions"`
	CreditsCharged int64     `json:"credits_charged"`
	ParentID       string    `json:"parent_id,omitempty"`
	Provider       string    `json:"provider,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// GeneratorInput carries either wizard fields (first pass) or a prior prompt
// with the selected enhancements (refinement).
type GeneratorInput struct {
	Fields      Fields
	PriorPrompt string
	Selected    []string
	Locale      string
}

func (in GeneratorInput) IsRefinement() bool {
	return len(in.Selected) > 0
}

type GeneratorOutput struct {
	PromptText     string
	Suggestions    []string
	CreditsCharged int64
	Provider       string
}

// Generator produces prompt text and picks the credit cost within the tool's
// cost range. Implementations may fail transiently.
type Generator interface {
	Generate(ctx context.Context, tool ToolDescriptor, in GeneratorInput) (*GeneratorOutput, error)
}
