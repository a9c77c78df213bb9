package metering

import (
	"context"
	"fmt"
	"strings"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

type RefineRequest struct {
	Identity domain.Identity
	Tool     domain.ToolDescriptor
	Prior    *domain.GenerationResult
	Selected []string
	Locale   string
	Country  string
}

// Refiner produces a new result from a prior one plus selected enhancements.
// It goes through the same guard and settlement as a first generation.
type Refiner struct {
	coordinator *Coordinator
}

func NewRefiner(c *Coordinator) *Refiner {
	return &Refiner{coordinator: c}
}

// Refine rejects an empty selection before any eligibility check. The prior
// result is left unchanged.
func (r *Refiner) Refine(ctx context.Context, req RefineRequest) (*domain.GenerationResult, error) {
	selected := normalizeSelection(req.Selected)
	if len(selected) == 0 {
		return nil, &domain.ValidationError{Reason: domain.ErrNoSuggestionsSelected}
	}
	if req.Prior == nil || strings.TrimSpace(req.Prior.PromptText) == "" {
		return nil, &domain.ValidationError{Reason: domain.ErrNoPriorResult}
	}
	if req.Prior.ToolKey != "" && req.Prior.ToolKey != req.Tool.Key {
		return nil, &domain.ValidationError{Reason: fmt.Errorf("%w for tool %s", domain.ErrNoPriorResult, req.Tool.Key)}
	}
	return r.coordinator.run(ctx, cycle{
		identity: req.Identity,
		tool:     req.Tool,
		input: domain.GeneratorInput{
			PriorPrompt: req.Prior.PromptText,
			Selected:    selected,
			Locale:      req.Locale,
		},
		kind:     domain.UsageRefine,
		parentID: req.Prior.ID,
		country:  req.Country,
	})
}

// normalizeSelection trims entries and drops blanks and duplicates, keeping order.
func normalizeSelection(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
