// Package quota tracks trial attempts for guest sessions.
package quota

import (
	"context"
	"fmt"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

type Tracker struct {
	store domain.CounterStore
}

func NewTracker(store domain.CounterStore) *Tracker {
	return &Tracker{store: store}
}

// Attempts returns the attempts used by scope on tool.
func (t *Tracker) Attempts(ctx context.Context, scope string, tool domain.ToolDescriptor) (int, error) {
	n, err := t.store.Attempts(ctx, scope, tool.Key)
	if err != nil {
		return 0, fmt.Errorf("quota: read attempts: %w", err)
	}
	return n, nil
}

// Remaining never reports a negative number.
func (t *Tracker) Remaining(ctx context.Context, scope string, tool domain.ToolDescriptor) (int, error) {
	n, err := t.Attempts(ctx, scope, tool)
	if err != nil {
		return 0, err
	}
	return max(tool.GuestTrialLimit-n, 0), nil
}

// Consume records one attempt. The limit is checked by the store before the
// increment, so a counter already at the limit stays there.
func (t *Tracker) Consume(ctx context.Context, scope string, tool domain.ToolDescriptor) (int, error) {
	n, err := t.store.IncrementAttempts(ctx, scope, tool.Key, tool.GuestTrialLimit)
	if err != nil {
		return n, fmt.Errorf("quota: consume: %w", err)
	}
	return n, nil
}

// Record returns the counter as a GuestQuotaRecord.
func (t *Tracker) Record(ctx context.Context, scope string, tool domain.ToolDescriptor) (domain.GuestQuotaRecord, error) {
	n, err := t.Attempts(ctx, scope, tool)
	if err != nil {
		return domain.GuestQuotaRecord{}, err
	}
	return domain.GuestQuotaRecord{Scope: scope, ToolKey: tool.Key, AttemptsUsed: n}, nil
}
