// Package ledger builds and reads usage records for charged generations.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

type Ledger struct {
	store domain.LedgerStore
	now   func() time.Time
}

func New(store domain.LedgerStore) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// NewRecord stamps a usage record with a fresh id and the current time.
func (l *Ledger) NewRecord(accountID, toolKey string, kind domain.UsageKind, credits int64, country string) domain.UsageRecord {
	return domain.UsageRecord{
		ID:             uuid.NewString(),
		AccountID:      accountID,
		ToolKey:        toolKey,
		Kind:           kind,
		CreditsCharged: credits,
		Country:        country,
		CreatedAt:      l.now().UTC(),
	}
}

// History lists the newest records of an account first.
func (l *Ledger) History(ctx context.Context, accountID string, limit int) ([]domain.UsageRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return l.store.ListUsage(ctx, accountID, limit)
}

func (l *Ledger) Stats(ctx context.Context) (domain.UsageStats, error) {
	return l.store.UsageStats(ctx)
}

// Summarize derives aggregate stats from records. Stores without a native
// aggregate query use it directly.
func Summarize(records []domain.UsageRecord) domain.UsageStats {
	var stats domain.UsageStats
	accounts := map[string]struct{}{}
	for _, rec := range records {
		stats.TotalUsage += rec.CreditsCharged
		stats.TotalSessions++
		accounts[rec.AccountID] = struct{}{}
	}
	stats.ActiveAccounts = int64(len(accounts))
	if stats.TotalSessions > 0 {
		stats.AvgCreditsPerSession = roundDiv(stats.TotalUsage, stats.TotalSessions)
	}
	return stats
}

func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}
