package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

type recordingStore struct {
	limit int
}

func (s *recordingStore) ListUsage(_ context.Context, _ string, limit int) ([]domain.UsageRecord, error) {
	s.limit = limit
	return nil, nil
}

func (s *recordingStore) UsageStats(context.Context) (domain.UsageStats, error) {
	return domain.UsageStats{TotalSessions: 1}, nil
}

func TestNewRecord(t *testing.T) {
	l := New(&recordingStore{})
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	l.now = func() time.Time { return fixed }

	rec := l.NewRecord("a1", "game", domain.UsageRefine, 55, "ID")
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "a1", rec.AccountID)
	assert.Equal(t, domain.UsageRefine, rec.Kind)
	assert.Equal(t, int64(55), rec.CreditsCharged)
	assert.Equal(t, fixed.UTC(), rec.CreatedAt)

	other := l.NewRecord("a1", "game", domain.UsageRefine, 55, "ID")
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestHistoryClampsLimit(t *testing.T) {
	store := &recordingStore{}
	l := New(store)
	tests := []struct{ in, want int }{
		{0, DefaultHistoryLimit},
		{-3, DefaultHistoryLimit},
		{10, 10},
		{10_000, MaxHistoryLimit},
	}
	for _, tc := range tests {
		_, err := l.History(context.Background(), "a1", tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, store.limit, "limit %d", tc.in)
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, domain.UsageStats{}, Summarize(nil))

	stats := Summarize([]domain.UsageRecord{
		{AccountID: "a1", CreditsCharged: 40},
		{AccountID: "a1", CreditsCharged: 41},
		{AccountID: "a2", CreditsCharged: 60},
	})
	assert.Equal(t, domain.UsageStats{TotalUsage: 141, TotalSessions: 3, AvgCreditsPerSession: 47, ActiveAccounts: 2}, stats)
}
