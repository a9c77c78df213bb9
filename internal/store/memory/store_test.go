package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

func seedAccount(t *testing.T, s *Store, id string, credits int64) {
	t.Helper()
	_, err := s.CreateAccount(context.Background(), &domain.Account{
		ID:      id,
		Email:   id + "@example.com",
		Plan:    domain.PlanBasic,
		Credits: credits,
	})
	require.NoError(t, err)
}

func TestCreateAccountRejectsDuplicates(t *testing.T) {
	s := New()
	seedAccount(t, s, "a1", 10)

	_, err := s.CreateAccount(context.Background(), &domain.Account{ID: "a2", Email: "A1@example.com"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateAccount))

	_, err = s.CreateAccount(context.Background(), &domain.Account{ID: "a1", Email: "other@example.com"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateAccount))
}

func TestGetAccountReturnsCopy(t *testing.T) {
	s := New()
	seedAccount(t, s, "a1", 10)

	acct, err := s.GetAccount(context.Background(), "a1")
	require.NoError(t, err)
	acct.Credits = 999

	again, err := s.GetAccount(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), again.Credits)

	_, err = s.GetAccount(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestChargeAndRecord(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedAccount(t, s, "a1", 45)

	_, err := s.ChargeAndRecord(ctx, domain.UsageRecord{ID: "u1", AccountID: "a1", ToolKey: "game", CreditsCharged: 60})
	assert.True(t, errors.Is(err, domain.ErrInsufficientCredits))
	history, err := s.ListUsage(ctx, "a1", 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	balance, err := s.ChargeAndRecord(ctx, domain.UsageRecord{ID: "u2", AccountID: "a1", ToolKey: "game", CreditsCharged: 40})
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)
	history, err = s.ListUsage(ctx, "a1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "u2", history[0].ID)

	_, err = s.ChargeAndRecord(ctx, domain.UsageRecord{AccountID: "missing", CreditsCharged: 1})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestConcurrentChargesNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedAccount(t, s, "a1", 100)

	var ok atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ChargeAndRecord(ctx, domain.UsageRecord{AccountID: "a1", CreditsCharged: 30}); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	acct, err := s.GetAccount(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), ok.Load())
	assert.Equal(t, int64(10), acct.Credits)
}

func TestListUsageNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedAccount(t, s, "a1", 1000)
	seedAccount(t, s, "a2", 1000)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"u1", "u2", "u3"} {
		_, err := s.ChargeAndRecord(ctx, domain.UsageRecord{ID: id, AccountID: "a1", CreditsCharged: 40, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}
	_, err := s.ChargeAndRecord(ctx, domain.UsageRecord{ID: "other", AccountID: "a2", CreditsCharged: 50, CreatedAt: base})
	require.NoError(t, err)

	history, err := s.ListUsage(ctx, "a1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "u3", history[0].ID)
	assert.Equal(t, "u2", history[1].ID)

	stats, err := s.UsageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.UsageStats{TotalUsage: 170, TotalSessions: 4, AvgCreditsPerSession: 43, ActiveAccounts: 2}, stats)
}

func TestIncrementAttemptsStopsAtLimit(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 1; i <= 3; i++ {
		n, err := s.IncrementAttempts(ctx, "g1", "game", 3)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	n, err := s.IncrementAttempts(ctx, "g1", "game", 3)
	assert.True(t, errors.Is(err, domain.ErrQuotaExceeded))
	assert.Equal(t, 3, n)

	other, err := s.Attempts(ctx, "g1", "website")
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestGrant(t *testing.T) {
	s := New()
	seedAccount(t, s, "a1", 5)
	balance, err := s.Grant(context.Background(), "a1", 300)
	require.NoError(t, err)
	assert.Equal(t, int64(305), balance)
}
