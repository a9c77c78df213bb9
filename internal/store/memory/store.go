// Package memory implements the account, ledger and guest counter stores in
// process memory. It backs development mode and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/ledger"
)

type Store struct {
	mu sync.RWMutex

	accounts map[string]*domain.Account
	byEmail  map[string]string

	usage []domain.UsageRecord

	counters map[string]int
}

func New() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		byEmail:  make(map[string]string),
		usage:    make([]domain.UsageRecord, 0),
		counters: make(map[string]int),
	}
}

// Account store

func (s *Store) CreateAccount(_ context.Context, acct *domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(acct.Email)
	if _, exists := s.accounts[acct.ID]; exists {
		return nil, domain.ErrDuplicateAccount
	}
	if _, exists := s.byEmail[email]; exists {
		return nil, domain.ErrDuplicateAccount
	}
	cp := *acct
	s.accounts[cp.ID] = &cp
	s.byEmail[email] = cp.ID
	out := cp
	return &out, nil
}

func (s *Store) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *acct
	return &out, nil
}

func (s *Store) ChargeAndRecord(_ context.Context, rec domain.UsageRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[rec.AccountID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if acct.Credits < rec.CreditsCharged {
		return acct.Credits, domain.ErrInsufficientCredits
	}
	acct.Credits -= rec.CreditsCharged
	acct.UpdatedAt = time.Now().UTC()
	s.usage = append(s.usage, rec)
	return acct.Credits, nil
}

func (s *Store) Grant(_ context.Context, accountID string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	acct.Credits += amount
	acct.UpdatedAt = time.Now().UTC()
	return acct.Credits, nil
}

// Ledger store

func (s *Store) ListUsage(_ context.Context, accountID string, limit int) ([]domain.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.UsageRecord
	for i := len(s.usage) - 1; i >= 0; i-- {
		if rec := s.usage[i]; rec.AccountID == accountID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UsageStats(_ context.Context) (domain.UsageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.Summarize(s.usage), nil
}

// Counter store

func (s *Store) Attempts(_ context.Context, scope, toolKey string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[counterKey(scope, toolKey)], nil
}

func (s *Store) IncrementAttempts(_ context.Context, scope, toolKey string, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := counterKey(scope, toolKey)
	n := s.counters[key]
	if n >= limit {
		return n, domain.ErrQuotaExceeded
	}
	n++
	s.counters[key] = n
	return n, nil
}

func counterKey(scope, toolKey string) string {
	return scope + "\x00" + toolKey
}

var (
	_ domain.AccountStore = (*Store)(nil)
	_ domain.LedgerStore  = (*Store)(nil)
	_ domain.CounterStore = (*Store)(nil)
)
