package domain

import "context"

// AccountStore persists accounts. ChargeAndRecord debits the balance and
// appends the usage record as one atomic unit; when the balance is lower than
// the record's charge nothing is applied and ErrInsufficientCredits is
// returned.
type AccountStore interface {
	CreateAccount(ctx context.Context, acct *Account) (*Account, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
	ChargeAndRecord(ctx context.Context, rec UsageRecord) (int64, error)
	Grant(ctx context.Context, accountID string, amount int64) (int64, error)
}

// LedgerStore reads the durable usage log. Appends happen through
// AccountStore.ChargeAndRecord.
type LedgerStore interface {
	ListUsage(ctx context.Context, accountID string, limit int) ([]UsageRecord, error)
	UsageStats(ctx context.Context) (UsageStats, error)
}

// CounterStore keeps guest attempt counters. IncrementAttempts must refuse to
// move a counter past limit and report ErrQuotaExceeded instead.
type CounterStore interface {
	Attempts(ctx context.Context, scope, toolKey string) (int, error)
	IncrementAttempts(ctx context.Context, scope, toolKey string, limit int) (int, error)
}
