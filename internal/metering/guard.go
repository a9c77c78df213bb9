// Package metering gates, runs and settles credit-metered generations.
package metering

import (
	"context"

	"github.com/apper-apps/tekxora-tools-chip/internal/account"
	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/quota"
)

// Decision is the outcome of an eligibility check. Remaining is the number of
// guest attempts left or the account balance.
type Decision struct {
	Allowed   bool
	Reason    error
	Remaining int64
}

// Err returns nil for an allowed decision and the denial reason otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Reason
}

// Guard decides whether a generation may start. It never mutates state, so it
// is safe to call purely for display.
type Guard struct {
	quota    *quota.Tracker
	accounts *account.Accounts
}

func NewGuard(q *quota.Tracker, a *account.Accounts) *Guard {
	return &Guard{quota: q, accounts: a}
}

// Check returns a denial inside Decision. The error result is reserved for
// store failures.
func (g *Guard) Check(ctx context.Context, id domain.Identity, tool domain.ToolDescriptor) (Decision, error) {
	if id.IsGuest() {
		used, err := g.quota.Attempts(ctx, id.GuestScope, tool)
		if err != nil {
			return Decision{}, err
		}
		remaining := int64(max(tool.GuestTrialLimit-used, 0))
		if used >= tool.GuestTrialLimit {
			return Decision{Reason: domain.ErrQuotaExceeded, Remaining: remaining}, nil
		}
		return Decision{Allowed: true, Remaining: remaining}, nil
	}

	balance, err := g.accounts.Balance(ctx, id.AccountID)
	if err != nil {
		return Decision{}, err
	}
	if balance < tool.Cost.Min {
		return Decision{Reason: domain.ErrInsufficientCredits, Remaining: balance}, nil
	}
	return Decision{Allowed: true, Remaining: balance}, nil
}
