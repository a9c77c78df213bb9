// Package account exposes credit balances of authenticated accounts.
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

type Accounts struct {
	store domain.AccountStore
	now   func() time.Time
}

func New(store domain.AccountStore) *Accounts {
	return &Accounts{store: store, now: time.Now}
}

// Create opens an account funded with the plan's signup credits.
func (a *Accounts) Create(ctx context.Context, email string, plan domain.AccountPlan, isAdmin bool) (*domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("account: email is required")
	}
	if plan.Credits() == 0 {
		return nil, domain.ErrUnsupportedPlan
	}
	now := a.now().UTC()
	return a.store.CreateAccount(ctx, &domain.Account{
		ID:        uuid.NewString(),
		Email:     email,
		Plan:      plan,
		Credits:   plan.Credits(),
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (a *Accounts) Get(ctx context.Context, id string) (*domain.Account, error) {
	return a.store.GetAccount(ctx, id)
}

func (a *Accounts) Balance(ctx context.Context, id string) (int64, error) {
	acct, err := a.store.GetAccount(ctx, id)
	if err != nil {
		return 0, err
	}
	return acct.Credits, nil
}

// Charge debits rec.CreditsCharged and appends rec to the ledger in one step.
// It returns the balance after the charge.
func (a *Accounts) Charge(ctx context.Context, rec domain.UsageRecord) (int64, error) {
	if rec.CreditsCharged <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return a.store.ChargeAndRecord(ctx, rec)
}

func (a *Accounts) Grant(ctx context.Context, id string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return a.store.Grant(ctx, id, amount)
}
