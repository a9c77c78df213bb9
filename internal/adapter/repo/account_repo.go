package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/infra"
	"github.com/apper-apps/tekxora-tools-chip/internal/sqlinline"
)

// AccountRepositoryPG implements domain.AccountStore backed by PostgreSQL.
type AccountRepositoryPG struct {
	sql infra.TxExecutor
}

// NewAccountRepository creates a new AccountRepositoryPG.
func NewAccountRepository(sql infra.TxExecutor) *AccountRepositoryPG {
	return &AccountRepositoryPG{sql: sql}
}

func (r *AccountRepositoryPG) CreateAccount(ctx context.Context, acct *domain.Account) (*domain.Account, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertAccount,
		acct.ID,
		acct.Email,
		string(acct.Plan),
		acct.Credits,
		acct.IsAdmin,
	)
	out, err := scanAccount(row)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, err
	}
	return out, nil
}

// GetAccount fetches an account by UUID. Malformed ids are reported as not found.
func (r *AccountRepositoryPG) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return scanAccount(r.sql.QueryRow(ctx, sqlinline.QSelectAccountByID, id))
}

// ChargeAndRecord runs the conditional debit and the ledger insert in one
// transaction. A debit that matches no row means the balance is short or the
// account is missing; the transaction is rolled back in both cases.
func (r *AccountRepositoryPG) ChargeAndRecord(ctx context.Context, rec domain.UsageRecord) (int64, error) {
	if _, err := uuid.Parse(rec.AccountID); err != nil {
		return 0, domain.ErrNotFound
	}
	var balance int64
	err := r.sql.InTx(ctx, func(tx infra.SQLExecutor) error {
		err := tx.QueryRow(ctx, sqlinline.QDebitAccount, rec.AccountID, rec.CreditsCharged).Scan(&balance)
		if infra.IsNoRows(err) {
			if err := tx.QueryRow(ctx, sqlinline.QSelectAccountCredits, rec.AccountID).Scan(&balance); err != nil {
				if infra.IsNoRows(err) {
					return domain.ErrNotFound
				}
				return err
			}
			return domain.ErrInsufficientCredits
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, sqlinline.QInsertUsageRecord,
			rec.ID,
			rec.AccountID,
			rec.ToolKey,
			string(rec.Kind),
			rec.CreditsCharged,
			rec.Country,
			rec.CreatedAt,
		)
		return err
	})
	if err != nil {
		return balance, err
	}
	return balance, nil
}

func (r *AccountRepositoryPG) Grant(ctx context.Context, accountID string, amount int64) (int64, error) {
	if _, err := uuid.Parse(accountID); err != nil {
		return 0, domain.ErrNotFound
	}
	var balance int64
	if err := r.sql.QueryRow(ctx, sqlinline.QGrantCredits, accountID, amount).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a    domain.Account
		plan string
	)
	if err := row.Scan(&a.ID, &a.Email, &plan, &a.Credits, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.Plan = domain.AccountPlan(plan)
	return &a, nil
}

var _ domain.AccountStore = (*AccountRepositoryPG)(nil)
