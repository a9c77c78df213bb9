package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/infra"
	"github.com/apper-apps/tekxora-tools-chip/internal/sqlinline"
)

// LedgerRepositoryPG reads usage_records. Inserts go through AccountRepositoryPG.
type LedgerRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewLedgerRepository(sql infra.SQLExecutor) *LedgerRepositoryPG {
	return &LedgerRepositoryPG{sql: sql}
}

func (r *LedgerRepositoryPG) ListUsage(ctx context.Context, accountID string, limit int) ([]domain.UsageRecord, error) {
	if _, err := uuid.Parse(accountID); err != nil {
		return []domain.UsageRecord{}, nil
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListUsageByAccount, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.UsageRecord{}
	for rows.Next() {
		var (
			rec  domain.UsageRecord
			kind string
		)
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.ToolKey, &kind, &rec.CreditsCharged, &rec.Country, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Kind = domain.UsageKind(kind)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LedgerRepositoryPG) UsageStats(ctx context.Context) (domain.UsageStats, error) {
	var s domain.UsageStats
	err := r.sql.QueryRow(ctx, sqlinline.QUsageStats).Scan(&s.TotalUsage, &s.TotalSessions, &s.AvgCreditsPerSession, &s.ActiveAccounts)
	return s, err
}

var _ domain.LedgerStore = (*LedgerRepositoryPG)(nil)
