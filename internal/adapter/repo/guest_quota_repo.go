package repo

import (
	"context"
	"fmt"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/infra"
	"github.com/apper-apps/tekxora-tools-chip/internal/sqlinline"
)

// GuestQuotaRepositoryPG keeps guest trial counters in guest_quota.
type GuestQuotaRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewGuestQuotaRepository(sql infra.SQLExecutor) *GuestQuotaRepositoryPG {
	return &GuestQuotaRepositoryPG{sql: sql}
}

func (r *GuestQuotaRepositoryPG) Attempts(ctx context.Context, scope, toolKey string) (int, error) {
	var n int
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectGuestAttempts, scope, toolKey).Scan(&n); err != nil {
		if infra.IsNoRows(err) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// IncrementAttempts relies on the conditional upsert: no returned row means
// the counter is already at limit.
func (r *GuestQuotaRepositoryPG) IncrementAttempts(ctx context.Context, scope, toolKey string, limit int) (int, error) {
	var n int
	err := r.sql.QueryRow(ctx, sqlinline.QIncrementGuestAttempts, scope, toolKey, limit).Scan(&n)
	if err == nil {
		return n, nil
	}
	if !infra.IsNoRows(err) {
		return 0, err
	}
	used, err := r.Attempts(ctx, scope, toolKey)
	if err != nil {
		return 0, fmt.Errorf("read attempts after refused increment: %w", err)
	}
	return used, domain.ErrQuotaExceeded
}

var _ domain.CounterStore = (*GuestQuotaRepositoryPG)(nil)
