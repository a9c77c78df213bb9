package handlers

import (
	"net/http"
	"strconv"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	id, err := a.identity(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if id.IsGuest() {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	acct, err := a.Accounts.Get(r.Context(), id.AccountID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, acct)
}

func (a *App) MyUsage(w http.ResponseWriter, r *http.Request) {
	id, err := a.identity(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if id.IsGuest() {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	items, err := a.Ledger.History(r.Context(), id.AccountID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.UsageRecord{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// UsageStats aggregates the ledger across all accounts.
func (a *App) UsageStats(w http.ResponseWriter, r *http.Request) {
	id, err := a.identity(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if id.IsGuest() {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	if !id.IsAdmin {
		a.fail(w, r, domain.ErrForbidden)
		return
	}
	stats, err := a.Ledger.Stats(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, stats)
}
