package handlers

import (
	"context"
	"net/http"
	"time"
)

const healthPingTimeout = 2 * time.Second

// Runtime describes the backends the service was started with.
type Runtime struct {
	Store    string
	Provider string
	// Ping checks the store. Nil for stores that cannot fail.
	Ping func(ctx context.Context) error
}

type healthDTO struct {
	Status   string `json:"status"`
	Store    string `json:"store,omitempty"`
	Provider string `json:"provider,omitempty"`
	Tools    int    `json:"tools"`
	Sessions int    `json:"sessions"`
}

// Health reports the store driver and prompt provider, and answers 503 when
// the store does not respond.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	out := healthDTO{
		Status:   "ok",
		Store:    a.Runtime.Store,
		Provider: a.Runtime.Provider,
		Tools:    len(a.Catalog.List()),
		Sessions: a.Sessions.Len(),
	}
	if a.Runtime.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := a.Runtime.Ping(ctx); err != nil {
			a.Logger.Warn().Err(err).Str("store", a.Runtime.Store).Msg("store ping failed")
			out.Status = "degraded"
			a.json(w, http.StatusServiceUnavailable, out)
			return
		}
	}
	a.json(w, http.StatusOK, out)
}
