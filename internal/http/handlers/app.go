package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/apper-apps/tekxora-tools-chip/internal/account"
	"github.com/apper-apps/tekxora-tools-chip/internal/catalog"
	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/ledger"
	"github.com/apper-apps/tekxora-tools-chip/internal/metering"
	"github.com/apper-apps/tekxora-tools-chip/internal/middleware"
	"github.com/apper-apps/tekxora-tools-chip/internal/session"
)

type App struct {
	Catalog     *catalog.Catalog
	Sessions    *session.Store
	Guard       *metering.Guard
	Coordinator *metering.Coordinator
	Refiner     *metering.Refiner
	Accounts    *account.Accounts
	Ledger      *ledger.Ledger
	Runtime     Runtime
	Logger      zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
}

// fail maps domain errors onto HTTP statuses. Anything unrecognised is
// logged and reported as an internal error.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		body := map[string]any{"code": "validation_failed", "message": err.Error()}
		if ve.Step > 0 {
			body["step"] = ve.Step
		}
		if len(ve.MissingFields) > 0 {
			body["missing_fields"] = ve.MissingFields
		}
		a.json(w, http.StatusUnprocessableEntity, map[string]any{"error": body})
	case errors.Is(err, domain.ErrUnknownField):
		a.error(w, http.StatusUnprocessableEntity, "unknown_field", err.Error())
	case domain.IsDenial(err):
		a.deny(w, err)
	case errors.Is(err, domain.ErrGenerationInProgress):
		a.error(w, http.StatusConflict, "generation_in_progress", "a generation is already running for this session")
	case domain.IsRetryable(err):
		a.json(w, http.StatusBadGateway, map[string]any{"error": map[string]any{
			"code":      "generation_failed",
			"message":   "prompt generation failed, please retry",
			"retryable": true,
		}})
	case errors.Is(err, domain.ErrUnknownTool):
		a.error(w, http.StatusNotFound, "unknown_tool", "tool not found")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "admin access required")
	default:
		a.Logger.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// deny reports an eligibility denial. Nothing was consumed.
func (a *App) deny(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrQuotaExceeded) {
		a.error(w, http.StatusForbidden, "quota_exceeded", "guest trial limit reached, sign up to continue")
		return
	}
	a.error(w, http.StatusPaymentRequired, "insufficient_credits", "not enough credits for this tool")
}

// identity resolves the caller. A token for an account that no longer
// exists is treated as unauthenticated.
func (a *App) identity(r *http.Request) (domain.Identity, error) {
	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		acct, err := a.Accounts.Get(r.Context(), userID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Identity{}, domain.ErrUnauthorized
		}
		if err != nil {
			return domain.Identity{}, err
		}
		return domain.AccountIdentity(acct.ID, acct.IsAdmin), nil
	}
	if scope := middleware.GuestScopeFromContext(r.Context()); scope != "" {
		return domain.Guest(scope), nil
	}
	return domain.Identity{}, domain.ErrUnauthorized
}

func (a *App) tool(r *http.Request) (domain.ToolDescriptor, error) {
	return a.Catalog.Get(chi.URLParam(r, "tool"))
}

// toolSession resolves identity, tool and session in one go for the
// tool-scoped routes.
func (a *App) toolSession(r *http.Request) (domain.Identity, domain.ToolDescriptor, *session.Session, error) {
	tool, err := a.tool(r)
	if err != nil {
		return domain.Identity{}, domain.ToolDescriptor{}, nil, err
	}
	id, err := a.identity(r)
	if err != nil {
		return domain.Identity{}, domain.ToolDescriptor{}, nil, err
	}
	return id, tool, a.Sessions.Get(id.Key()), nil
}
