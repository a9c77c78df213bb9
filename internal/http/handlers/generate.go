package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/metering"
	"github.com/apper-apps/tekxora-tools-chip/internal/middleware"
	"github.com/apper-apps/tekxora-tools-chip/internal/render"
	"github.com/apper-apps/tekxora-tools-chip/internal/wizard"
)

type refineReq struct {
	Selected []string `json:"selected"`
}

type resultDTO struct {
	*domain.GenerationResult
	PromptHTML string `json:"prompt_html"`
	Remaining  *int64 `json:"remaining,omitempty"`
}

type eligibilityDTO struct {
	Tool       string `json:"tool"`
	Identity   string `json:"identity"`
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason,omitempty"`
	Remaining  int64  `json:"remaining"`
	InProgress bool   `json:"in_progress"`
}

// Generate runs a first-pass generation from the session wizard. Body fields
// are checked on a draft copy and only saved to the session wizard once the
// generation succeeds.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	id, tool, sess, err := a.toolSession(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req fieldsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	var fields domain.Fields
	_, err = sess.Wizard(tool, func(wz *wizard.Wizard) error {
		draft := wz.Clone()
		if err := draft.SetAll(req.Fields); err != nil {
			return err
		}
		if err := draft.Ready(); err != nil {
			return err
		}
		fields = draft.Fields()
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	res, err := a.Coordinator.Generate(r.Context(), metering.Request{
		Identity: id,
		Tool:     tool,
		Fields:   fields,
		Locale:   middleware.LocaleFromContext(r.Context()),
		Country:  middleware.CountryFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if len(req.Fields) > 0 {
		if _, err := sess.Wizard(tool, func(wz *wizard.Wizard) error { return wz.SetAll(req.Fields) }); err != nil {
			a.Logger.Warn().Err(err).Str("tool", tool.Key).Msg("save wizard fields after generate failed")
		}
	}
	sess.SetResult(res)
	a.writeResult(w, r, id, tool, res, http.StatusCreated)
}

// Refine builds on the session's last result for the tool.
func (a *App) Refine(w http.ResponseWriter, r *http.Request) {
	id, tool, sess, err := a.toolSession(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req refineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	// Refine reports a missing prior after checking the selection.
	var prior *domain.GenerationResult
	if last, ok := sess.Result(tool.Key); ok {
		prior = last
	}
	res, err := a.Refiner.Refine(r.Context(), metering.RefineRequest{
		Identity: id,
		Tool:     tool,
		Prior:    prior,
		Selected: req.Selected,
		Locale:   middleware.LocaleFromContext(r.Context()),
		Country:  middleware.CountryFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	sess.SetResult(res)
	a.writeResult(w, r, id, tool, res, http.StatusCreated)
}

func (a *App) Result(w http.ResponseWriter, r *http.Request) {
	id, tool, sess, err := a.toolSession(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, ok := sess.Result(tool.Key)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "no result for this tool yet")
		return
	}
	a.writeResult(w, r, id, tool, res, http.StatusOK)
}

// Eligibility reports whether a generation may start without mutating any
// counter or balance.
func (a *App) Eligibility(w http.ResponseWriter, r *http.Request) {
	id, tool, _, err := a.toolSession(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	d, err := a.Guard.Check(r.Context(), id, tool)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := eligibilityDTO{
		Tool:       tool.Key,
		Identity:   string(id.Kind),
		Allowed:    d.Allowed,
		Remaining:  d.Remaining,
		InProgress: a.Coordinator.InFlight(id),
	}
	switch {
	case errors.Is(d.Reason, domain.ErrQuotaExceeded):
		out.Reason = "quota_exceeded"
	case errors.Is(d.Reason, domain.ErrInsufficientCredits):
		out.Reason = "insufficient_credits"
	}
	a.json(w, http.StatusOK, out)
}

func (a *App) writeResult(w http.ResponseWriter, r *http.Request, id domain.Identity, tool domain.ToolDescriptor, res *domain.GenerationResult, status int) {
	html, err := render.HTML(res.PromptText)
	if err != nil {
		a.Logger.Warn().Err(err).Str("result", res.ID).Msg("render prompt html failed")
	}
	out := resultDTO{GenerationResult: res, PromptHTML: html}
	if d, err := a.Guard.Check(r.Context(), id, tool); err == nil {
		out.Remaining = &d.Remaining
	}
	a.json(w, status, out)
}
