package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/wizard"
)

type fieldsReq struct {
	Fields domain.Fields `json:"fields"`
}

func (a *App) GetWizard(w http.ResponseWriter, r *http.Request) {
	a.wizardOp(w, r, nil)
}

// DiscardWizard drops the wizard and the last result for the tool.
func (a *App) DiscardWizard(w http.ResponseWriter, r *http.Request) {
	_, tool, sess, err := a.toolSession(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	sess.Discard(tool.Key)
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) SetWizardFields(w http.ResponseWriter, r *http.Request) {
	var req fieldsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	if len(req.Fields) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "fields required")
		return
	}
	a.wizardOp(w, r, func(wz *wizard.Wizard) error { return wz.SetAll(req.Fields) })
}

func (a *App) AdvanceWizard(w http.ResponseWriter, r *http.Request) {
	a.wizardOp(w, r, func(wz *wizard.Wizard) error { return wz.Advance() })
}

func (a *App) RetreatWizard(w http.ResponseWriter, r *http.Request) {
	a.wizardOp(w, r, func(wz *wizard.Wizard) error {
		wz.Retreat()
		return nil
	})
}

func (a *App) ResetWizard(w http.ResponseWriter, r *http.Request) {
	a.wizardOp(w, r, func(wz *wizard.Wizard) error {
		wz.Reset()
		return nil
	})
}

func (a *App) wizardOp(w http.ResponseWriter, r *http.Request, fn func(*wizard.Wizard) error) {
	_, tool, sess, err := a.toolSession(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := sess.Wizard(tool, fn)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}
