package handlers

import (
	"net/http"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

type toolSummaryDTO struct {
	Key             string           `json:"key"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Cost            domain.CostRange `json:"cost"`
	GuestTrialLimit int              `json:"guest_trial_limit"`
	StepCount       int              `json:"step_count"`
}

func (a *App) ListTools(w http.ResponseWriter, r *http.Request) {
	tools := a.Catalog.List()
	items := make([]toolSummaryDTO, 0, len(tools))
	for _, t := range tools {
		items = append(items, toolSummaryDTO{
			Key:             t.Key,
			Name:            t.Name,
			Description:     t.Description,
			Cost:            t.Cost,
			GuestTrialLimit: t.GuestTrialLimit,
			StepCount:       t.StepCount(),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) GetTool(w http.ResponseWriter, r *http.Request) {
	tool, err := a.tool(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, tool)
}
