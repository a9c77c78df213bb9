package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

func TestFailMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &domain.ValidationError{Step: 2, MissingFields: []string{"pages"}}, http.StatusUnprocessableEntity, "validation_failed"},
		{"no_selection", &domain.ValidationError{Reason: domain.ErrNoSuggestionsSelected}, http.StatusUnprocessableEntity, "validation_failed"},
		{"unknown_field", fmt.Errorf("%w: budget", domain.ErrUnknownField), http.StatusUnprocessableEntity, "unknown_field"},
		{"quota", domain.ErrQuotaExceeded, http.StatusForbidden, "quota_exceeded"},
		{"credits", domain.ErrInsufficientCredits, http.StatusPaymentRequired, "insufficient_credits"},
		{"in_progress", domain.ErrGenerationInProgress, http.StatusConflict, "generation_in_progress"},
		{"failure", fmt.Errorf("%w: upstream 500", domain.ErrGenerationFailure), http.StatusBadGateway, "generation_failed"},
		{"unknown_tool", fmt.Errorf("%w: music", domain.ErrUnknownTool), http.StatusNotFound, "unknown_tool"},
		{"not_found", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "internal"},
	}
	app := &App{Logger: zerolog.Nop()}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.fail(rec, httptest.NewRequest(http.MethodPost, "/v1/tools/game/generate", nil), tc.err)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			var body struct {
				Error map[string]any `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error["code"] != tc.code {
				t.Fatalf("code = %v, want %s", body.Error["code"], tc.code)
			}
		})
	}
}

func TestFailIncludesMissingFields(t *testing.T) {
	app := &App{Logger: zerolog.Nop()}
	rec := httptest.NewRecorder()
	app.fail(rec, httptest.NewRequest(http.MethodPost, "/", nil), &domain.ValidationError{Step: 3, MissingFields: []string{"pages"}})

	var body struct {
		Error struct {
			Step          int      `json:"step"`
			MissingFields []string `json:"missing_fields"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Step != 3 || len(body.Error.MissingFields) != 1 || body.Error.MissingFields[0] != "pages" {
		t.Fatalf("error body = %+v", body.Error)
	}
}
