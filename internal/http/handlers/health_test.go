package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/apper-apps/tekxora-tools-chip/internal/catalog"
	"github.com/apper-apps/tekxora-tools-chip/internal/session"
)

func TestHealthReportsRuntime(t *testing.T) {
	cat, err := catalog.New(catalog.Defaults()...)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cases := []struct {
		name   string
		ping   func(context.Context) error
		status int
		want   string
	}{
		{name: "no_ping", status: http.StatusOK, want: "ok"},
		{name: "ping_ok", ping: func(context.Context) error { return nil }, status: http.StatusOK, want: "ok"},
		{name: "ping_fails", ping: func(context.Context) error { return errors.New("pool closed") }, status: http.StatusServiceUnavailable, want: "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := &App{
				Catalog:  cat,
				Sessions: session.NewStore(time.Hour),
				Runtime:  Runtime{Store: "postgres", Provider: "openai", Ping: tc.ping},
				Logger:   zerolog.Nop(),
			}
			app.Sessions.Get("guest:abc")

			rec := httptest.NewRecorder()
			app.Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			var body healthDTO
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			want := healthDTO{Status: tc.want, Store: "postgres", Provider: "openai", Tools: 2, Sessions: 1}
			if body != want {
				t.Fatalf("body = %+v, want %+v", body, want)
			}
		})
	}
}
