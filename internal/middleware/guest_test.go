package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestGuestScopeIssuesAndReusesCookie(t *testing.T) {
	var seen string
	h := GuestScope("tk_guest", false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GuestScopeFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "tk_guest" {
		t.Fatalf("cookies = %v, want one tk_guest cookie", cookies)
	}
	if _, err := uuid.Parse(seen); err != nil || seen != cookies[0].Value {
		t.Fatalf("scope = %q, cookie = %q", seen, cookies[0].Value)
	}
	first := seen

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != first {
		t.Fatalf("scope changed from %q to %q", first, seen)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("existing cookie should not be reissued")
	}
}

func TestGuestScopeReplacesTamperedCookie(t *testing.T) {
	var seen string
	h := GuestScope("tk_guest", true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GuestScopeFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "tk_guest", Value: "../../etc"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("scope = %q, want a fresh uuid", seen)
	}
	if c := rec.Result().Cookies(); len(c) != 1 || !c[0].Secure {
		t.Fatalf("expected one secure cookie, got %v", c)
	}
}

func TestGuestScopeSkipsAuthenticated(t *testing.T) {
	var seen string
	h := GuestScope("tk_guest", false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GuestScopeFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "acct-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "" || len(rec.Result().Cookies()) != 0 {
		t.Fatalf("authenticated request got guest scope %q", seen)
	}
}
