package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(limit int) (*Limiter, *fakeClock, http.Handler) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(limit, time.Minute)
	l.now = clock.now
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	return l, clock, h
}

func generateRequest(remote, forwarded, userID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/tools/game/generate", nil)
	req.RemoteAddr = remote
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	if userID != "" {
		req = req.WithContext(ContextWithUserID(req.Context(), userID))
	}
	return req
}

func TestLimiterRejectsWithRetryAfter(t *testing.T) {
	_, clock, h := newTestLimiter(2)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, generateRequest("198.51.100.1:1000", "", ""))
		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: code = %d", i+1, rec.Code)
		}
	}

	clock.t = clock.t.Add(20*time.Second + 500*time.Millisecond)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, generateRequest("198.51.100.1:2000", "", ""))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: code = %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "40" {
		t.Fatalf("Retry-After = %q, want 40", got)
	}
	var body struct {
		Error map[string]string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error["code"] != "rate_limited" {
		t.Fatalf("body = %+v", body)
	}

	// the window resets once it has elapsed
	clock.t = clock.t.Add(40 * time.Second)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, generateRequest("198.51.100.1:3000", "", ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("after window: code = %d", rec.Code)
	}
}

func TestLimiterKeysCallers(t *testing.T) {
	_, _, h := newTestLimiter(1)

	// each row is a distinct caller and gets its own first request
	callers := []*http.Request{
		generateRequest("198.51.100.1:1", "", ""),
		generateRequest("198.51.100.1:1", " 203.0.113.7 , 198.51.100.2", ""),
		generateRequest("198.51.100.1:1", "", "acct-1"),
		generateRequest("198.51.100.1:1", "", "acct-2"),
		generateRequest("[2001:db8::2]:443", "not-an-ip", ""),
	}
	for i, req := range callers {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("caller %d: code = %d", i, rec.Code)
		}
	}

	// an account is limited wherever it connects from
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, generateRequest("192.0.2.50:9", "", "acct-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("acct-1 from new ip: code = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, generateRequest("198.51.100.9:1", "203.0.113.7", ""))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("forwarded ip again: code = %d", rec.Code)
	}
}

func TestLimiterSweepsExpiredWindows(t *testing.T) {
	l, clock, h := newTestLimiter(5)
	for _, remote := range []string{"198.51.100.1:1", "198.51.100.2:1", "198.51.100.3:1"} {
		h.ServeHTTP(httptest.NewRecorder(), generateRequest(remote, "", ""))
	}
	if len(l.windows) != 3 {
		t.Fatalf("windows = %d, want 3", len(l.windows))
	}
	clock.t = clock.t.Add(2 * time.Minute)
	h.ServeHTTP(httptest.NewRecorder(), generateRequest("198.51.100.4:1", "", ""))
	if len(l.windows) != 1 {
		t.Fatalf("windows after sweep = %d, want 1", len(l.windows))
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(0, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/tools/game/refine", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: code = %d", i, rec.Code)
		}
	}
}
