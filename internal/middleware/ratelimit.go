package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type window struct {
	count int
	until time.Time
}

// Limiter counts requests per caller in fixed windows. Authenticated callers
// are keyed by account, everyone else by client IP.
type Limiter struct {
	limit int
	per   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

func NewLimiter(limit int, per time.Duration) *Limiter {
	if per <= 0 {
		per = time.Minute
	}
	return &Limiter{limit: limit, per: per, now: time.Now, windows: make(map[string]*window)}
}

// RateLimit allows limit requests per caller in each window. A limit of zero
// or less disables it.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return NewLimiter(limit, per).Middleware
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok, retry := l.allow(rateLimitKey(r)); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many generation requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow records a request for key and reports how long to wait when the
// window is full.
func (l *Limiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) > l.per {
		for k, win := range l.windows {
			if !now.Before(win.until) {
				delete(l.windows, k)
			}
		}
		l.lastSweep = now
	}
	win, ok := l.windows[key]
	if !ok || !now.Before(win.until) {
		win = &window{until: now.Add(l.per)}
		l.windows[key] = win
	}
	if win.count >= l.limit {
		return false, win.until.Sub(now)
	}
	win.count++
	return true, 0
}

func rateLimitKey(r *http.Request) string {
	if id := UserIDFromContext(r.Context()); id != "" {
		return "account:" + id
	}
	return "ip:" + clientIP(r)
}

// clientIP prefers the first valid X-Forwarded-For entry, then RemoteAddr.
func clientIP(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(part); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
