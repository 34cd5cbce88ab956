package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Guard keeps per-IP request rates inside a sliding window and caps
// POST body sizes so memory stays stable under spam.
type Guard struct {
	limit    int64
	window   time.Duration
	maxBody  int64
	trustXFF bool

	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewGuard(perMinute, maxBody int64) *Guard {
	if perMinute <= 0 {
		return nil
	}
	return &Guard{
		limit:    perMinute,
		window:   time.Minute,
		maxBody:  maxBody,
		trustXFF: true,
		hits:     make(map[string][]time.Time),
	}
}

func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := g.ClientIP(r)
		if !g.Allow(ip) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
			return
		}
		if g.maxBody > 0 && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
			r.Body = http.MaxBytesReader(w, r.Body, g.maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) Allow(ip string) bool {
	now := time.Now()
	cutoff := now.Add(-g.window)

	g.mu.Lock()
	defer g.mu.Unlock()

	recent := g.hits[ip][:0]
	for _, t := range g.hits[ip] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if int64(len(recent)) >= g.limit {
		g.hits[ip] = recent
		return false
	}
	g.hits[ip] = append(recent, now)
	return true
}

// Sweep drops idle IPs; run periodically from the server loop.
func (g *Guard) Sweep() {
	cutoff := time.Now().Add(-g.window)
	g.mu.Lock()
	defer g.mu.Unlock()
	for ip, times := range g.hits {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(g.hits, ip)
		}
	}
}

func (g *Guard) ClientIP(r *http.Request) string {
	if g.trustXFF {
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			if i := strings.IndexByte(xff, ','); i > 0 {
				return strings.TrimSpace(xff[:i])
			}
			return xff
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
