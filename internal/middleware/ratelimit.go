package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP with a token bucket each.
type RateLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
	logger   *slog.Logger
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst. Idle buckets are dropped every cleanup interval until ctx ends.
func NewRateLimiter(ctx context.Context, rps float64, burst int, cleanup time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		rps:    rate.Limit(rps),
		burst:  burst,
		logger: logger.With("component", "ratelimit"),
	}
	if cleanup > 0 {
		go rl.cleanupLimiters(ctx, cleanup)
	}
	return rl
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	limiter, _ := rl.limiters.LoadOrStore(ip, rate.NewLimiter(rl.rps, rl.burst))
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiter) cleanupLimiters(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.limiters.Range(func(key, value any) bool {
				// A full bucket means the client has been idle
				if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
					rl.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

// clientIP uses RemoteAddr, which chi's RealIP middleware rewrites from
// X-Forwarded-For and X-Real-IP when it runs first.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.getLimiter(ip).Allow() {
			rl.logger.Warn("rate limit exceeded", "ip", ip)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			if err := json.NewEncoder(w).Encode(map[string]any{"cause": nil, "message": "Rate limit exceeded"}); err != nil {
				rl.logger.Debug("failed to write response", "error", err)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}
