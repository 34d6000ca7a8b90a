package server

import (
	"net"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware limits requests per client IP. Limiters live in an
// expiring LRU so idle clients are forgotten after ttl.
func RateLimitMiddleware(limit float64, burst, cacheSize int, ttl time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	visitors := lru.NewLRU[string, *rate.Limiter](cacheSize, nil, ttl)

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			lim, found := visitors.Get(host)
			if !found {
				lim = rate.NewLimiter(rate.Limit(limit), burst)
				visitors.Add(host, lim)
			}
			if !lim.Allow() {
				writeJSON(w, http.StatusTooManyRequests, errorPayload{Err: "Too Many Requests", Message: "Rate limit exceeded, slow down."})
				return
			}
			next(w, r)
		}
	}
}
