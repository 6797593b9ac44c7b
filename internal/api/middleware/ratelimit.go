package middleware

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/response"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
)

// RateLimit allows perMinute requests a minute with bursts of up to burst,
// shared by every caller of the wrapped routes. A non-positive perMinute
// disables limiting.
func RateLimit(perMinute, burst int) func(http.Handler) http.Handler {
	every := rate.Inf
	if perMinute > 0 {
		every = rate.Every(time.Minute / time.Duration(perMinute))
	}
	limiter := rate.NewLimiter(every, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log := logger.FromContext(r.Context())
				log.Warn().Str("path", r.URL.Path).Msg("rate limit exceeded")
				response.RespondError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
