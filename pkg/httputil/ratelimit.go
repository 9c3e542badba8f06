package httputil

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/sectorlock/pkg/errors"
)

// RateLimit returns middleware that admits at most rps requests per second
// with bursts of up to burst requests. A non-positive rps disables it.
// Rejected requests get 429 with a Retry-After header.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), max(burst, 1))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Reserve()
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				secs := int(delay.Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				WriteError(w, errors.New(errors.ErrCodeRateLimited, "too many requests, retry in %s", delay.Round(time.Millisecond)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
