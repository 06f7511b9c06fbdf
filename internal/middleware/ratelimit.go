package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"studyblossom/internal/ratelimit"
)

// RateLimit counts requests per client IP in store and answers 429 once a
// client exceeds limit within window. Store failures let the request through.
func RateLimit(store ratelimit.Store, limit int, window time.Duration, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return rateLimit(store, limit, window, logger, time.Now)
}

func rateLimit(store ratelimit.Store, limit int, window time.Duration, logger *zerolog.Logger, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			ts := now()
			decision, err := store.Hit(r.Context(), ip, limit, window, ts)
			if err != nil {
				if logger != nil {
					logger.Warn().Err(err).Str("ip", ip).Msg("rate limit store unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				retry := int(math.Ceil(decision.RetryAfter(ts).Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				if logger != nil {
					logger.Info().Str("ip", ip).Str("path", r.URL.Path).Int("retry_after", retry).Msg("rate limited")
				}
				writeTooManyRequests(w, LocaleFromContext(r.Context()), retry)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooManyRequests(w http.ResponseWriter, locale string, retry int) {
	msg := "Demasiadas solicitudes. Intenta de nuevo en " + strconv.Itoa(retry) + " segundos."
	if locale == "en" {
		msg = "Too many requests. Try again in " + strconv.Itoa(retry) + " seconds."
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "rate_limited", "message": msg},
	})
}

// clientIPForRateLimit keys on the connection address only. Forwarding
// headers are client controlled; behind a trusted proxy chi's RealIP has
// already rewritten RemoteAddr.
func clientIPForRateLimit(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
