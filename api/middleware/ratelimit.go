package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
)

// getRateLimitForEndpoint determines which rate limit to apply based on config
func (mw *Middleware) getRateLimitForEndpoint(path string) (string, int, time.Duration) {
	switch {
	case strings.HasPrefix(path, "/auth/login"), strings.HasPrefix(path, "/auth/logout"):
		return "auth", mw.cfg.RateLimit.AuthLimit, mw.cfg.RateLimit.AuthWindow
	case strings.HasPrefix(path, "/products/"):
		// typing sends a request per keystroke
		return "search", mw.cfg.RateLimit.SearchLimit, mw.cfg.RateLimit.SearchWindow
	default:
		return "general", mw.cfg.RateLimit.GeneralLimit, mw.cfg.RateLimit.GeneralWindow
	}
}

// getClientIP returns the address set by chi's RealIP middleware
func (mw *Middleware) getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (mw *Middleware) isWhitelisted(ip string) bool {
	for _, allowed := range mw.cfg.RateLimit.WhitelistedIPs {
		if allowed == ip {
			return true
		}
	}
	return false
}

// RateLimitMiddleware implements fixed window rate limiting per client and
// endpoint group. Cache errors fail open.
func (mw *Middleware) RateLimitMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mw.cfg.RateLimit.Enabled || r.URL.Path == "/" ||
				strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/events" {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := mw.getClientIP(r)
			if mw.isWhitelisted(clientIP) {
				next.ServeHTTP(w, r)
				return
			}

			group, limit, window := mw.getRateLimitForEndpoint(r.URL.Path)

			count, err := mw.cacheService.IncrementRateLimit(r.Context(), clientIP, group, window)
			if err != nil {
				mw.logger.Warn("Rate limit cache error, allowing request",
					gecho.Field("error", err),
					gecho.Field("ip", clientIP),
					gecho.Field("group", group),
				)
				next.ServeHTTP(w, r)
				return
			}

			remaining := max(0, limit-count)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(window).Unix()))

			if count > limit {
				mw.logger.Warn("Rate limit exceeded",
					gecho.Field("ip", clientIP),
					gecho.Field("group", group),
					gecho.Field("count", count),
					gecho.Field("limit", limit),
				)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
				gecho.TooManyRequests(w,
					gecho.WithMessage("Rate limit exceeded. Please try again later."),
					gecho.WithData(map[string]any{
						"limit":       limit,
						"window":      window.String(),
						"retry_after": int(window.Seconds()),
					}),
					gecho.Send(),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
