package middleware

import (
	"context"
	"ferreteria_server/lib"
	"ferreteria_server/services"
	"ferreteria_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// Context keys for storing session data in request context
type contextKey string

const (
	SessionContextKey contextKey = "session"
	ClaimsContextKey  contextKey = "claims"
)

// SessionAuthMiddleware validates the access token and attaches the clerk
// session, recreating it when the server no longer holds it.
func (mw *Middleware) SessionAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := lib.ExtractClaims(r, mw.authService.GetAccessTokenSecret())
		if err != nil {
			mw.logger.Debug("Rejected request without a valid access token", gecho.Field("error", err))
			gecho.Unauthorized(w, gecho.WithMessage("Invalid or missing access token"), gecho.Send())
			return
		}

		blacklisted, err := mw.cacheService.IsTokenBlacklisted(r.Context(), claims.Jti)
		if err != nil {
			// Fail open: the token signature and expiry were already checked
			mw.logger.Warn("Failed to check token blacklist", gecho.Field("error", err))
		}
		if blacklisted {
			gecho.Unauthorized(w, gecho.WithMessage("Session has ended"), gecho.Send())
			return
		}

		session, err := mw.sessionService.Resume(claims)
		if err != nil {
			mw.logger.Warn("Failed to resume session", gecho.Field("error", err), gecho.Field("user_id", claims.Sub))
			gecho.Unauthorized(w, gecho.WithMessage("Session check failed"), gecho.Send())
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		ctx = context.WithValue(ctx, SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionFromContext is a helper function to extract the session from request context
func GetSessionFromContext(ctx context.Context) (*services.Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*services.Session)
	return session, ok
}

// GetClaimsFromContext is a helper function to extract the claims from request context
func GetClaimsFromContext(ctx context.Context) (*structs.AuthClaims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*structs.AuthClaims)
	return claims, ok
}

// MustSession returns the request session or writes a 401
func MustSession(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		gecho.Unauthorized(w, gecho.WithMessage("Session check failed"), gecho.Send())
		return nil, false
	}
	return session, true
}
