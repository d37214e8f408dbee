package auth

import (
	"ferreteria_server/lib"
	"ferreteria_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// HandleLogout blacklists the access token, ends the server session and
// clears the cookie. A missing or invalid token still logs out.
func (arm *AuthRoutesManager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	accessToken, err := lib.GetCookieValue(lib.AccessCookieName, r)
	if err != nil {
		arm.loggedOut(w)
		return
	}

	claims, err := lib.ParseToken(accessToken, arm.cfg.Auth.AccessTokenSecret)
	if err != nil {
		arm.logger.Debug("Logout with unusable access token", gecho.Field("error", err))
		arm.loggedOut(w)
		return
	}

	if err := arm.cacheService.BlacklistToken(r.Context(), claims.Jti, claims.Exp); err != nil {
		arm.logger.Error("Failed to blacklist access token during logout", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("Failed to logout"),
			gecho.Send(),
		)
		return
	}

	arm.sessionService.End(claims.Sid)
	arm.loggedOut(w)
}

func (arm *AuthRoutesManager) loggedOut(w http.ResponseWriter) {
	lib.ClearCookie(lib.AccessCookieName, w)
	gecho.Success(w,
		gecho.WithMessage("Logged out successfully"),
		gecho.WithData(structs.LogoutResponse{Message: "session ended"}),
		gecho.Send(),
	)
}
