package auth

import (
	"errors"
	"ferreteria_server/handling"
	"ferreteria_server/lib"
	"ferreteria_server/services"
	"ferreteria_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// HandleLogin signs the clerk in and starts a server session. The catalog
// build begins immediately and reports progress on the event stream.
func (arm *AuthRoutesManager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.AuthRequest](r)
	if err != nil {
		var validationErr *lib.ValidationError
		if errors.As(err, &validationErr) {
			handling.HandleServiceError(err, "invalid login body", arm.logger, w)
			return
		}
		arm.logger.Warn("Failed to extract request body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Please check your login information and try again"), gecho.Send())
		return
	}

	user, err := arm.authService.Login(r.Context(), body)
	if err != nil {
		gecho.Unauthorized(w, gecho.WithMessage("Invalid credentials"), gecho.Send())
		return
	}

	session := arm.sessionService.Start(services.SessionUser{ID: user.Id, Email: user.Email, Role: user.Role})

	accessToken, claims, err := arm.authService.GenerateAccessToken(user, session.ID)
	if err != nil {
		arm.sessionService.End(session.ID)
		handling.HandleError(err, "failed to generate access token", arm.logger, w)
		return
	}

	lib.SetCookie(lib.AccessCookieName, accessToken, claims.Exp, w)

	gecho.Success(w,
		gecho.WithMessage("Login successful"),
		gecho.WithData(sessionResponse(claims)),
		gecho.Send(),
	)
}

func sessionResponse(claims *structs.AuthClaims) structs.SessionResponse {
	return structs.SessionResponse{
		SessionID: claims.Sid,
		UserID:    claims.Sub,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.Exp,
	}
}
