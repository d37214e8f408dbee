package auth

import (
	"ferreteria_server/api/middleware"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// HandleSession reports the signed-in clerk and the catalog state of the
// session, recreating the session when the server lost it.
func (arm *AuthRoutesManager) HandleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"session": sessionResponse(claims),
			"catalog": session.Status(),
		}),
		gecho.Send(),
	)
}
