package debug

import (
	"net/http"

	"github.com/MonkyMars/gecho"
)

// ClearCache empties redis apart from the token blacklist: supplier list and
// rate limit counters go, revoked tokens stay revoked.
func (drm *DebugRoutesManager) ClearCache(w http.ResponseWriter, r *http.Request) {
	cleared, err := drm.cacheService.ClearAll(r.Context())
	if err != nil {
		drm.logger.Error("Failed to clear cache", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("Failed to clear cache"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Cache cleared"),
		gecho.WithData(map[string]int{"keys_cleared": cleared}),
		gecho.Send(),
	)
}
