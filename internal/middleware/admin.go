package middleware

import (
	"net/http"

	"github.com/nekto007/language-learning-tool/internal/config"
	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/webutil"
)

// RequireAdmin guards the authoring endpoints. A user is an admin when listed
// in the configured admin ids. Must run after JWTAuth.
func RequireAdmin(cfg *config.Config) func(http.Handler) http.Handler {
	admins := make(map[string]bool, len(cfg.App.AdminUserIDs))
	for _, id := range cfg.App.AdminUserIDs {
		admins[id] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			userID, err := GetUserIDFromContext(r.Context())
			if err != nil {
				webutil.HandleError(w, logger, err)
				return
			}
			if !admins[userID.String()] {
				webutil.HandleError(w, logger, model.NewAppError("FORBIDDEN", "Admin access required", "", model.ErrForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
