package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nekto007/language-learning-tool/internal/config"
	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuth validates the Authorization bearer token and places the user id
// (the token subject) into the request context. Token issuance lives in the
// external auth collaborator; this service only verifies.
func JWTAuth(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "Authorization header required", "", model.ErrForbidden))
				return
			}

			headerParts := strings.SplitN(authHeader, " ", 2)
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
				webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "Invalid Authorization header format", "", model.ErrForbidden))
				return
			}

			token, err := jwt.Parse(headerParts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWT.SecretKey), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("JWT auth failed", "error", err)
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", "Token is invalid or expired", "", model.ErrForbidden))
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", "Token claims are invalid", "", model.ErrForbidden))
				return
			}
			subject, err := claims.GetSubject()
			if err != nil {
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", "Token subject missing", "", model.ErrForbidden))
				return
			}
			userID, err := uuid.Parse(subject)
			if err != nil {
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", "Token subject is not a user id", "", model.ErrForbidden))
				return
			}

			ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user id set by JWTAuth.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	value, ok := ctx.Value(model.UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "User not found in request context", "", model.ErrInternalServer)
	}
	return value, nil
}
