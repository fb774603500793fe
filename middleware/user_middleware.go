package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/apex-defense-api/models"
	"github.com/andrewpaige1/apex-defense-api/store"
	"github.com/andrewpaige1/apex-defense-api/utils"
)

type contextKey string

const userKey contextKey = "user"

// UserSyncer provisions the user behind a token.
type UserSyncer interface {
	Sync(ctx context.Context, id store.Identity) (*models.User, error)
}

// SyncUserMiddleware requires a validated token, ensures its subject exists as
// a user and attaches that user to the request context.
func SyncUserMiddleware(users UserSyncer, log *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := utils.GetClaims(r)
			if !ok || claims.RegisteredClaims.Subject == "" {
				if TokenError(r.Context()) != nil {
					utils.WriteDetail(w, http.StatusUnauthorized, "Could not validate credentials")
					return
				}
				utils.WriteDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			identity := store.Identity{Subject: claims.RegisteredClaims.Subject}
			if custom, ok := claims.CustomClaims.(*CustomClaims); ok && custom != nil {
				identity.Email = custom.Email
				identity.Name = custom.Name
				identity.Role = custom.Role
			}

			user, err := users.Sync(r.Context(), identity)
			if err != nil {
				utils.WriteError(w, log, "SyncUserMiddleware", err)
				return
			}
			if !user.IsActive {
				log.Info("SyncUserMiddleware: inactive user rejected", zap.String("user_id", user.ID))
				utils.WriteDetail(w, http.StatusUnauthorized, "Inactive user")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// CurrentUser returns the user attached by SyncUserMiddleware.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
