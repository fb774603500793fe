package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/andrewpaige1/apex-defense-api/middleware"
)

// NewRouter assembles the full HTTP stack: system routes at the root, the API
// under the configured prefix, token validation, CORS, request logging and
// panic recovery.
func NewRouter(h *Handler, users middleware.UserSyncer, tokens middleware.TokenConfig) (http.Handler, error) {
	authMiddleware, err := middleware.EnsureValidToken(tokens, h.Log)
	if err != nil {
		return nil, err
	}

	api := http.NewServeMux()
	h.Routes(api, middleware.SyncUserMiddleware(users, h.Log))

	root := http.NewServeMux()
	h.SystemRoutes(root)
	prefix := strings.TrimSuffix(h.Settings.APIPrefix, "/")
	if prefix == "" {
		h.Routes(root, middleware.SyncUserMiddleware(users, h.Log))
	} else {
		root.Handle(prefix+"/", http.StripPrefix(prefix, api))
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   h.Settings.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(authMiddleware(root))

	return middleware.Recover(h.Log)(middleware.RequestLogger(h.Log)(corsHandler)), nil
}
