package rest

import (
	"log/slog"

	"github.com/frahmantamala/drive-sharing/internal/auth"
	"github.com/frahmantamala/drive-sharing/internal/directory"
	"github.com/frahmantamala/drive-sharing/internal/sharing"
	"github.com/frahmantamala/drive-sharing/internal/transport/middleware"
	"github.com/frahmantamala/drive-sharing/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

const openAPIRoute = "/openapi.yml"

// Handlers groups the HTTP handlers mounted by RegisterAllRoutes. Nil handlers
// leave their routes unmounted.
type Handlers struct {
	Health    *HealthHandler
	Auth      *auth.Handler
	Directory *directory.Handler
	Sharing   *sharing.Handler
	OpenAPI   *swagger.Document
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, allowedOrigins string, logger *slog.Logger) {
	if h.Health == nil {
		h.Health = NewHealthHandler()
	}

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(logger))

	if h.OpenAPI != nil {
		router.Get(openAPIRoute, h.OpenAPI.ServeHTTP)
		router.Handle("/swagger/*", swagger.Handler(openAPIRoute))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.OpenAPI != nil {
			r.Use(h.OpenAPI.ValidateRequests)
		}

		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		if h.Sharing != nil {
			r.Get("/access-levels", h.Sharing.GetAccessLevels)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.Directory != nil {
				pr.Get("/users/me", h.Directory.GetCurrentUser)
				pr.Get("/users/search", h.Directory.SearchUsers)
			}

			if h.Sharing != nil {
				pr.Route("/shares", func(sr chi.Router) {
					sr.Post("/", h.Sharing.ShareItem)
					sr.Get("/with-me", h.Sharing.ListSharedWithMe)
					sr.Patch("/{id}", h.Sharing.UpdateAccess)
					sr.Delete("/{id}", h.Sharing.RevokeAccess)
				})
				pr.Get("/files/{id}/shares", h.Sharing.ListFileGrants)
				pr.Get("/folders/{id}/shares", h.Sharing.ListFolderGrants)
			}
		})
	})
}
