package api

import (
	"net/http"
	"time"

	"autohaven/internal/api/handler"
	"autohaven/internal/api/middleware"
	"autohaven/internal/app/service"
	"autohaven/internal/common"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Services struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Contact *service.ContactService
}

func NewRouter(services Services, callers middleware.CallerResolver, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Resolves the bearer token once; handlers read the caller from context.
	r.Use(middleware.Identify(callers))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "Route not found: "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/cars", handler.NewCarHandler(services.Catalog).RegisterRoutes)
		api.Route("/users", handler.NewUserHandler(services.Auth).RegisterRoutes)
		api.Route("/contact", handler.NewContactHandler(services.Contact).RegisterRoutes)
	})

	return r
}
