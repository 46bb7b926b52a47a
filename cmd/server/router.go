package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/umtracker/umtracker-api/internal/api"
	apiMiddleware "github.com/umtracker/umtracker-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(
		app.curatorStore,
		app.jwtService,
		app.passwordVerifier,
		app.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.curatorStore, app.logger)
	catalogHandler := api.NewCatalogHandler(app.catalogService, app.logger)
	taskHandler := api.NewTaskHandler(
		app.recipientService,
		app.assignmentService,
		app.dashboardService,
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/token/refresh", authHandler.RefreshToken)

		r.Get("/catalogs/roles/managers", catalogHandler.ManagerRoles)
		r.Get("/catalogs/{kind}", catalogHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/users/me", api.Me)

			r.Route("/tasks", func(r chi.Router) {
				r.Use(apiMiddleware.RequireConfirmed)
				r.Get("/", taskHandler.ListCards)
				r.Post("/", taskHandler.Create)
				r.Get("/assignment-policy", taskHandler.AssignmentPolicy)
				r.Get("/recipients", taskHandler.Recipients)
				r.Get("/reports/{id}/{email}", taskHandler.ReportDetail)
				r.Get("/{id}", taskHandler.Detail)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return otelhttp.NewHandler(r, app.config.OTel.ServiceName)
}
