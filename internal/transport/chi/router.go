package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/metrics"
)

// NewRouter mounts the API on a chi router with the standard middleware stack.
func NewRouter(s *Server, authn Authenticator, logger *zap.Logger) http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r gochi.Router) {
		r.Get("/schemes", s.ListSchemes)
		r.Get("/schemes/{idOrSlug}", s.GetScheme)
		r.Get("/states", s.ListStates)
		r.Get("/categories", s.ListCategories)
		r.Get("/results", s.Results)
		r.Post("/submissions", s.CreateSubmission)

		r.Route("/admin", func(r gochi.Router) {
			r.Use(AdminAuthMiddleware(authn))

			r.Get("/schemes", s.AdminListSchemes)
			r.Post("/schemes", s.AdminCreateScheme)
			r.Get("/schemes/{id}", s.AdminGetScheme)
			r.Put("/schemes/{id}", s.AdminUpdateScheme)
			r.Delete("/schemes/{id}", s.AdminDeleteScheme)

			r.Get("/submissions", s.AdminListSubmissions)
			r.Get("/submissions/{id}", s.AdminGetSubmission)
			r.Patch("/submissions/{id}", s.AdminReviewSubmission)
			r.Post("/submissions/{id}/summary", s.AdminSummarizeSubmission)

			r.Get("/stats", s.AdminStats)
		})
	})

	return r
}
