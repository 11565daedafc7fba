package main

import (
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	bandihandler "github.com/concoro/concoro-platform/domains/bandi/be/handler"
	sitemaphandler "github.com/concoro/concoro-platform/domains/sitemap/be/handler"
	"github.com/concoro/concoro-platform/platform/go/auth"
	platformlogging "github.com/concoro/concoro-platform/platform/go/logging"
	"github.com/concoro/concoro-platform/platform/go/metrics"
	platformmiddleware "github.com/concoro/concoro-platform/platform/go/middleware"
)

type routerDeps struct {
	logger         *zap.Logger
	metrics        *metrics.Metrics
	bandi          *bandihandler.Handler
	sitemap        *sitemaphandler.Handler
	verify         auth.VerifyFunc
	spec           *openapi3.T
	requestTimeout time.Duration
	corsOrigins    []string
	projectID      string
}

func newRouter(d routerDeps) http.Handler {
	root := chi.NewRouter()
	root.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(d.requestTimeout),
		d.metrics.Middleware,
		platformmiddleware.CORS(d.corsOrigins),
		platformlogging.RequestLogger(d.logger, d.projectID),
	)

	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	root.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	root.Handle("/metrics", d.metrics.Handler())
	root.Get("/sitemap-static.xml", d.sitemap.Serve)

	registerDocsRoutes(root, d.logger)

	api := chi.NewRouter()
	api.Use(auth.Authenticate(d.verify))
	api.Use(platformmiddleware.RequestTrace)
	api.Use(platformmiddleware.SpecValidator(d.spec))

	d.bandi.Routes(api)
	api.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/admin/sitemap", d.sitemap.Publish)
	})

	root.Mount("/api/v1", api)
	return root
}
