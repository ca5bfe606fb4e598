package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jjenkins/trialfinder/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the routes need
type Deps struct {
	Searcher      Searcher
	RowTranslator RowTranslator
	Sessions      *store.SessionStore
	Gatherer      prometheus.Gatherer
	Log           zerolog.Logger
}

// Register mounts every route on app
func Register(app *fiber.App, d Deps) {
	app.Get("/", HomeHandler())
	app.Get("/healthz", HealthHandler())

	app.Post("/search", SearchHandler(d.Searcher, d.Sessions, d.Log))
	app.Post("/translate/:source/:row", TranslateRowHandler(d.RowTranslator, d.Sessions, d.Log))
	app.Get("/export/:file", ExportHandler(d.Sessions))

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
}
