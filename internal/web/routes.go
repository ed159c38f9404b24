package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/mask-fitter/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	configHandler := handlers.NewConfigHandler(s.services)
	headformsHandler := handlers.NewHeadformsHandler(s.services)
	catalogHandler := handlers.NewCatalogHandler(s.services)
	fittingHandler := handlers.NewFittingHandler(s.services)
	overlayHandler := handlers.NewOverlayHandler(s.services)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Get("/config", configHandler.Get)

		// Profiles and reference headforms
		r.Get("/headforms", headformsHandler.List)
		r.Get("/headforms/references", headformsHandler.References)
		r.Get("/headforms/nearest", headformsHandler.Nearest)

		// Catalog
		r.Get("/catalog/{category}", catalogHandler.Get)
		r.Post("/recommend", catalogHandler.Recommend)

		// Fitting
		r.Post("/measure", fittingHandler.Measure)
		r.Post("/classify", fittingHandler.Classify)
		r.Post("/fit", fittingHandler.Fit)
		r.Get("/fits", fittingHandler.ListFits)
		r.Get("/fits/{id}", fittingHandler.GetFit)

		r.Post("/overlay", overlayHandler.Render)
	})
}
