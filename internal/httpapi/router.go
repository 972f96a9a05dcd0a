// Package httpapi wires the HTTP surface of the render service: middleware,
// CORS and the versioned route table.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nabeel-w/ButterCut-Assignment/internal/config"
	"github.com/nabeel-w/ButterCut-Assignment/internal/httpapi/handlers"
	"github.com/nabeel-w/ButterCut-Assignment/internal/httpkit"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/logger"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/middleware"
)

type Deps struct {
	Store   handlers.JobStore
	Queue   handlers.Queue
	Archive handlers.Archive
	Cfg     config.Config
	Log     *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: d.Cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAgeSeconds:  600,
	}))

	h := handlers.New(handlers.Deps{
		Store:     d.Store,
		Queue:     d.Queue,
		Archive:   d.Archive,
		UploadDir: d.Cfg.UploadDir,
		OutputDir: d.Cfg.OutputDir,
		AssetsDir: d.Cfg.AssetsDir,
		Log:       log,
	})

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/jobs", h.PostJob)
		r.Get("/jobs", h.ListJobs)
		r.Get("/jobs/{jobID}", h.GetJob)
		r.Get("/jobs/{jobID}/detail", h.GetJobDetail)
		r.Get("/jobs/{jobID}/result", h.GetJobResult)

		r.Post("/overlays/assets", h.PostAsset)
		r.Get("/overlays/assets", h.ListAssets)
	})

	return r
}
