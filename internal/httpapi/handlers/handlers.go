// Package handlers implements the HTTP endpoints of the render service.
// Handlers depend on narrow interfaces so tests can run against in-memory
// fakes instead of Postgres and Redis.
package handlers

import (
	"context"
	"path/filepath"

	"github.com/nabeel-w/ButterCut-Assignment/internal/models"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/logger"
)

// JobStore is the persistence surface the handlers need.
type JobStore interface {
	CreateJob(ctx context.Context, job models.Job) error
	GetJob(ctx context.Context, id string) (models.Job, error)
	ListJobs(ctx context.Context, status string, limit int) ([]models.Job, error)
	CreateOverlayAsset(ctx context.Context, asset models.OverlayAsset) error
	ListOverlayAssets(ctx context.Context) ([]models.OverlayAsset, error)
	Ping(ctx context.Context) error
}

// Queue is the scheduler intake.
type Queue interface {
	Push(ctx context.Context, jobID string) error
	Ping(ctx context.Context) error
}

// Archive names the configured archive backend for health reporting.
type Archive interface {
	Name() string
}

type Deps struct {
	Store   JobStore
	Queue   Queue
	Archive Archive

	UploadDir string
	OutputDir string
	AssetsDir string

	Log *logger.Logger
}

type Handler struct {
	store   JobStore
	queue   Queue
	archive Archive

	uploadDir string
	outputDir string
	assetsDir string

	log *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	// The result handler compares absolute paths, so the output dir must
	// be absolute too or a relative OUTPUT_DIR would fail every download.
	outputDir := d.OutputDir
	if abs, err := filepath.Abs(outputDir); err == nil {
		outputDir = abs
	}

	return &Handler{
		store:     d.Store,
		queue:     d.Queue,
		archive:   d.Archive,
		uploadDir: d.UploadDir,
		outputDir: outputDir,
		assetsDir: d.AssetsDir,
		log:       log.WithComponent("httpapi"),
	}
}
