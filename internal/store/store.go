// Package store persists job records and the overlay-asset catalog in
// PostgreSQL. A job record has many readers but exactly one writer (the
// worker that owns the job), so updates are plain row writes without
// inter-process locking.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nabeel-w/ButterCut-Assignment/internal/models"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/errors"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/logger"
)

// Update retry policy: a flaky store must not silently lose progress, so
// each write is retried a bounded number of times before surfacing.
const (
	updateAttempts = 3
	retryBaseDelay = 100 * time.Millisecond
)

type Store struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func New(pool *pgxpool.Pool, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Store{pool: pool, log: log.WithComponent("store")}
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS render_jobs (
  id          TEXT PRIMARY KEY,
  input_path  TEXT NOT NULL,
  output_path TEXT,
  status      TEXT NOT NULL,
  message     TEXT,
  overlays    JSONB NOT NULL,
  progress    DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at  TIMESTAMPTZ NOT NULL,
  updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS overlay_assets (
  id            TEXT PRIMARY KEY,
  filename      TEXT NOT NULL UNIQUE,
  original_name TEXT NOT NULL,
  type          TEXT NOT NULL,
  path          TEXT NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL
);
`)
	if err != nil {
		return errors.Wrap(err, "store.schema", "failed to ensure schema")
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateJob inserts a new job record.
func (s *Store) CreateJob(ctx context.Context, job models.Job) error {
	overlaysJSON, err := json.Marshal(job.Overlays)
	if err != nil {
		return errors.Wrap(err, "store.create", "failed to encode overlays")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO render_jobs (id, input_path, output_path, status, message, overlays, progress, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		job.ID,
		job.InputPath,
		nullIfEmpty(job.OutputPath),
		string(job.Status),
		job.Message,
		string(overlaysJSON),
		job.Progress,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "store.create", "failed to insert job")
	}
	return nil
}

// GetJob loads one job record.
func (s *Store) GetJob(ctx context.Context, id string) (models.Job, error) {
	var (
		job          models.Job
		outputPath   *string
		message      *string
		overlaysJSON string
	)

	err := s.pool.QueryRow(ctx,
		`SELECT id, input_path, output_path, status, message, overlays, progress, created_at, updated_at
		 FROM render_jobs WHERE id=$1`,
		id,
	).Scan(&job.ID, &job.InputPath, &outputPath, (*string)(&job.Status), &message,
		&overlaysJSON, &job.Progress, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Job{}, errors.NotFound("job", id)
		}
		return models.Job{}, errors.Wrap(err, "store.get", "failed to load job")
	}

	if outputPath != nil {
		job.OutputPath = *outputPath
	}
	if message != nil {
		job.Message = *message
	}
	if err := json.Unmarshal([]byte(overlaysJSON), &job.Overlays); err != nil {
		return models.Job{}, errors.Wrap(err, "store.get", "failed to decode overlays")
	}

	return job, nil
}

// UpdateJob applies a partial update to a job's mutable fields, retrying
// with backoff on store errors. After the bounded retries the failure is
// surfaced as STORE_UNAVAILABLE.
func (s *Store) UpdateJob(ctx context.Context, id string, upd models.JobUpdate) error {
	sets := []string{"updated_at=$1"}
	args := []any{time.Now().UTC()}
	n := 2

	if upd.Status != nil {
		sets = append(sets, fmt.Sprintf("status=$%d", n))
		args = append(args, string(*upd.Status))
		n++
	}
	if upd.Message != nil {
		sets = append(sets, fmt.Sprintf("message=$%d", n))
		args = append(args, *upd.Message)
		n++
	}
	if upd.Progress != nil {
		sets = append(sets, fmt.Sprintf("progress=$%d", n))
		args = append(args, *upd.Progress)
		n++
	}
	if upd.OutputPath != nil {
		sets = append(sets, fmt.Sprintf("output_path=$%d", n))
		args = append(args, *upd.OutputPath)
		n++
	}

	query := fmt.Sprintf("UPDATE render_jobs SET %s WHERE id=$%d", strings.Join(sets, ", "), n)
	args = append(args, id)

	var lastErr error
	for attempt := 0; attempt < updateAttempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			s.log.Warn("retrying job update",
				"job_id", id,
				"attempt", attempt+1,
				"delay_ms", delay.Milliseconds(),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return errors.StoreUnavailable(ctx.Err(), "store.update")
			}
		}

		tag, err := s.pool.Exec(ctx, query, args...)
		if err == nil {
			if tag.RowsAffected() == 0 {
				return errors.NotFound("job", id)
			}
			return nil
		}
		lastErr = err
	}

	return errors.StoreUnavailable(lastErr, "store.update")
}

// ListJobs returns recent jobs, optionally filtered by status.
func (s *Store) ListJobs(ctx context.Context, status string, limit int) ([]models.Job, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT id, input_path, output_path, status, message, overlays, progress, created_at, updated_at
	          FROM render_jobs`
	args := []any{}
	if status != "" {
		query += " WHERE status=$1 ORDER BY created_at DESC LIMIT $2"
		args = append(args, status, limit)
	} else {
		query += " ORDER BY created_at DESC LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "store.list", "failed to query jobs")
	}
	defer rows.Close()

	jobs := make([]models.Job, 0, limit)
	for rows.Next() {
		var (
			job          models.Job
			outputPath   *string
			message      *string
			overlaysJSON string
		)
		if err := rows.Scan(&job.ID, &job.InputPath, &outputPath, (*string)(&job.Status), &message,
			&overlaysJSON, &job.Progress, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "store.list", "failed to scan job")
		}
		if outputPath != nil {
			job.OutputPath = *outputPath
		}
		if message != nil {
			job.Message = *message
		}
		if err := json.Unmarshal([]byte(overlaysJSON), &job.Overlays); err != nil {
			return nil, errors.Wrap(err, "store.list", "failed to decode overlays")
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// CreateOverlayAsset inserts a catalog row for an uploaded asset.
func (s *Store) CreateOverlayAsset(ctx context.Context, asset models.OverlayAsset) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO overlay_assets (id, filename, original_name, type, path, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		asset.ID, asset.Filename, asset.OriginalName, string(asset.Type), asset.Path, asset.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "store.asset_create", "failed to insert overlay asset")
	}
	return nil
}

// ListOverlayAssets returns the catalog, newest first.
func (s *Store) ListOverlayAssets(ctx context.Context) ([]models.OverlayAsset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, filename, original_name, type, path, created_at
		 FROM overlay_assets ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "store.asset_list", "failed to query overlay assets")
	}
	defer rows.Close()

	assets := []models.OverlayAsset{}
	for rows.Next() {
		var a models.OverlayAsset
		if err := rows.Scan(&a.ID, &a.Filename, &a.OriginalName, (*string)(&a.Type), &a.Path, &a.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "store.asset_list", "failed to scan overlay asset")
		}
		assets = append(assets, a)
	}

	return assets, rows.Err()
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
